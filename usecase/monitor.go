package usecase

import (
	"stakepool/domain"
	"stakepool/domain/util"
	"stakepool/interface/exporter"

	"github.com/holiman/uint256"
	log "github.com/sirupsen/logrus"
)

const (
	TreasuryHealthy  = "healthy"
	TreasuryLow      = "low"
	TreasuryCritical = "critical"
)

type TreasuryStatus struct {
	State        string
	Availability domain.RewardAvailability
	Threshold    uint256.Int
}

// MonitorInteractor watches how much reward the pool can still pay out. It only
// reports; refilling the treasury or raising its allowance is up to the owner.
type MonitorInteractor struct {
	poolInteractor *PoolInteractor
	memoInteractor *MemoInteractor
	clock          Clock
	threshold      uint256.Int
	alertFunc      func(status *TreasuryStatus)
}

// NewMonitorInteractor takes the threshold in whole units of the reward asset.
func NewMonitorInteractor(poolInteractor *PoolInteractor, memoInteractor *MemoInteractor, threshold *uint256.Int) *MonitorInteractor {
	return &MonitorInteractor{
		poolInteractor: poolInteractor,
		memoInteractor: memoInteractor,
		clock:          poolInteractor.clock,
		threshold:      *threshold,
		alertFunc:      defaultTreasuryAlert,
	}
}

// LastCheck returns the latest stored check, or nil if there was none.
func (interactor *MonitorInteractor) LastCheck() (*domain.MonitorMemo, error) {
	return interactor.memoInteractor.GetMonitorMemo()
}

func (interactor *MonitorInteractor) SetAlertFunc(fn func(status *TreasuryStatus)) {
	interactor.alertFunc = fn
}

// Check reads the treasury, publishes the metrics, and alerts when the pool
// may spend less than the threshold. Below half of it the treasury is critical.
func (interactor *MonitorInteractor) Check() (*TreasuryStatus, error) {
	pool, err := interactor.poolInteractor.Pool()
	if err != nil {
		exporter.IncErrorCount()
		return nil, err
	}
	available, err := interactor.poolInteractor.AvailableReward()
	if err != nil {
		exporter.IncErrorCount()
		return nil, err
	}

	exporter.SetAmount(exporter.METRIC_TREASURY_BALANCE, &available.InTreasury, pool.Decimals)
	exporter.SetAmount(exporter.METRIC_TREASURY_ALLOWANCE, &available.AllowedForPool, pool.Decimals)
	exporter.SetAmount(exporter.METRIC_TOTAL_STAKED, &pool.TotalStaked, pool.Decimals)

	threshold, overflow := new(uint256.Int).MulOverflow(&interactor.threshold, pool.Unit())
	if overflow {
		threshold.SetAllOne()
	}
	critical := new(uint256.Int).Rsh(threshold, 1)

	status := &TreasuryStatus{
		State:        TreasuryHealthy,
		Availability: *available,
		Threshold:    *threshold,
	}
	switch {
	case available.AllowedForPool.Lt(critical):
		status.State = TreasuryCritical
	case available.AllowedForPool.Lt(threshold):
		status.State = TreasuryLow
	}

	if status.State != TreasuryHealthy {
		interactor.alertFunc(status)
	}

	err = interactor.memoInteractor.SetMonitorMemo(&domain.MonitorMemo{
		CheckTime:      interactor.clock.Now().Unix(),
		State:          status.State,
		InTreasury:     available.InTreasury.Dec(),
		AllowedForPool: available.AllowedForPool.Dec(),
	})
	if err != nil {
		log.Warnf("🟡 Unable to store the monitor memo - %v", err.Error())
	}
	log.Debugf("🔵 Treasury can pay %v", util.AmountString(&available.AllowedForPool, pool.Decimals, pool.RewardAsset))
	return status, nil
}

func defaultTreasuryAlert(status *TreasuryStatus) {
	log.WithFields(log.Fields{
		"state":     status.State,
		"balance":   status.Availability.InTreasury.Dec(),
		"allowance": status.Availability.AllowedForPool.Dec(),
		"threshold": status.Threshold.Dec(),
	}).Warn("🟡 Treasury is running low on reward the pool may spend")
}
