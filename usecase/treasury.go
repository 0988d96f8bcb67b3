package usecase

import (
	"stakepool/domain"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

// TreasuryInteractor reports how much reward the treasury can currently pay
// through the pool. It never moves funds.
type TreasuryInteractor struct {
	rewardLedger domain.AssetLedger
}

func NewTreasuryInteractor(rewardLedger domain.AssetLedger) *TreasuryInteractor {
	return &TreasuryInteractor{
		rewardLedger: rewardLedger,
	}
}

// AvailableReward returns the treasury balance and the part of it the pool is
// allowed to spend, which is the lesser of the balance and the allowance.
func (interactor *TreasuryInteractor) AvailableReward(treasury, pool tongo.AccountID) (*domain.RewardAvailability, error) {
	balance, err := interactor.rewardLedger.BalanceOf(treasury)
	if err != nil {
		return nil, errors.Wrap(err, "reading treasury balance")
	}
	allowance, err := interactor.rewardLedger.Allowance(treasury, pool)
	if err != nil {
		return nil, errors.Wrap(err, "reading treasury allowance")
	}

	result := &domain.RewardAvailability{
		InTreasury:     *balance,
		AllowedForPool: *allowance,
	}
	if balance.Lt(allowance) {
		result.AllowedForPool = *balance
	}
	return result, nil
}

func (interactor *TreasuryInteractor) Claimable(treasury, pool tongo.AccountID, amount *uint256.Int) (bool, error) {
	available, err := interactor.AvailableReward(treasury, pool)
	if err != nil {
		return false, err
	}
	return !available.AllowedForPool.Lt(amount), nil
}
