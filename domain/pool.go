package domain

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/tonkeeper/tongo"
)

const (
	// Accuracy is the denominator of both the APY and the fee rate, so a base APY
	// of 1000 is 10% and a fee rate of 1 is 0.01%.
	Accuracy = 10000

	SecondsPerYear = 365 * 24 * 60 * 60

	// AccPrecision scales the reward-per-share accumulators.
	AccPrecision = 1000000000000

	DefaultDecimals = 18
)

type APYCheckpoint struct {
	Since   uint64 `json:"since"`
	BaseAPY uint64 `json:"base_apy"`
}

type PoolState struct {
	PoolAddress  tongo.AccountID
	Owner        tongo.AccountID
	StakeAsset   string
	RewardAsset  string
	Treasury     tongo.AccountID
	FeeCollector tongo.AccountID

	BaseAPY  uint64
	FeeRate  uint64
	Decimals uint8

	TotalStaked       uint256.Int
	AccRewardPerShare uint256.Int
	LastAccrualTime   uint64

	// APYHistory holds every base APY the pool has had, oldest first. The last
	// checkpoint always equals BaseAPY.
	APYHistory []APYCheckpoint

	CreateTime time.Time
}

// PoolParams are the explicit parameters a pool is created with.
type PoolParams struct {
	PoolAddress  tongo.AccountID
	Owner        tongo.AccountID
	StakeAsset   string
	RewardAsset  string
	Treasury     tongo.AccountID
	FeeCollector tongo.AccountID
	BaseAPY      uint64
	FeeRate      uint64
	Decimals     uint8
}

func NewPoolState(params PoolParams, now uint64) (*PoolState, error) {
	if params.FeeRate > Accuracy {
		return nil, ErrorInvalidFeeRate
	}
	if IsZeroAccount(params.Owner) || IsZeroAccount(params.PoolAddress) {
		return nil, ErrorInvalidAccount
	}
	decimals := params.Decimals
	if decimals == 0 {
		decimals = DefaultDecimals
	}
	return &PoolState{
		PoolAddress:     params.PoolAddress,
		Owner:           params.Owner,
		StakeAsset:      params.StakeAsset,
		RewardAsset:     params.RewardAsset,
		Treasury:        params.Treasury,
		FeeCollector:    params.FeeCollector,
		BaseAPY:         params.BaseAPY,
		FeeRate:         params.FeeRate,
		Decimals:        decimals,
		LastAccrualTime: now,
		APYHistory:      []APYCheckpoint{{Since: now, BaseAPY: params.BaseAPY}},
		CreateTime:      time.Unix(int64(now), 0),
	}, nil
}

func (p *PoolState) Clone() *PoolState {
	c := *p
	c.APYHistory = append([]APYCheckpoint(nil), p.APYHistory...)
	return &c
}

// Unit is the number of base units in one whole unit of the stake asset.
func (p *PoolState) Unit() *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(p.Decimals)))
}

// SetBaseAPY records a new base APY effective from now on. Time already elapsed
// keeps accruing at the rate that was in effect.
func (p *PoolState) SetBaseAPY(value uint64, now uint64) {
	p.BaseAPY = value
	last := len(p.APYHistory) - 1
	if last >= 0 && p.APYHistory[last].Since >= now {
		p.APYHistory[last].BaseAPY = value
		return
	}
	p.APYHistory = append(p.APYHistory, APYCheckpoint{Since: now, BaseAPY: value})
}

type AccountState struct {
	Account           tongo.AccountID
	StakedAmount      uint256.Int
	Claimable         uint256.Int
	RewardDebt        uint256.Int
	AccRewardPerShare uint256.Int
	LastSettleTime    uint64
}

func NewAccountState(accid tongo.AccountID) *AccountState {
	return &AccountState{Account: accid}
}

func (a *AccountState) Clone() *AccountState {
	c := *a
	return &c
}

// UserInfo is the read model of an account.
type UserInfo struct {
	Account           tongo.AccountID
	Amount            uint256.Int
	RewardDebt        uint256.Int
	LastRewardTime    uint64
	AccRewardPerShare uint256.Int
	PendingReward     uint256.Int
	RewardAPY         uint64
}

type RewardAvailability struct {
	InTreasury     uint256.Int
	AllowedForPool uint256.Int
}
