package domain

import (
	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

var accrualDenominator = uint256.NewInt(Accuracy * SecondsPerYear)

// rateIntegral sums elapsed seconds times the tier-adjusted APY over every base
// APY segment overlapping [from, to).
func (p *PoolState) rateIntegral(from, to uint64, tier Tier) *uint256.Int {
	sum := new(uint256.Int)
	if to <= from {
		return sum
	}
	if len(p.APYHistory) == 0 {
		return sum.Mul(uint256.NewInt(to-from), uint256.NewInt(tier.Apply(p.BaseAPY)))
	}

	history := p.APYHistory
	first := p.checkpointAt(from)
	for i := first; i < len(history); i++ {
		if i > first && history[i].Since >= to {
			break
		}
		start, end := history[i].Since, to
		if i == 0 || start < from {
			start = from
		}
		if i+1 < len(history) && history[i+1].Since < end {
			end = history[i+1].Since
		}
		if end <= start {
			continue
		}
		segment := new(uint256.Int).Mul(uint256.NewInt(end-start), uint256.NewInt(tier.Apply(history[i].BaseAPY)))
		sum.Add(sum, segment)
	}
	return sum
}

// checkpointAt returns the index of the checkpoint in effect at time t. The
// first checkpoint also covers any time before it.
func (p *PoolState) checkpointAt(t uint64) int {
	i, found := slices.BinarySearchFunc(p.APYHistory, APYCheckpoint{Since: t}, func(a, b APYCheckpoint) int {
		switch {
		case a.Since < b.Since:
			return -1
		case a.Since > b.Since:
			return 1
		}
		return 0
	})
	if found || i == 0 {
		return i
	}
	return i - 1
}

// Accrue advances the pool reference accumulator, which tracks the reward per
// staked unit at the 1x tier. It stays flat while nothing is staked.
func Accrue(pool *PoolState, now uint64) error {
	if now <= pool.LastAccrualTime {
		return nil
	}
	if !pool.TotalStaked.IsZero() {
		integral := pool.rateIntegral(pool.LastAccrualTime, now, Tier{Numerator: 1, Denominator: 1})
		delta, err := MulDiv(integral, uint256.NewInt(AccPrecision), accrualDenominator)
		if err != nil {
			return err
		}
		acc, err := Add(&pool.AccRewardPerShare, delta)
		if err != nil {
			return err
		}
		pool.AccRewardPerShare = *acc
	}
	pool.LastAccrualTime = now
	return nil
}

// accrued is the reward the account earned since its last settlement, using the
// tier of its current stake, plus the matching reward-per-share increment.
func accrued(pool *PoolState, account *AccountState, now uint64) (reward, perShare *uint256.Int, err error) {
	if account.LastSettleTime == 0 || now <= account.LastSettleTime {
		return new(uint256.Int), new(uint256.Int), nil
	}

	tier := TierFor(&account.StakedAmount, pool.Unit())
	integral := pool.rateIntegral(account.LastSettleTime, now, tier)

	reward, err = MulDiv(&account.StakedAmount, integral, accrualDenominator)
	if err != nil {
		return nil, nil, err
	}
	perShare, err = MulDiv(integral, uint256.NewInt(AccPrecision), accrualDenominator)
	if err != nil {
		return nil, nil, err
	}
	return reward, perShare, nil
}

// Settle realizes the reward accrued since the last settlement into Claimable
// and moves the account's time baseline to now. It must run before the staked
// amount changes so the old balance and tier apply to the elapsed time.
func Settle(pool *PoolState, account *AccountState, now uint64) (*uint256.Int, error) {
	if account.LastSettleTime == 0 {
		account.LastSettleTime = now
		return new(uint256.Int), nil
	}
	if now <= account.LastSettleTime {
		return new(uint256.Int), nil
	}

	reward, perShare, err := accrued(pool, account, now)
	if err != nil {
		return nil, err
	}
	claimable, err := Add(&account.Claimable, reward)
	if err != nil {
		return nil, err
	}
	acc, err := Add(&account.AccRewardPerShare, perShare)
	if err != nil {
		return nil, err
	}

	account.Claimable = *claimable
	account.AccRewardPerShare = *acc
	account.LastSettleTime = now
	return reward, nil
}

// PendingReward is the reward the account could claim at now, realized or not.
// It does not modify the account.
func PendingReward(pool *PoolState, account *AccountState, now uint64) (*uint256.Int, error) {
	reward, _, err := accrued(pool, account, now)
	if err != nil {
		return nil, err
	}
	return Add(&account.Claimable, reward)
}

func AccountAPY(pool *PoolState, account *AccountState) uint64 {
	return RewardAPY(pool.BaseAPY, &account.StakedAmount, pool.Unit())
}
