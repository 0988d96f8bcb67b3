package domain

import (
	"github.com/holiman/uint256"
)

// Tier is a staked-amount bracket. Min is in whole units and inclusive; a tier
// ends where the next one starts.
type Tier struct {
	Min         uint64
	Numerator   uint64
	Denominator uint64
}

var Tiers = []Tier{
	{Min: 0, Numerator: 0, Denominator: 1},
	{Min: 5000, Numerator: 1, Denominator: 2},
	{Min: 15000, Numerator: 1, Denominator: 1},
	{Min: 35000, Numerator: 3, Denominator: 2},
	{Min: 100000, Numerator: 2, Denominator: 1},
}

func TierFor(staked *uint256.Int, unit *uint256.Int) Tier {
	tier := Tiers[0]
	for _, t := range Tiers[1:] {
		floor, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(t.Min), unit)
		if overflow || staked.Lt(floor) {
			break
		}
		tier = t
	}
	return tier
}

// Apply scales a base APY by the tier multiplier, multiplying before dividing.
func (t Tier) Apply(baseAPY uint64) uint64 {
	res := new(uint256.Int).Mul(uint256.NewInt(baseAPY), uint256.NewInt(t.Numerator))
	res.Div(res, uint256.NewInt(t.Denominator))
	return res.Uint64()
}

func RewardAPY(baseAPY uint64, staked *uint256.Int, unit *uint256.Int) uint64 {
	return TierFor(staked, unit).Apply(baseAPY)
}
