package domain

import (
	"github.com/holiman/uint256"
	"github.com/tonkeeper/tongo"
)

func testAccount(i byte) tongo.AccountID {
	return tongo.AccountID{Workchain: 0, Address: [32]byte{i, 0x5a, i}}
}

var testUnit = uint256.NewInt(1_000_000_000_000_000_000)

func units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), testUnit)
}

// expectedReward is amount * seconds * apy / (Accuracy * SecondsPerYear).
func expectedReward(amount *uint256.Int, seconds, apy uint64) *uint256.Int {
	res := new(uint256.Int).Mul(amount, uint256.NewInt(seconds))
	res.Mul(res, uint256.NewInt(apy))
	return res.Div(res, uint256.NewInt(Accuracy*SecondsPerYear))
}
