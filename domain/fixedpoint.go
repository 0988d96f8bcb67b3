package domain

import (
	"github.com/holiman/uint256"
)

// MulDiv returns floor(x * y / d) using a 512-bit intermediate product.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrorArithmeticOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrorArithmeticOverflow
	}
	return z, nil
}

func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrorArithmeticOverflow
	}
	return z, nil
}

func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrorArithmeticOverflow
	}
	return z, nil
}

// Fee is amount * feeRate / Accuracy, floor-divided. Every value-moving path uses it.
func Fee(amount *uint256.Int, feeRate uint64) (*uint256.Int, error) {
	return MulDiv(amount, uint256.NewInt(feeRate), uint256.NewInt(Accuracy))
}

// SplitFee charges one fee over reward+principal and apportions it between them.
// rewardFee + principalFee always equals the combined fee.
func SplitFee(reward, principal *uint256.Int, feeRate uint64) (rewardFee, principalFee *uint256.Int, err error) {
	gross, err := Add(reward, principal)
	if err != nil {
		return nil, nil, err
	}
	total, err := Fee(gross, feeRate)
	if err != nil {
		return nil, nil, err
	}
	if gross.IsZero() {
		return new(uint256.Int), new(uint256.Int), nil
	}
	rewardFee, err = MulDiv(total, reward, gross)
	if err != nil {
		return nil, nil, err
	}
	principalFee = new(uint256.Int).Sub(total, rewardFee)
	return rewardFee, principalFee, nil
}
