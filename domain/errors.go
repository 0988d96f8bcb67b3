package domain

import "fmt"

var (
	ErrorUnauthorized              = fmt.Errorf("caller is not the owner")
	ErrorInsufficientBalance       = fmt.Errorf("withdraw amount exceeds staked amount")
	ErrorInsufficientAuthorization = fmt.Errorf("transfer amount exceeds allowance")
	ErrorInsufficientFunds         = fmt.Errorf("transfer amount exceeds balance")
	ErrorDisabledOperation         = fmt.Errorf("operation is disabled")

	ErrorInvalidFeeRate     = fmt.Errorf("fee rate must not exceed accuracy")
	ErrorInvalidAccount     = fmt.Errorf("invalid account address")
	ErrorPoolExists         = fmt.Errorf("staking pool is already initialized")
	ErrorPoolNotFound       = fmt.Errorf("staking pool is not initialized")
	ErrorArithmeticOverflow = fmt.Errorf("arithmetic overflow")
	ErrorUnknownAsset       = fmt.Errorf("asset is not kept by this pool")
)
