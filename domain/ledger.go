package domain

import (
	"github.com/holiman/uint256"
	"github.com/tonkeeper/tongo"
)

// AssetLedger is a fungible-asset ledger with transfer/allowance semantics.
// Transfers only happen inside a transaction.
type AssetLedger interface {
	Symbol() string
	BalanceOf(account tongo.AccountID) (*uint256.Int, error)
	Allowance(owner, spender tongo.AccountID) (*uint256.Int, error)
	Begin() (AssetTx, error)
}

// AssetTx applies transfers that become final on Commit and are undone on
// Rollback. Rollback after Commit is a no-op.
type AssetTx interface {
	// Transfer moves the amount out of from's own balance.
	Transfer(from, to tongo.AccountID, amount *uint256.Int) error
	// TransferFrom moves the amount out of from's balance on behalf of spender and
	// consumes from's allowance to spender.
	TransferFrom(spender, from, to tongo.AccountID, amount *uint256.Int) error
	Commit() error
	Rollback() error
	// Revert undoes a committed transaction with the opposite transfers and
	// gives back the allowance it consumed.
	Revert() error
}

// AssetIssuer is a ledger that can also issue balance and record approvals,
// the way the asset's operator funds accounts outside pool operations.
type AssetIssuer interface {
	AssetLedger
	Mint(account tongo.AccountID, amount *uint256.Int) error
	Approve(owner, spender tongo.AccountID, amount *uint256.Int) error
}
