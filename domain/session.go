package domain

import (
	"github.com/tonkeeper/tongo"
)

// StateSession reads and writes pool state in one transaction. What it reads
// stays locked until Commit or Rollback, and nothing it saves is visible
// before Commit.
type StateSession interface {
	FindPool() (*PoolState, error)
	// FindAccount returns nil for an account that has never been stored.
	FindAccount(accid tongo.AccountID) (*AccountState, error)
	Save(pool *PoolState, accounts []*AccountState) error
	// Join opens a transaction on the ledger. When the ledger is kept in the same
	// store, its transfers commit and roll back with the session and joined is
	// true; the returned transaction's own Commit, Rollback and Revert do nothing.
	Join(ledger AssetLedger) (tx AssetTx, joined bool, err error)
	Commit() error
	Rollback() error
}
