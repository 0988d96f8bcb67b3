package memory

import (
	"sync"

	"stakepool/domain"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

type allowanceKey struct {
	owner   tongo.AccountID
	spender tongo.AccountID
}

// Ledger is an in-process asset ledger. An allowance equal to the maximum
// uint256 value is never consumed.
type Ledger struct {
	mu         sync.Mutex
	symbol     string
	balances   map[tongo.AccountID]uint256.Int
	allowances map[allowanceKey]uint256.Int
}

func NewLedger(symbol string) *Ledger {
	return &Ledger{
		symbol:     symbol,
		balances:   make(map[tongo.AccountID]uint256.Int),
		allowances: make(map[allowanceKey]uint256.Int),
	}
}

func (l *Ledger) Symbol() string {
	return l.symbol
}

func (l *Ledger) Mint(account tongo.AccountID, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[account]
	sum, overflow := new(uint256.Int).AddOverflow(&balance, amount)
	if overflow {
		return errors.Wrapf(domain.ErrorArithmeticOverflow, "minting %v %v", amount.Dec(), l.symbol)
	}
	l.balances[account] = *sum
	return nil
}

// Approve sets the allowance of owner to spender, replacing the previous one.
func (l *Ledger) Approve(owner, spender tongo.AccountID, amount *uint256.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.allowances[allowanceKey{owner, spender}] = *amount
	return nil
}

func (l *Ledger) BalanceOf(account tongo.AccountID) (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[account]
	return balance.Clone(), nil
}

func (l *Ledger) Allowance(owner, spender tongo.AccountID) (*uint256.Int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowances[allowanceKey{owner, spender}]
	return allowance.Clone(), nil
}

func (l *Ledger) Begin() (domain.AssetTx, error) {
	return &ledgerTx{ledger: l}, nil
}

// move must be called with the lock held.
func (l *Ledger) move(from, to tongo.AccountID, amount *uint256.Int) error {
	balance := l.balances[from]
	if balance.Lt(amount) {
		return errors.Wrapf(domain.ErrorInsufficientFunds, "%v balance %v, needed %v", l.symbol, balance.Dec(), amount.Dec())
	}
	l.balances[from] = *new(uint256.Int).Sub(&balance, amount)
	target := l.balances[to]
	l.balances[to] = *new(uint256.Int).Add(&target, amount)
	return nil
}

type ledgerTx struct {
	ledger    *Ledger
	undo      []func() error
	committed bool
	done      bool
}

func (tx *ledgerTx) Transfer(from, to tongo.AccountID, amount *uint256.Int) error {
	l := tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.move(from, to, amount); err != nil {
		return err
	}
	value := amount.Clone()
	tx.undo = append(tx.undo, func() error { return l.move(to, from, value) })
	return nil
}

func (tx *ledgerTx) TransferFrom(spender, from, to tongo.AccountID, amount *uint256.Int) error {
	l := tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	key := allowanceKey{from, spender}
	allowance := l.allowances[key]
	if allowance.Lt(amount) {
		return errors.Wrapf(domain.ErrorInsufficientAuthorization, "%v allowance %v, needed %v", l.symbol, allowance.Dec(), amount.Dec())
	}
	if err := l.move(from, to, amount); err != nil {
		return err
	}

	value := amount.Clone()
	infinite := new(uint256.Int).SetAllOne()
	if !allowance.Eq(infinite) {
		l.allowances[key] = *new(uint256.Int).Sub(&allowance, amount)
	}
	tx.undo = append(tx.undo, func() error {
		if err := l.move(to, from, value); err != nil {
			return err
		}
		if !allowance.Eq(infinite) {
			current := l.allowances[key]
			l.allowances[key] = *new(uint256.Int).Add(&current, value)
		}
		return nil
	})
	return nil
}

func (tx *ledgerTx) Commit() error {
	if tx.done {
		return nil
	}
	tx.committed = true
	tx.done = true
	return nil
}

func (tx *ledgerTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	return tx.unwind()
}

// Revert replays the undo log of a committed transaction. It fails when a
// recipient has spent the funds in the meantime.
func (tx *ledgerTx) Revert() error {
	if !tx.committed {
		return tx.Rollback()
	}
	tx.committed = false
	return tx.unwind()
}

func (tx *ledgerTx) unwind() error {
	l := tx.ledger
	l.mu.Lock()
	defer l.mu.Unlock()

	var first error
	for i := len(tx.undo) - 1; i >= 0; i-- {
		if err := tx.undo[i](); err != nil && first == nil {
			first = err
		}
	}
	tx.undo = nil
	return first
}
