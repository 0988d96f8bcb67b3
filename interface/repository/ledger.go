package repository

import (
	"database/sql"

	"stakepool/domain"

	"github.com/behrang/sqlbatch"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

const (
	sqlBalanceFind = `
	select amount
	from ledger_balances
	where asset = $1 and account = $2
`

	sqlBalanceFindForUpdate = `
	select amount
	from ledger_balances
	where asset = $1 and account = $2
	for update
`

	sqlBalanceDebit = `
	update ledger_balances
		set amount = amount - $3::numeric, update_time = now()
	where asset = $1 and account = $2 and amount >= $3::numeric
`

	sqlBalanceCredit = `
	insert into ledger_balances as b (
			asset, account, amount, update_time
		)
		values (
			$1, $2, $3::numeric, now()
		)
	on conflict (asset, account) do
		update set
			amount = b.amount + $3::numeric, update_time = now()
`

	sqlAllowanceFind = `
	select amount
	from ledger_allowances
	where asset = $1 and owner = $2 and spender = $3
`

	sqlAllowanceFindForUpdate = `
	select amount
	from ledger_allowances
	where asset = $1 and owner = $2 and spender = $3
	for update
`

	sqlAllowanceSpend = `
	update ledger_allowances
		set amount = amount - $4::numeric, update_time = now()
	where asset = $1 and owner = $2 and spender = $3 and amount >= $4::numeric
`

	sqlAllowanceRestore = `
	update ledger_allowances
		set amount = amount + $4::numeric, update_time = now()
	where asset = $1 and owner = $2 and spender = $3
`

	sqlAllowanceUpsert = `
	insert into ledger_allowances as a (
			asset, owner, spender, amount, update_time
		)
		values (
			$1, $2, $3, $4::numeric, now()
		)
	on conflict (asset, owner, spender) do
		update set
			amount = $4::numeric, update_time = now()
`
)

// LedgerRepository is an asset ledger kept in the same database as the pool.
// A pool operation joins its transfers to the transaction that saves the pool
// state, so both commit at once.
type LedgerRepository struct {
	batchHandler TxBatchHandler
	symbol       string
}

func NewLedgerRepository(db TxBatchHandler, symbol string) *LedgerRepository {
	return &LedgerRepository{batchHandler: db, symbol: symbol}
}

func readAmount(scan func(...interface{}) error) (interface{}, error) {
	r := new(uint256.Int)
	err := scan(r)
	return r, err
}

// amountResult treats a missing row as zero.
func amountResult(results []interface{}, index int, err error) (*uint256.Int, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[index].(*uint256.Int)
	if result == nil {
		return new(uint256.Int), nil
	}
	return result, nil
}

func (repo *LedgerRepository) Symbol() string {
	return repo.symbol
}

func (repo *LedgerRepository) BalanceOf(account tongo.AccountID) (*uint256.Int, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlBalanceFind,
			Args:    []interface{}{repo.symbol, domain.AccountKey(account)},
			ReadOne: readAmount,
		},
	})
	return amountResult(results, 0, err)
}

func (repo *LedgerRepository) Allowance(owner, spender tongo.AccountID) (*uint256.Int, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlAllowanceFind,
			Args:    []interface{}{repo.symbol, domain.AccountKey(owner), domain.AccountKey(spender)},
			ReadOne: readAmount,
		},
	})
	return amountResult(results, 0, err)
}

func (repo *LedgerRepository) Begin() (domain.AssetTx, error) {
	tx, err := repo.batchHandler.BeginBatch(&BatchOptionNormal)
	if err != nil {
		return nil, errors.Wrap(err, "begin ledger transaction")
	}
	return &ledgerTx{tx: tx, handler: repo.batchHandler, symbol: repo.symbol}, nil
}

// join runs the ledger's transfers inside a transaction owned by someone else.
func (repo *LedgerRepository) join(tx BatchTx) *ledgerTx {
	return &ledgerTx{tx: tx, handler: repo.batchHandler, symbol: repo.symbol, joined: true}
}

// Mint credits new balance to the account.
func (repo *LedgerRepository) Mint(account tongo.AccountID, amount *uint256.Int) error {
	tx, err := repo.batchHandler.BeginBatch(&BatchOptionNormal)
	if err != nil {
		return errors.Wrap(err, "begin ledger transaction")
	}
	defer tx.Rollback()

	key := domain.AccountKey(account)
	l := repo.join(tx)
	balance, err := l.lockedAmount(sqlBalanceFindForUpdate, repo.symbol, key)
	if err != nil {
		return err
	}
	if _, overflow := new(uint256.Int).AddOverflow(balance, amount); overflow {
		return errors.Wrapf(domain.ErrorArithmeticOverflow, "minting %v %v", amount.Dec(), repo.symbol)
	}
	_, err = tx.Batch([]sqlbatch.Command{
		{
			Query:  sqlBalanceCredit,
			Args:   []interface{}{repo.symbol, key, amount},
			Affect: 1,
		},
	})
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Approve sets the allowance of owner to spender, replacing the previous one.
func (repo *LedgerRepository) Approve(owner, spender tongo.AccountID, amount *uint256.Int) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query:  sqlAllowanceUpsert,
			Args:   []interface{}{repo.symbol, domain.AccountKey(owner), domain.AccountKey(spender), amount},
			Affect: 1,
		},
	})
	return err
}

type ledgerMove struct {
	from, to string
	amount   *uint256.Int
}

type allowanceSpend struct {
	owner, spender string
	amount         *uint256.Int
}

type ledgerTx struct {
	tx      BatchTx
	handler TxBatchHandler
	symbol  string

	// joined transactions are committed and rolled back by their owner
	joined    bool
	committed bool

	moves  []ledgerMove
	spends []allowanceSpend
}

func (l *ledgerTx) lockedAmount(query string, args ...interface{}) (*uint256.Int, error) {
	results, err := l.tx.Batch([]sqlbatch.Command{
		{
			Query:   query,
			Args:    args,
			ReadOne: readAmount,
		},
	})
	return amountResult(results, 0, err)
}

func (l *ledgerTx) Transfer(from, to tongo.AccountID, amount *uint256.Int) error {
	fromKey, toKey := domain.AccountKey(from), domain.AccountKey(to)
	balance, err := l.lockedAmount(sqlBalanceFindForUpdate, l.symbol, fromKey)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return errors.Wrapf(domain.ErrorInsufficientFunds, "%v balance %v, needed %v", l.symbol, balance.Dec(), amount.Dec())
	}
	_, err = l.tx.Batch([]sqlbatch.Command{
		{
			Query:  sqlBalanceDebit,
			Args:   []interface{}{l.symbol, fromKey, amount},
			Affect: 1,
		},
		{
			Query:  sqlBalanceCredit,
			Args:   []interface{}{l.symbol, toKey, amount},
			Affect: 1,
		},
	})
	if err != nil {
		return err
	}
	l.moves = append(l.moves, ledgerMove{from: fromKey, to: toKey, amount: amount.Clone()})
	return nil
}

// TransferFrom spends the allowance that from granted to spender. An allowance at the
// maximum uint256 value is never consumed.
func (l *ledgerTx) TransferFrom(spender, from, to tongo.AccountID, amount *uint256.Int) error {
	fromKey, spenderKey := domain.AccountKey(from), domain.AccountKey(spender)
	allowance, err := l.lockedAmount(sqlAllowanceFindForUpdate, l.symbol, fromKey, spenderKey)
	if err != nil {
		return err
	}
	if allowance.Lt(amount) {
		return errors.Wrapf(domain.ErrorInsufficientAuthorization, "%v allowance %v, needed %v", l.symbol, allowance.Dec(), amount.Dec())
	}
	if err = l.Transfer(from, to, amount); err != nil {
		return err
	}
	if allowance.Eq(new(uint256.Int).SetAllOne()) {
		return nil
	}
	_, err = l.tx.Batch([]sqlbatch.Command{
		{
			Query:  sqlAllowanceSpend,
			Args:   []interface{}{l.symbol, fromKey, spenderKey, amount},
			Affect: 1,
		},
	})
	if err != nil {
		return err
	}
	l.spends = append(l.spends, allowanceSpend{owner: fromKey, spender: spenderKey, amount: amount.Clone()})
	return nil
}

func (l *ledgerTx) Commit() error {
	if l.joined {
		return nil
	}
	if err := l.tx.Commit(); err != nil {
		return err
	}
	l.committed = true
	return nil
}

func (l *ledgerTx) Rollback() error {
	if l.joined {
		return nil
	}
	return l.tx.Rollback()
}

// Revert books the opposite transfers and restores the spent allowance in a new
// transaction. It fails as a whole when a recipient no longer holds the funds.
func (l *ledgerTx) Revert() error {
	if l.joined {
		return nil
	}
	if !l.committed {
		return l.Rollback()
	}

	commands := make([]sqlbatch.Command, 0, 2*len(l.moves)+len(l.spends))
	for i := len(l.moves) - 1; i >= 0; i-- {
		move := l.moves[i]
		commands = append(commands,
			sqlbatch.Command{
				Query:  sqlBalanceDebit,
				Args:   []interface{}{l.symbol, move.to, move.amount},
				Affect: 1,
			},
			sqlbatch.Command{
				Query:  sqlBalanceCredit,
				Args:   []interface{}{l.symbol, move.from, move.amount},
				Affect: 1,
			},
		)
	}
	for _, spend := range l.spends {
		commands = append(commands, sqlbatch.Command{
			Query:  sqlAllowanceRestore,
			Args:   []interface{}{l.symbol, spend.owner, spend.spender, spend.amount},
			Affect: 1,
		})
	}
	if len(commands) > 0 {
		if _, err := l.handler.Batch(&BatchOptionNormal, commands); err != nil {
			return errors.Wrapf(err, "reverting %v transfers", l.symbol)
		}
	}
	l.committed = false
	l.moves, l.spends = nil, nil
	return nil
}
