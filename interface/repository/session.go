package repository

import (
	"stakepool/domain"

	"github.com/behrang/sqlbatch"
	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

// StateRepository is the full Postgres-backed pool store.
type StateRepository struct {
	*PoolRepository
	*EventRepository
	batchHandler TxBatchHandler
}

func NewStateRepository(db TxBatchHandler) *StateRepository {
	return &StateRepository{
		PoolRepository:  NewPoolRepository(db),
		EventRepository: NewEventRepository(db),
		batchHandler:    db,
	}
}

// Begin opens the transaction of one pool operation. Every session locks the
// pool row first, which serializes operations across processes.
func (repo *StateRepository) Begin() (domain.StateSession, error) {
	tx, err := repo.batchHandler.BeginBatch(&BatchOptionNormal)
	if err != nil {
		return nil, errors.Wrap(err, "begin pool transaction")
	}
	return &stateSession{tx: tx, handler: repo.batchHandler}, nil
}

type stateSession struct {
	tx      BatchTx
	handler TxBatchHandler
}

func (s *stateSession) FindPool() (*domain.PoolState, error) {
	results, err := s.tx.Batch([]sqlbatch.Command{
		{
			Query:   sqlPoolFindForUpdate,
			ReadOne: readPool,
		},
	})
	return poolResult(results, err)
}

func (s *stateSession) FindAccount(accid tongo.AccountID) (*domain.AccountState, error) {
	results, err := s.tx.Batch([]sqlbatch.Command{
		{
			Query:   sqlAccountFindForUpdate,
			Args:    []interface{}{domain.AccountKey(accid)},
			ReadOne: readAccount,
		},
	})
	return accountResult(results, err)
}

func (s *stateSession) Save(pool *domain.PoolState, accounts []*domain.AccountState) error {
	_, err := s.tx.Batch(saveCommands(pool, accounts))
	return err
}

// Join runs a ledger of the same database inside the session. Any other ledger
// gets a transaction of its own.
func (s *stateSession) Join(ledger domain.AssetLedger) (domain.AssetTx, bool, error) {
	if repo, ok := ledger.(*LedgerRepository); ok && repo.batchHandler == s.handler {
		return repo.join(s.tx), true, nil
	}
	tx, err := ledger.Begin()
	return tx, false, err
}

func (s *stateSession) Commit() error {
	return s.tx.Commit()
}

func (s *stateSession) Rollback() error {
	return s.tx.Rollback()
}
