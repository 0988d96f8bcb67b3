package dbhandler

import (
	"context"
	"errors"

	"database/sql"

	"stakepool/interface/repository"

	"github.com/behrang/sqlbatch"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// DBHandler contains a connection to database.
type DBHandler struct {
	DB *sql.DB
}

// Batch creates a transaction and executes the batch of commands in that transaction.
// If a retryable error is received, the batch is retried.
func (handler DBHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {

	for {
		results, err := handler.tryBatch(opts, commands)
		if IsRetryable(err) {
			log.Warnf("🟡 Retryable Postgres error, retrying: %v", err)
			continue
		}
		return results, err
	}
}

func (handler DBHandler) tryBatch(opts *sql.TxOptions, commands []sqlbatch.Command) (results []interface{}, err error) {

	results = make([]interface{}, len(commands))

	tx, err := handler.DB.BeginTx(context.Background(), opts)
	if err != nil {
		return
	}
	defer tx.Rollback()

	results, err = sqlbatch.Batch(tx, commands)

	if err == nil {
		err = tx.Commit()
	}

	return
}

// BeginBatch opens a transaction that stays open across several batches. The
// caller decides when to commit; serialization failures are not retried here.
func (handler DBHandler) BeginBatch(opts *sql.TxOptions) (repository.BatchTx, error) {
	tx, err := handler.DB.BeginTx(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	return &txHandler{tx: tx}, nil
}

// IsRetryable reports a Postgres serialization failure.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "40001"
}

type txHandler struct {
	tx *sql.Tx
}

func (handler *txHandler) Batch(commands []sqlbatch.Command) ([]interface{}, error) {
	return sqlbatch.Batch(handler.tx, commands)
}

func (handler *txHandler) Commit() error {
	return handler.tx.Commit()
}

func (handler *txHandler) Rollback() error {
	err := handler.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
