package repository

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/behrang/sqlbatch"
	"github.com/tonkeeper/tongo"
)

func testAccount(i byte) tongo.AccountID {
	return tongo.AccountID{Workchain: 0, Address: [32]byte{i, 0x77}}
}

// fakeBatchHandler answers reads from canned rows keyed by query and records
// every batch it is given. Like sqlbatch, a ReadOne without rows leaves a nil
// result. Rows hold driver values, so amounts come as numeric text.
type fakeBatchHandler struct {
	rows    map[string][][]interface{}
	err     error
	batches [][]sqlbatch.Command
	options []*sql.TxOptions

	commitErr  error
	committed  int
	rolledBack int
}

func newFakeBatchHandler() *fakeBatchHandler {
	return &fakeBatchHandler{rows: make(map[string][][]interface{})}
}

func fakeScan(row []interface{}) func(...interface{}) error {
	return func(dest ...interface{}) error {
		if len(dest) != len(row) {
			return fmt.Errorf("expected %v destination arguments in Scan, not %v", len(row), len(dest))
		}
		for i, d := range dest {
			if scanner, ok := d.(sql.Scanner); ok {
				if err := scanner.Scan(row[i]); err != nil {
					return fmt.Errorf("converting column %v: %w", i, err)
				}
				continue
			}
			reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
		}
		return nil
	}
}

func (h *fakeBatchHandler) Batch(opts *sql.TxOptions, commands []sqlbatch.Command) ([]interface{}, error) {
	h.batches = append(h.batches, commands)
	h.options = append(h.options, opts)

	results := make([]interface{}, len(commands))
	if h.err != nil {
		return results, h.err
	}
	for i, command := range commands {
		rows := h.rows[command.Query]
		switch {
		case command.ReadOne != nil:
			if len(rows) == 0 {
				continue
			}
			result, err := command.ReadOne(fakeScan(rows[0]))
			if err != nil {
				return results, err
			}
			results[i] = result
		case command.ReadAll != nil:
			memo := command.Init
			for _, row := range rows {
				var err error
				if memo, err = command.ReadAll(memo, fakeScan(row)); err != nil {
					return results, err
				}
			}
			results[i] = memo
		}
	}
	return results, nil
}

func (h *fakeBatchHandler) BeginBatch(opts *sql.TxOptions) (BatchTx, error) {
	if h.err != nil {
		return nil, h.err
	}
	return &fakeBatchTx{handler: h}, nil
}

// lastBatch returns the queries of the most recent batch.
func (h *fakeBatchHandler) lastBatch() []string {
	if len(h.batches) == 0 {
		return nil
	}
	queries := []string{}
	for _, command := range h.batches[len(h.batches)-1] {
		queries = append(queries, command.Query)
	}
	return queries
}

type fakeBatchTx struct {
	handler *fakeBatchHandler
	done    bool
}

func (tx *fakeBatchTx) Batch(commands []sqlbatch.Command) ([]interface{}, error) {
	return tx.handler.Batch(nil, commands)
}

func (tx *fakeBatchTx) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	if tx.handler.commitErr != nil {
		return tx.handler.commitErr
	}
	tx.handler.committed++
	return nil
}

// Rollback after Commit is a no-op, as in dbhandler.
func (tx *fakeBatchTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	tx.handler.rolledBack++
	return nil
}
