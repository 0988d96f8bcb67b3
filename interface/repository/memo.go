package repository

import (
	"database/sql"

	"stakepool/domain"

	"github.com/behrang/sqlbatch"
	"github.com/pkg/errors"
)

const (
	sqlMemoUpsert = `
	insert into memos as c (
			key, memo
		)
		values (
			$1, $2::jsonb
		)
	on conflict (key) do
		update set
			memo = $2::jsonb
`

	sqlMemoFind = `
	select
		key, memo
	from memos
	where key = $1
`
)

type MemoRepository struct {
	batchHandler BatchHandler
}

func NewMemoRepository(db BatchHandler) *MemoRepository {
	return &MemoRepository{batchHandler: db}
}

func readMemo(scan func(...interface{}) error) (interface{}, error) {
	r := domain.Memo{}
	var jstr []byte
	err := scan(
		&r.Key, &jstr,
	)
	if err != nil {
		return nil, err
	}
	r.Memo = string(jstr)
	return &r, nil
}

func (repo *MemoRepository) Upsert(key string, memo domain.Memorable) error {
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{
			Query: sqlMemoUpsert,
			Args: []interface{}{
				key, memo.ToJson(),
			},
			Affect: 1,
		},
	})
	return err
}

// Find returns nil without an error when nothing is stored under key.
func (repo *MemoRepository) Find(key string) (*domain.Memo, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlMemoFind,
			Args:    []interface{}{key},
			ReadOne: readMemo,
		},
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.Memo)
	return result, nil
}
