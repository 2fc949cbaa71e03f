package repository

import (
	"haven/domain"

	"github.com/behrang/sqlbatch"
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
		return &r, err
	}
	r.Memo = string(jstr)
	return &r, nil
}

func upsertMemoCommand(key string, memo domain.Memorable) sqlbatch.Command {
	return sqlbatch.Command{
		Query: sqlMemoUpsert,
		Args: []interface{}{
			key, memo.ToJson(),
		},
		Affect: 1,
	}
}

func (repo *MemoRepository) Upsert(key string, memo domain.Memorable) (*domain.Memo, error) {

	results, err := repo.batchHandler.Batch(&BatchOptionNormal, []sqlbatch.Command{
		upsertMemoCommand(key, memo),
		{
			Query:   sqlMemoFind,
			Args:    []interface{}{key},
			ReadOne: readMemo,
		},
	})

	result, _ := firstOrNil(results, 1).(*domain.Memo)
	return result, err
}

// Find returns the memo stored under key, or nil if there is none.
func (repo *MemoRepository) Find(key string) (*domain.Memo, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlMemoFind,
			Args:    []interface{}{key},
			ReadOne: readMemo,
		},
	})
	result, _ := firstOrNil(results, 0).(*domain.Memo)
	return result, err
}
