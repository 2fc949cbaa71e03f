package repository

import (
	"haven/domain"
	"strconv"

	"github.com/behrang/sqlbatch"
)

const (
	LedgerMemoKey = "ledger"

	// The stored snapshot is only replaced by its direct successor.
	sqlLedgerUpsert = `
	insert into memos as m (
			key, memo
		)
		values (
			$1, $2::jsonb
		)
	on conflict (key) do
		update set
			memo = $2::jsonb
		where coalesce((m.memo->>'sequence')::numeric, 0) = $3::numeric
	returning key
`

	// The event is only journaled when the guarded upsert returns its key.
	sqlLedgerUpsertWithEvent = `
	with snapshot as (` + sqlLedgerUpsert + `)
	insert into ledger_events (
			id, kind, principal, amount, shares, height, share_price, info, create_time
		)
	select
		$4::uuid, $5::text, $6::text, $7::numeric, $8::numeric, $9::bigint, $10::numeric, $11::jsonb, $12::timestamptz
	from snapshot
	returning id::text
`

	sqlEventFindByPrincipal = `
	select
		id, kind, principal, amount, shares, height, share_price, info, create_time
	from ledger_events
	where principal = $1
	order by create_time desc
	limit $2
`

	sqlEventFindRecent = `
	select
		id, kind, principal, amount, shares, height, share_price, info, create_time
	from ledger_events
	order by create_time desc
	limit $1
`
)

// LedgerRepository persists the ledger snapshot together with its journal.
type LedgerRepository struct {
	batchHandler BatchHandler
}

func NewLedgerRepository(db BatchHandler) *LedgerRepository {
	return &LedgerRepository{batchHandler: db}
}

func readEvent(scan func(...interface{}) error) (domain.LedgerEvent, error) {
	r := domain.LedgerEvent{}
	var infoJson []byte
	err := scan(
		&r.ID, &r.Kind, &r.Principal, &r.Amount, &r.Shares, &r.Height, &r.SharePrice, &infoJson, &r.CreateTime,
	)
	if err == nil && len(infoJson) > 0 {
		r.Info = append(r.Info[:0], infoJson...)
	}
	return r, err
}

func readAllEvents(all interface{}, scan func(...interface{}) error) (interface{}, error) {
	r, err := readEvent(scan)

	list := all.([]domain.LedgerEvent)
	list = append(list, r)
	return list, err
}

func numeric(value uint64) string {
	return strconv.FormatUint(value, 10)
}

func eventArgs(event *domain.LedgerEvent) []interface{} {
	info := []byte(event.Info)
	if len(info) == 0 {
		info = []byte("{}")
	}
	return []interface{}{
		event.ID, event.Kind, string(event.Principal),
		numeric(event.Amount), numeric(event.Shares), int64(event.Height), numeric(event.SharePrice),
		info, event.CreateTime,
	}
}

func readKey(scan func(...interface{}) error) (interface{}, error) {
	var key string
	err := scan(&key)
	return key, err
}

// commitCommand returns a single statement that yields no row when the
// stored snapshot is not the predecessor of snapshot.
func commitCommand(snapshot *domain.LedgerSnapshot, event *domain.LedgerEvent) sqlbatch.Command {
	var previous uint64
	if snapshot.Sequence > 0 {
		previous = snapshot.Sequence - 1
	}
	command := sqlbatch.Command{
		Query: sqlLedgerUpsert,
		Args: []interface{}{
			LedgerMemoKey, snapshot.ToJson(), numeric(previous),
		},
		ReadOne: readKey,
	}
	if event != nil {
		command.Query = sqlLedgerUpsertWithEvent
		command.Args = append(command.Args, eventArgs(event)...)
	}
	return command
}

// Commit stores the snapshot and appends event in a single transaction. It
// returns domain.ErrorStaleLedger, journaling nothing, if the stored snapshot
// is not the snapshot's predecessor.
func (repo *LedgerRepository) Commit(snapshot *domain.LedgerSnapshot, event *domain.LedgerEvent) error {
	results, err := repo.batchHandler.Batch(&BatchOptionSerializable, []sqlbatch.Command{
		commitCommand(snapshot, event),
	})
	if err != nil {
		return err
	}
	if firstOrNil(results, 0) == nil {
		return domain.ErrorStaleLedger
	}
	return nil
}

// Load returns the stored snapshot, or nil if the ledger was never committed.
func (repo *LedgerRepository) Load() (*domain.LedgerSnapshot, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlMemoFind,
			Args:    []interface{}{LedgerMemoKey},
			ReadOne: readMemo,
		},
	})
	if err != nil {
		return nil, err
	}
	memo, _ := firstOrNil(results, 0).(*domain.Memo)
	if memo == nil {
		return nil, nil
	}

	snapshot := &domain.LedgerSnapshot{}
	if err := snapshot.FromJson(memo.Memo); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// FindEvents returns the latest events of principal, or of everyone when principal is empty.
func (repo *LedgerRepository) FindEvents(principal domain.Principal, limit int) ([]domain.LedgerEvent, error) {
	command := sqlbatch.Command{
		Query:   sqlEventFindRecent,
		Args:    []interface{}{limit},
		Init:    make([]domain.LedgerEvent, 0),
		ReadAll: readAllEvents,
	}
	if principal != "" {
		command.Query = sqlEventFindByPrincipal
		command.Args = []interface{}{string(principal), limit}
	}

	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{command})
	result, _ := firstOrNil(results, 0).([]domain.LedgerEvent)
	return result, err
}
