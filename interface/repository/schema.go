package repository

import (
	"github.com/behrang/sqlbatch"
)

const (
	sqlCreateMemos = `
	create table if not exists memos (
		key  text primary key,
		memo jsonb not null
	)
`

	sqlCreateLedgerEvents = `
	create table if not exists ledger_events (
		id          uuid primary key,
		kind        text not null,
		principal   text not null,
		amount      numeric(20, 0) not null,
		shares      numeric(20, 0) not null,
		height      bigint not null,
		share_price numeric(20, 0) not null,
		info        jsonb not null default '{}'::jsonb,
		create_time timestamptz not null
	)
`

	sqlCreateLedgerEventsIndex = `
	create index if not exists ledger_events_principal_idx
		on ledger_events (principal, create_time desc)
`
)

// Migrate creates the tables the repositories use, if missing.
func Migrate(db BatchHandler) error {
	_, err := db.Batch(&BatchOptionNormal, []sqlbatch.Command{
		{Query: sqlCreateMemos},
		{Query: sqlCreateLedgerEvents},
		{Query: sqlCreateLedgerEventsIndex},
	})
	return err
}
