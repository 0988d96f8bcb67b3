package repository

import (
	"github.com/behrang/sqlbatch"
)

var schema = []string{
	`
	create table if not exists pools (
		id                   integer primary key check (id = 1),
		pool_address         text not null,
		owner                text not null,
		stake_asset          text not null,
		reward_asset         text not null,
		treasury             text not null,
		fee_collector        text not null,
		base_apy             bigint not null,
		fee_rate             bigint not null,
		decimals             integer not null,
		total_staked         numeric(78, 0) not null,
		acc_reward_per_share numeric(78, 0) not null,
		last_accrual_time    bigint not null,
		apy_history          jsonb not null,
		create_time          timestamptz not null
	)
`,
	`
	create table if not exists accounts (
		account              text primary key,
		staked_amount        numeric(78, 0) not null,
		claimable            numeric(78, 0) not null,
		reward_debt          numeric(78, 0) not null,
		acc_reward_per_share numeric(78, 0) not null,
		last_settle_time     bigint not null,
		update_time          timestamptz not null
	)
`,
	`
	create table if not exists pool_events (
		id                   bigserial primary key,
		kind                 text not null,
		event_time           bigint not null,
		caller               text not null,
		account              text not null,
		recipient            text not null,
		amount               numeric(78, 0) not null,
		last_settle_time     bigint not null,
		staked_amount        numeric(78, 0) not null,
		acc_reward_per_share numeric(78, 0) not null,
		action               text not null,
		value                text not null,
		create_time          timestamptz not null
	)
`,
	`create index if not exists pool_events_account_idx on pool_events (account, id)`,
	`
	create table if not exists memos (
		key  text primary key,
		memo jsonb not null
	)
`,
	`
	create table if not exists ledger_balances (
		asset       text not null,
		account     text not null,
		amount      numeric(78, 0) not null check (amount >= 0),
		update_time timestamptz not null,
		primary key (asset, account)
	)
`,
	`
	create table if not exists ledger_allowances (
		asset       text not null,
		owner       text not null,
		spender     text not null,
		amount      numeric(78, 0) not null check (amount >= 0),
		update_time timestamptz not null,
		primary key (asset, owner, spender)
	)
`,
}

// Migrate creates the tables the repositories need, if they are missing.
func Migrate(db BatchHandler) error {
	commands := make([]sqlbatch.Command, 0, len(schema))
	for _, query := range schema {
		commands = append(commands, sqlbatch.Command{Query: query})
	}
	_, err := db.Batch(&BatchOptionNormal, commands)
	return err
}
