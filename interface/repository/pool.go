package repository

import (
	"database/sql"
	"encoding/json"

	"stakepool/domain"

	"github.com/behrang/sqlbatch"
	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

const (
	sqlPoolInsert = `
	insert into pools (
			id, pool_address, owner, stake_asset, reward_asset, treasury, fee_collector,
			base_apy, fee_rate, decimals, total_staked, acc_reward_per_share, last_accrual_time,
			apy_history, create_time
		)
		values (
			1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10::numeric, $11::numeric, $12, $13::jsonb, $14
		)
	on conflict (id) do nothing
`

	sqlPoolFind = `
	select
		pool_address, owner, stake_asset, reward_asset, treasury, fee_collector,
		base_apy, fee_rate, decimals, total_staked, acc_reward_per_share, last_accrual_time,
		apy_history, create_time
	from pools
	where id = 1
`

	sqlPoolFindForUpdate = `
	select
		pool_address, owner, stake_asset, reward_asset, treasury, fee_collector,
		base_apy, fee_rate, decimals, total_staked, acc_reward_per_share, last_accrual_time,
		apy_history, create_time
	from pools
	where id = 1
	for update
`

	sqlPoolUpdate = `
	update pools
		set owner = $1, treasury = $2, fee_collector = $3, base_apy = $4, fee_rate = $5,
			total_staked = $6::numeric, acc_reward_per_share = $7::numeric, last_accrual_time = $8,
			apy_history = $9::jsonb
	where id = 1
`

	sqlAccountFind = `
	select
		account, staked_amount, claimable, reward_debt, acc_reward_per_share, last_settle_time
	from accounts
	where account = $1
`

	sqlAccountFindForUpdate = `
	select
		account, staked_amount, claimable, reward_debt, acc_reward_per_share, last_settle_time
	from accounts
	where account = $1
	for update
`

	sqlAccountFindAll = `
	select
		account, staked_amount, claimable, reward_debt, acc_reward_per_share, last_settle_time
	from accounts
	order by staked_amount desc
`

	sqlAccountUpsert = `
	insert into accounts as a (
			account, staked_amount, claimable, reward_debt, acc_reward_per_share, last_settle_time, update_time
		)
		values (
			$1, $2::numeric, $3::numeric, $4::numeric, $5::numeric, $6, now()
		)
	on conflict (account) do
		update set
			staked_amount = $2::numeric, claimable = $3::numeric, reward_debt = $4::numeric,
			acc_reward_per_share = $5::numeric, last_settle_time = $6, update_time = now()
`
)

// PoolRepository persists the pool row and its accounts. There is exactly one
// pool per database.
type PoolRepository struct {
	batchHandler BatchHandler
}

func NewPoolRepository(db BatchHandler) *PoolRepository {
	return &PoolRepository{batchHandler: db}
}

func readPool(scan func(...interface{}) error) (interface{}, error) {
	r := domain.PoolState{}
	var poolAddress, owner, treasury, feeCollector string
	var historyJson []byte
	err := scan(
		&poolAddress, &owner, &r.StakeAsset, &r.RewardAsset, &treasury, &feeCollector,
		&r.BaseAPY, &r.FeeRate, &r.Decimals, &r.TotalStaked, &r.AccRewardPerShare, &r.LastAccrualTime,
		&historyJson, &r.CreateTime,
	)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(historyJson, &r.APYHistory); err != nil {
		return nil, err
	}
	for _, item := range []struct {
		target  *tongo.AccountID
		address string
	}{
		{&r.PoolAddress, poolAddress},
		{&r.Owner, owner},
		{&r.Treasury, treasury},
		{&r.FeeCollector, feeCollector},
	} {
		if *item.target, err = parseStoredAccount(item.address); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func scanAccount(scan func(...interface{}) error) (*domain.AccountState, error) {
	r := domain.AccountState{}
	var account string
	err := scan(
		&account, &r.StakedAmount, &r.Claimable, &r.RewardDebt, &r.AccRewardPerShare, &r.LastSettleTime,
	)
	if err != nil {
		return nil, err
	}
	r.Account, err = parseStoredAccount(account)
	return &r, err
}

func readAccount(scan func(...interface{}) error) (interface{}, error) {
	return scanAccount(scan)
}

func readAllAccounts(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	list := memo.([]*domain.AccountState)
	r, err := scanAccount(scan)
	if err != nil {
		return list, err
	}
	return append(list, r), nil
}

func (repo *PoolRepository) InsertPool(pool *domain.PoolState) error {
	existing, err := repo.FindPool()
	if existing != nil {
		return domain.ErrorPoolExists
	}
	if err != nil && !errors.Is(err, domain.ErrorPoolNotFound) {
		return err
	}

	historyJson, _ := json.Marshal(pool.APYHistory)
	_, err = repo.batchHandler.Batch(&BatchOptionSerializable, []sqlbatch.Command{
		{
			Query: sqlPoolInsert,
			Args: []interface{}{
				storedAccount(pool.PoolAddress), storedAccount(pool.Owner), pool.StakeAsset, pool.RewardAsset,
				storedAccount(pool.Treasury), storedAccount(pool.FeeCollector),
				pool.BaseAPY, pool.FeeRate, pool.Decimals, &pool.TotalStaked, &pool.AccRewardPerShare,
				pool.LastAccrualTime, historyJson, pool.CreateTime,
			},
			Affect: 1,
		},
	})
	return err
}

func (repo *PoolRepository) FindPool() (*domain.PoolState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlPoolFind,
			ReadOne: readPool,
		},
	})
	return poolResult(results, err)
}

// poolResult maps a missing pool row to ErrorPoolNotFound.
func poolResult(results []interface{}, err error) (*domain.PoolState, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrorPoolNotFound
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.PoolState)
	if result == nil {
		return nil, domain.ErrorPoolNotFound
	}
	return result, nil
}

// FindAccount returns nil without an error for an account never persisted.
func (repo *PoolRepository) FindAccount(accid tongo.AccountID) (*domain.AccountState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlAccountFind,
			Args:    []interface{}{domain.AccountKey(accid)},
			ReadOne: readAccount,
		},
	})
	return accountResult(results, err)
}

func accountResult(results []interface{}, err error) (*domain.AccountState, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result, _ := results[0].(*domain.AccountState)
	return result, nil
}

func (repo *PoolRepository) FindAllAccounts() ([]*domain.AccountState, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlAccountFindAll,
			Init:    make([]*domain.AccountState, 0),
			ReadAll: readAllAccounts,
		},
	})
	result, _ := results[0].([]*domain.AccountState)
	return result, err
}

// Save writes the pool row and the given accounts in one serializable
// transaction.
func (repo *PoolRepository) Save(pool *domain.PoolState, accounts []*domain.AccountState) error {
	_, err := repo.batchHandler.Batch(&BatchOptionSerializable, saveCommands(pool, accounts))
	return err
}

func saveCommands(pool *domain.PoolState, accounts []*domain.AccountState) []sqlbatch.Command {
	historyJson, _ := json.Marshal(pool.APYHistory)
	commands := make([]sqlbatch.Command, 0, len(accounts)+1)
	commands = append(commands, sqlbatch.Command{
		Query: sqlPoolUpdate,
		Args: []interface{}{
			storedAccount(pool.Owner), storedAccount(pool.Treasury), storedAccount(pool.FeeCollector),
			pool.BaseAPY, pool.FeeRate, &pool.TotalStaked, &pool.AccRewardPerShare, pool.LastAccrualTime,
			historyJson,
		},
		Affect: 1,
	})
	for _, account := range accounts {
		commands = append(commands, sqlbatch.Command{
			Query: sqlAccountUpsert,
			Args: []interface{}{
				domain.AccountKey(account.Account), &account.StakedAmount, &account.Claimable,
				&account.RewardDebt, &account.AccRewardPerShare, account.LastSettleTime,
			},
			Affect: 1,
		})
	}
	return commands
}

// storedAccount keeps unset addresses (a pool without a fee collector, say)
// as empty strings.
func storedAccount(accid tongo.AccountID) string {
	if domain.IsZeroAccount(accid) {
		return ""
	}
	return domain.AccountKey(accid)
}

func parseStoredAccount(address string) (tongo.AccountID, error) {
	if address == "" {
		return tongo.AccountID{}, nil
	}
	return domain.ParseAccount(address)
}
