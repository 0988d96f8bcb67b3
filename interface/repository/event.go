package repository

import (
	"stakepool/domain"

	"github.com/behrang/sqlbatch"
	"github.com/tonkeeper/tongo"
)

const (
	sqlEventInsert = `
	insert into pool_events (
			kind, event_time, caller, account, recipient, amount,
			last_settle_time, staked_amount, acc_reward_per_share, action, value, create_time
		)
		values (
			$1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9::numeric, $10, $11, now()
		)
`

	sqlEventFindByAccount = `
	select
		kind, event_time, caller, account, recipient, amount,
		last_settle_time, staked_amount, acc_reward_per_share, action, value
	from pool_events
	where account = $1
	order by id desc
	limit $2
`
)

// EventRepository is the append-only history of pool events.
type EventRepository struct {
	batchHandler BatchHandler
}

func NewEventRepository(db BatchHandler) *EventRepository {
	return &EventRepository{batchHandler: db}
}

func readAllEvents(memo interface{}, scan func(...interface{}) error) (interface{}, error) {
	list := memo.([]domain.Event)
	r := domain.Event{}
	var caller, account, recipient string
	err := scan(
		&r.Kind, &r.Time, &caller, &account, &recipient, &r.Amount,
		&r.LastSettleTime, &r.StakedAmount, &r.AccRewardPerShare, &r.Action, &r.Value,
	)
	if err != nil {
		return list, err
	}
	if r.Caller, err = parseStoredAccount(caller); err != nil {
		return list, err
	}
	if r.Account, err = parseStoredAccount(account); err != nil {
		return list, err
	}
	if r.To, err = parseStoredAccount(recipient); err != nil {
		return list, err
	}
	return append(list, r), nil
}

func (repo *EventRepository) InsertEvents(events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	commands := make([]sqlbatch.Command, 0, len(events))
	for i := range events {
		e := &events[i]
		commands = append(commands, sqlbatch.Command{
			Query: sqlEventInsert,
			Args: []interface{}{
				e.Kind, e.Time, storedAccount(e.Caller), storedAccount(e.Account), storedAccount(e.To), &e.Amount,
				e.LastSettleTime, &e.StakedAmount, &e.AccRewardPerShare, e.Action, e.Value,
			},
			Affect: 1,
		})
	}
	_, err := repo.batchHandler.Batch(&BatchOptionNormal, commands)
	return err
}

func (repo *EventRepository) FindByAccount(accid tongo.AccountID, limit int) ([]domain.Event, error) {
	results, err := repo.batchHandler.Batch(&BatchOptionNormalReadOnly, []sqlbatch.Command{
		{
			Query:   sqlEventFindByAccount,
			Args:    []interface{}{domain.AccountKey(accid), limit},
			Init:    make([]domain.Event, 0),
			ReadAll: readAllEvents,
		},
	})
	result, _ := results[0].([]domain.Event)
	return result, err
}
