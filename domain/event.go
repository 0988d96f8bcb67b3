package domain

import (
	"github.com/holiman/uint256"
	"github.com/tonkeeper/tongo"
)

const (
	EventDeposit           = "deposit"
	EventWithdraw          = "withdraw"
	EventClaim             = "claim"
	EventEmergencyWithdraw = "emergency_withdraw"
	EventUpdate            = "update"
	EventAdmin             = "admin"
)

// Event is the record emitted by every pool operation. Caller, Amount and To
// follow the operation; Update events carry the settled account snapshot.
type Event struct {
	Kind    string
	Time    uint64
	Caller  tongo.AccountID
	Account tongo.AccountID
	To      tongo.AccountID
	Amount  uint256.Int

	LastSettleTime    uint64
	StakedAmount      uint256.Int
	AccRewardPerShare uint256.Int

	// Admin events only.
	Action string
	Value  string
}

func NewUpdateEvent(account *AccountState) Event {
	return Event{
		Kind:              EventUpdate,
		Time:              account.LastSettleTime,
		Caller:            account.Account,
		Account:           account.Account,
		LastSettleTime:    account.LastSettleTime,
		StakedAmount:      account.StakedAmount,
		AccRewardPerShare: account.AccRewardPerShare,
	}
}
