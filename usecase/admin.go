package usecase

import (
	"strconv"

	"stakepool/domain"

	"github.com/pkg/errors"
	"github.com/tonkeeper/tongo"
)

const (
	AdminSetBaseAPY        = "set_base_apy"
	AdminSetFeeRate        = "set_fee_rate"
	AdminSetRewardTreasury = "set_reward_treasury"
	AdminSetFeeCollector   = "set_fee_collector"
	AdminTransferOwnership = "transfer_ownership"
	AdminRenounceOwnership = "renounce_ownership"
)

func (op *operation) authorize(caller tongo.AccountID) error {
	if caller != op.pool.Owner {
		return errors.Wrapf(domain.ErrorUnauthorized, "%v", domain.AccountKey(caller))
	}
	return nil
}

func (op *operation) emitAdmin(caller tongo.AccountID, action string, value string) {
	op.emit(domain.Event{
		Kind:    domain.EventAdmin,
		Caller:  caller,
		Account: caller,
		Action:  action,
		Value:   value,
	})
}

// SetBaseAPY changes the base APY from now on. Time accrued before the change
// keeps the old rate, even for accounts settled later.
func (interactor *PoolInteractor) SetBaseAPY(caller tongo.AccountID, value uint64) error {
	return interactor.execute(domain.EventAdmin, func(op *operation) error {
		if err := op.authorize(caller); err != nil {
			return err
		}
		op.pool.SetBaseAPY(value, op.now)
		op.emitAdmin(caller, AdminSetBaseAPY, strconv.FormatUint(value, 10))
		return nil
	})
}

func (interactor *PoolInteractor) SetFeeRate(caller tongo.AccountID, value uint64) error {
	return interactor.execute(domain.EventAdmin, func(op *operation) error {
		if err := op.authorize(caller); err != nil {
			return err
		}
		if value > domain.Accuracy {
			return errors.Wrapf(domain.ErrorInvalidFeeRate, "%v", value)
		}
		op.pool.FeeRate = value
		op.emitAdmin(caller, AdminSetFeeRate, strconv.FormatUint(value, 10))
		return nil
	})
}

func (interactor *PoolInteractor) SetRewardTreasury(caller tongo.AccountID, treasury tongo.AccountID) error {
	return interactor.execute(domain.EventAdmin, func(op *operation) error {
		if err := op.authorize(caller); err != nil {
			return err
		}
		if domain.IsZeroAccount(treasury) {
			return domain.ErrorInvalidAccount
		}
		op.pool.Treasury = treasury
		op.emitAdmin(caller, AdminSetRewardTreasury, domain.AccountKey(treasury))
		return nil
	})
}

func (interactor *PoolInteractor) SetFeeCollector(caller tongo.AccountID, collector tongo.AccountID) error {
	return interactor.execute(domain.EventAdmin, func(op *operation) error {
		if err := op.authorize(caller); err != nil {
			return err
		}
		if domain.IsZeroAccount(collector) {
			return domain.ErrorInvalidAccount
		}
		op.pool.FeeCollector = collector
		op.emitAdmin(caller, AdminSetFeeCollector, domain.AccountKey(collector))
		return nil
	})
}

// TransferOwnership hands the privileged role to another account. The zero
// account is refused, since the pool must always have an owner.
func (interactor *PoolInteractor) TransferOwnership(caller tongo.AccountID, owner tongo.AccountID) error {
	return interactor.execute(domain.EventAdmin, func(op *operation) error {
		if err := op.authorize(caller); err != nil {
			return err
		}
		if domain.IsZeroAccount(owner) {
			return domain.ErrorInvalidAccount
		}
		op.pool.Owner = owner
		op.emitAdmin(caller, AdminTransferOwnership, domain.AccountKey(owner))
		return nil
	})
}

// RenounceOwnership always fails.
func (interactor *PoolInteractor) RenounceOwnership(caller tongo.AccountID) error {
	return errors.Wrapf(domain.ErrorDisabledOperation, "%v", AdminRenounceOwnership)
}
