package usecase

import (
	"sync"
	"time"

	"stakepool/domain"
	"stakepool/interface/exporter"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tonkeeper/tongo"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// StateRepository persists the pool and its accounts. FindAccount returns nil
// for an account that has never been stored. Operations change state only
// through a session.
type StateRepository interface {
	InsertPool(pool *domain.PoolState) error
	FindPool() (*domain.PoolState, error)
	FindAccount(accid tongo.AccountID) (*domain.AccountState, error)
	Begin() (domain.StateSession, error)
	InsertEvents(events []domain.Event) error
}

type EventListener func(event domain.Event)

// PoolInteractor is the only component that changes pool and account state and
// the only one that moves assets. Operations run one at a time, and each one
// either completes entirely or leaves no trace.
type PoolInteractor struct {
	mu                 sync.Mutex
	repository         StateRepository
	stakeLedger        domain.AssetLedger
	rewardLedger       domain.AssetLedger
	treasuryInteractor *TreasuryInteractor
	clock              Clock
	listeners          []EventListener
}

func NewPoolInteractor(repository StateRepository,
	stakeLedger domain.AssetLedger,
	rewardLedger domain.AssetLedger,
	treasuryInteractor *TreasuryInteractor,
	clock Clock) *PoolInteractor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &PoolInteractor{
		repository:         repository,
		stakeLedger:        stakeLedger,
		rewardLedger:       rewardLedger,
		treasuryInteractor: treasuryInteractor,
		clock:              clock,
	}
}

// Subscribe registers a listener for committed events. Listeners run while the
// pool is locked and must not call back into it.
func (interactor *PoolInteractor) Subscribe(listener EventListener) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	interactor.listeners = append(interactor.listeners, listener)
}

func (interactor *PoolInteractor) now() uint64 {
	return uint64(interactor.clock.Now().Unix())
}

// Initialize creates the pool state. It can succeed only once per repository.
func (interactor *PoolInteractor) Initialize(params domain.PoolParams) (*domain.PoolState, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	pool, err := domain.NewPoolState(params, interactor.now())
	if err != nil {
		return nil, err
	}
	if err = interactor.repository.InsertPool(pool); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"pool":     domain.AccountKey(pool.PoolAddress),
		"base_apy": pool.BaseAPY,
		"fee_rate": pool.FeeRate,
	}).Info("🔵 staking pool initialized")
	return pool, nil
}

func (interactor *PoolInteractor) Deposit(caller tongo.AccountID, amount *uint256.Int, beneficiary tongo.AccountID) error {
	return interactor.execute(domain.EventDeposit, func(op *operation) error {
		account, err := op.account(beneficiary)
		if err != nil {
			return err
		}
		op.keep(account)

		if err = op.settle(account); err != nil {
			return err
		}

		fee, err := domain.Fee(amount, op.pool.FeeRate)
		if err != nil {
			return err
		}
		net := new(uint256.Int).Sub(amount, fee)

		if !amount.IsZero() {
			tx, err := op.stakeTx()
			if err != nil {
				return err
			}
			if err = tx.TransferFrom(op.pool.PoolAddress, caller, op.pool.PoolAddress, amount); err != nil {
				return errors.Wrap(err, "pulling stake")
			}
			if err = transfer(tx, op.pool.PoolAddress, op.pool.FeeCollector, fee); err != nil {
				return errors.Wrap(err, "forwarding deposit fee")
			}
		}

		staked, err := domain.Add(&account.StakedAmount, net)
		if err != nil {
			return err
		}
		total, err := domain.Add(&op.pool.TotalStaked, net)
		if err != nil {
			return err
		}
		account.StakedAmount = *staked
		op.pool.TotalStaked = *total

		op.emit(domain.Event{
			Kind:    domain.EventDeposit,
			Caller:  caller,
			Account: beneficiary,
			To:      beneficiary,
			Amount:  *amount,
		})
		return nil
	})
}

// Withdraw returns principal from the caller's stake to the recipient and pays
// out the realized reward with it. One fee is charged over both.
func (interactor *PoolInteractor) Withdraw(caller tongo.AccountID, amount *uint256.Int, to tongo.AccountID) error {
	return interactor.execute(domain.EventWithdraw, func(op *operation) error {
		account, err := op.account(caller)
		if err != nil {
			return err
		}
		if account.StakedAmount.Lt(amount) {
			return errors.Wrapf(domain.ErrorInsufficientBalance, "staked %v, requested %v", account.StakedAmount.Dec(), amount.Dec())
		}

		if err = op.settle(account); err != nil {
			return err
		}

		reward := account.Claimable.Clone()
		rewardFee, principalFee, err := domain.SplitFee(reward, amount, op.pool.FeeRate)
		if err != nil {
			return err
		}

		if err = op.payReward(to, reward, rewardFee); err != nil {
			return err
		}

		if !amount.IsZero() {
			tx, err := op.stakeTx()
			if err != nil {
				return err
			}
			if err = transfer(tx, op.pool.PoolAddress, to, new(uint256.Int).Sub(amount, principalFee)); err != nil {
				return errors.Wrap(err, "returning stake")
			}
			if err = transfer(tx, op.pool.PoolAddress, op.pool.FeeCollector, principalFee); err != nil {
				return errors.Wrap(err, "forwarding withdraw fee")
			}
		}

		account.Claimable.Clear()
		account.StakedAmount.Sub(&account.StakedAmount, amount)
		op.pool.TotalStaked.Sub(&op.pool.TotalStaked, amount)
		if account.StakedAmount.IsZero() {
			account.RewardDebt.Clear()
		} else if err = addTo(&account.RewardDebt, reward); err != nil {
			return err
		}

		op.emit(domain.Event{
			Kind:    domain.EventWithdraw,
			Caller:  caller,
			Account: caller,
			To:      to,
			Amount:  *amount,
		})
		return nil
	})
}

func (interactor *PoolInteractor) Claim(caller tongo.AccountID, to tongo.AccountID) error {
	return interactor.execute(domain.EventClaim, func(op *operation) error {
		account, err := op.account(caller)
		if err != nil {
			return err
		}
		if err = op.settle(account); err != nil {
			return err
		}

		reward := account.Claimable.Clone()
		fee, err := domain.Fee(reward, op.pool.FeeRate)
		if err != nil {
			return err
		}
		if err = op.payReward(to, reward, fee); err != nil {
			return err
		}

		account.Claimable.Clear()
		if err = addTo(&account.RewardDebt, reward); err != nil {
			return err
		}

		op.emit(domain.Event{
			Kind:    domain.EventClaim,
			Caller:  caller,
			Account: caller,
			To:      to,
			Amount:  *reward,
		})
		return nil
	})
}

// EmergencyWithdraw returns the whole stake without settling. Unclaimed reward
// is forfeited and the reward asset is never touched.
func (interactor *PoolInteractor) EmergencyWithdraw(caller tongo.AccountID, to tongo.AccountID) error {
	return interactor.execute(domain.EventEmergencyWithdraw, func(op *operation) error {
		account, err := op.account(caller)
		if err != nil {
			return err
		}

		amount := account.StakedAmount.Clone()
		fee, err := domain.Fee(amount, op.pool.FeeRate)
		if err != nil {
			return err
		}

		if !amount.IsZero() {
			tx, err := op.stakeTx()
			if err != nil {
				return err
			}
			if err = transfer(tx, op.pool.PoolAddress, to, new(uint256.Int).Sub(amount, fee)); err != nil {
				return errors.Wrap(err, "returning stake")
			}
			if err = transfer(tx, op.pool.PoolAddress, op.pool.FeeCollector, fee); err != nil {
				return errors.Wrap(err, "forwarding withdraw fee")
			}
		}

		account.StakedAmount.Clear()
		account.Claimable.Clear()
		account.RewardDebt.Clear()
		account.LastSettleTime = op.now
		op.pool.TotalStaked.Sub(&op.pool.TotalStaked, amount)

		op.emit(domain.Event{
			Kind:    domain.EventEmergencyWithdraw,
			Caller:  caller,
			Account: caller,
			To:      to,
			Amount:  *amount,
		})
		return nil
	})
}

// Update settles the account without moving any funds.
func (interactor *PoolInteractor) Update(accid tongo.AccountID) error {
	return interactor.execute(domain.EventUpdate, func(op *operation) error {
		account, err := op.account(accid)
		if err != nil {
			return err
		}
		return op.settle(account)
	})
}

//-------------------------------------------------------------------
// Reads

func (interactor *PoolInteractor) Pool() (*domain.PoolState, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	return interactor.repository.FindPool()
}

func (interactor *PoolInteractor) UserInfo(accid tongo.AccountID) (*domain.UserInfo, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	pool, err := interactor.repository.FindPool()
	if err != nil {
		return nil, err
	}
	account, err := interactor.repository.FindAccount(accid)
	if err != nil {
		return nil, err
	}
	if account == nil {
		account = domain.NewAccountState(accid)
	}

	pending, err := domain.PendingReward(pool, account, interactor.now())
	if err != nil {
		return nil, err
	}

	return &domain.UserInfo{
		Account:           accid,
		Amount:            account.StakedAmount,
		RewardDebt:        account.RewardDebt,
		LastRewardTime:    account.LastSettleTime,
		AccRewardPerShare: account.AccRewardPerShare,
		PendingReward:     *pending,
		RewardAPY:         domain.AccountAPY(pool, account),
	}, nil
}

func (interactor *PoolInteractor) PendingReward(accid tongo.AccountID) (*uint256.Int, error) {
	info, err := interactor.UserInfo(accid)
	if err != nil {
		return nil, err
	}
	return &info.PendingReward, nil
}

func (interactor *PoolInteractor) RewardAPY(accid tongo.AccountID) (uint64, error) {
	info, err := interactor.UserInfo(accid)
	if err != nil {
		return 0, err
	}
	return info.RewardAPY, nil
}

func (interactor *PoolInteractor) AvailableReward() (*domain.RewardAvailability, error) {
	pool, err := interactor.Pool()
	if err != nil {
		return nil, err
	}
	return interactor.treasuryInteractor.AvailableReward(pool.Treasury, pool.PoolAddress)
}

//-------------------------------------------------------------------
// Unit of work

func (interactor *PoolInteractor) execute(kind string, fn func(op *operation) error) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	session, err := interactor.repository.Begin()
	if err != nil {
		exporter.IncErrorCount()
		return err
	}

	pool, err := session.FindPool()
	if err != nil {
		session.Rollback()
		exporter.IncErrorCount()
		return err
	}

	op := &operation{
		interactor: interactor,
		session:    session,
		now:        interactor.now(),
		pool:       pool,
		accounts:   make(map[tongo.AccountID]*domain.AccountState),
		persist:    make(map[tongo.AccountID]bool),
	}

	err = domain.Accrue(op.pool, op.now)
	if err == nil {
		err = fn(op)
	}
	if err == nil {
		if err = session.Save(op.pool, op.dirtyAccounts()); err != nil {
			err = errors.Wrap(err, "saving pool state")
		}
	}
	if err != nil {
		op.rollback()
		exporter.IncErrorCount()
		log.WithField("operation", kind).Warnf("🔴 pool operation failed - %v", err.Error())
		return err
	}

	if err = op.commit(); err != nil {
		exporter.IncErrorCount()
		log.WithField("operation", kind).Errorf("🔴 committing transfers - %v", err.Error())
		return errors.Wrap(err, "committing transfers")
	}

	exporter.IncOperation(kind)
	exporter.SetAmount(exporter.METRIC_TOTAL_STAKED, &op.pool.TotalStaked, op.pool.Decimals)

	if err = interactor.repository.InsertEvents(op.events); err != nil {
		log.WithField("operation", kind).Warnf("🟡 storing events - %v", err.Error())
	}

	for _, event := range op.events {
		for _, listener := range interactor.listeners {
			listener(event)
		}
	}
	return nil
}

type operation struct {
	interactor *PoolInteractor
	session    domain.StateSession
	now        uint64

	pool *domain.PoolState

	order    []tongo.AccountID
	accounts map[tongo.AccountID]*domain.AccountState
	persist  map[tongo.AccountID]bool

	stake  domain.AssetTx
	reward domain.AssetTx
	// txs are the ledger transactions not joined to the session, in the order
	// they were opened
	txs []domain.AssetTx

	events []domain.Event
}

func (op *operation) account(accid tongo.AccountID) (*domain.AccountState, error) {
	if account, exist := op.accounts[accid]; exist {
		return account, nil
	}

	account, err := op.session.FindAccount(accid)
	if err != nil {
		return nil, errors.Wrap(err, "loading account")
	}

	op.order = append(op.order, accid)
	if account == nil {
		account = domain.NewAccountState(accid)
	} else {
		op.persist[accid] = true
	}
	op.accounts[accid] = account
	return account, nil
}

// keep marks a new account to be stored when the operation completes.
func (op *operation) keep(account *domain.AccountState) {
	op.persist[account.Account] = true
}

func (op *operation) dirtyAccounts() []*domain.AccountState {
	res := make([]*domain.AccountState, 0, len(op.order))
	for _, accid := range op.order {
		if op.persist[accid] {
			res = append(res, op.accounts[accid])
		}
	}
	return res
}

func (op *operation) settle(account *domain.AccountState) error {
	if _, err := domain.Settle(op.pool, account, op.now); err != nil {
		return err
	}
	op.emit(domain.NewUpdateEvent(account))
	return nil
}

func (op *operation) emit(event domain.Event) {
	if event.Time == 0 {
		event.Time = op.now
	}
	op.events = append(op.events, event)
}

func (op *operation) sameLedger() bool {
	return op.interactor.stakeLedger == op.interactor.rewardLedger
}

func (op *operation) join(ledger domain.AssetLedger) (domain.AssetTx, error) {
	tx, joined, err := op.session.Join(ledger)
	if err != nil {
		return nil, err
	}
	if !joined {
		op.txs = append(op.txs, tx)
	}
	return tx, nil
}

func (op *operation) stakeTx() (domain.AssetTx, error) {
	if op.stake != nil {
		return op.stake, nil
	}
	if op.sameLedger() && op.reward != nil {
		op.stake = op.reward
		return op.stake, nil
	}
	tx, err := op.join(op.interactor.stakeLedger)
	if err != nil {
		return nil, errors.Wrap(err, "opening stake ledger transaction")
	}
	op.stake = tx
	return tx, nil
}

func (op *operation) rewardTx() (domain.AssetTx, error) {
	if op.reward != nil {
		return op.reward, nil
	}
	if op.sameLedger() && op.stake != nil {
		op.reward = op.stake
		return op.reward, nil
	}
	tx, err := op.join(op.interactor.rewardLedger)
	if err != nil {
		return nil, errors.Wrap(err, "opening reward ledger transaction")
	}
	op.reward = tx
	return tx, nil
}

// payReward pays reward-fee to the recipient and fee to the fee collector, both
// out of the treasury through its allowance to the pool.
func (op *operation) payReward(to tongo.AccountID, reward, fee *uint256.Int) error {
	if reward.IsZero() {
		return nil
	}
	tx, err := op.rewardTx()
	if err != nil {
		return err
	}
	if err = transferFrom(tx, op.pool.PoolAddress, op.pool.Treasury, to, new(uint256.Int).Sub(reward, fee)); err != nil {
		return errors.Wrap(err, "paying reward")
	}
	if err = transferFrom(tx, op.pool.PoolAddress, op.pool.Treasury, op.pool.FeeCollector, fee); err != nil {
		return errors.Wrap(err, "forwarding reward fee")
	}
	return nil
}

// commit makes the operation final. Ledger transactions of their own commit
// first and the state session last. When a commit fails, the ledger
// transactions already committed are reverted and the session is rolled back.
func (op *operation) commit() error {
	for i, tx := range op.txs {
		if err := tx.Commit(); err != nil {
			for _, rest := range op.txs[i:] {
				rest.Rollback()
			}
			op.revert(op.txs[:i])
			op.session.Rollback()
			return err
		}
	}
	if err := op.session.Commit(); err != nil {
		op.revert(op.txs)
		return err
	}
	return nil
}

func (op *operation) revert(committed []domain.AssetTx) {
	for i := len(committed) - 1; i >= 0; i-- {
		if err := committed[i].Revert(); err != nil {
			exporter.IncErrorCount()
			log.Errorf("🔴 reverting ledger transaction - %v", err.Error())
		}
	}
}

func (op *operation) rollback() {
	for i := len(op.txs) - 1; i >= 0; i-- {
		if err := op.txs[i].Rollback(); err != nil {
			log.Errorf("🔴 rolling back ledger transaction - %v", err.Error())
		}
	}
	if err := op.session.Rollback(); err != nil {
		log.Errorf("🔴 rolling back pool state - %v", err.Error())
	}
}

func transfer(tx domain.AssetTx, from, to tongo.AccountID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	return tx.Transfer(from, to, amount)
}

func transferFrom(tx domain.AssetTx, spender, from, to tongo.AccountID, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	return tx.TransferFrom(spender, from, to, amount)
}

func addTo(target *uint256.Int, amount *uint256.Int) error {
	sum, err := domain.Add(target, amount)
	if err != nil {
		return err
	}
	*target = *sum
	return nil
}
