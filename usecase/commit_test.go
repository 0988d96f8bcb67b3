package usecase

import (
	"testing"

	"stakepool/domain"
	"stakepool/infrastructure/memory"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCommit = errors.New("commit failed")

// brokenLedger hands out transactions that discard their transfers and fail
// on Commit while broken is set.
type brokenLedger struct {
	*memory.Ledger
	broken bool
}

func (l *brokenLedger) Begin() (domain.AssetTx, error) {
	tx, err := l.Ledger.Begin()
	if err != nil {
		return nil, err
	}
	return &brokenTx{AssetTx: tx, ledger: l}, nil
}

type brokenTx struct {
	domain.AssetTx
	ledger *brokenLedger
}

func (tx *brokenTx) Commit() error {
	if tx.ledger.broken {
		tx.AssetTx.Rollback()
		return errCommit
	}
	return tx.AssetTx.Commit()
}

// brokenStore fails every session commit while broken is set.
type brokenStore struct {
	*memory.Store
	broken bool
}

func (s *brokenStore) Begin() (domain.StateSession, error) {
	session, err := s.Store.Begin()
	if err != nil {
		return nil, err
	}
	return &brokenSession{StateSession: session, store: s}, nil
}

type brokenSession struct {
	domain.StateSession
	store *brokenStore
}

func (s *brokenSession) Commit() error {
	if s.store.broken {
		s.StateSession.Rollback()
		return errCommit
	}
	return s.StateSession.Commit()
}

func TestWithdrawIsUndoneWhenStakeCommitFails(t *testing.T) {
	f := newFixture(t, 0, false)
	f.deposit(alice, units(50000))
	apy := f.apy(alice)
	f.clock.Advance(315360)

	stake := &brokenLedger{Ledger: f.stake}
	f.pool = NewPoolInteractor(f.store, stake, f.reward, NewTreasuryInteractor(f.reward), f.clock)

	reward := expectedReward(units(50000), 315360, apy)
	treasuryBefore := f.balance(f.reward, treasury)
	stakeBefore := f.balance(f.stake, alice)

	stake.broken = true
	err := f.pool.Withdraw(alice, units(10000), alice)
	require.ErrorIs(t, err, errCommit)

	assert.True(t, f.balance(f.reward, alice).IsZero())
	assert.Equal(t, treasuryBefore.Dec(), f.balance(f.reward, treasury).Dec())
	assert.Equal(t, stakeBefore.Dec(), f.balance(f.stake, alice).Dec())
	assert.Equal(t, units(50000).Dec(), f.info(alice).Amount.Dec())
	assert.Equal(t, reward.Dec(), f.pending(alice).Dec())

	stake.broken = false
	require.NoError(t, f.pool.Claim(alice, alice))
	assert.Equal(t, reward.Dec(), f.balance(f.reward, alice).Dec())
	assert.True(t, f.pending(alice).IsZero())
}

func TestClaimIsUndoneWhenRewardCommitFails(t *testing.T) {
	f := newFixture(t, 1, false)
	f.deposit(alice, units(50000))
	f.clock.Advance(315360)

	reward := &brokenLedger{Ledger: f.reward}
	f.pool = NewPoolInteractor(f.store, f.stake, reward, NewTreasuryInteractor(f.reward), f.clock)

	pending := f.pending(alice)
	reward.broken = true
	require.ErrorIs(t, f.pool.Claim(alice, alice), errCommit)

	assert.True(t, f.balance(f.reward, alice).IsZero())
	assert.True(t, f.balance(f.reward, collector).IsZero())
	assert.Equal(t, pending.Dec(), f.pending(alice).Dec())
	assert.True(t, f.info(alice).RewardDebt.IsZero())
}

func TestDepositIsRevertedWhenStateCommitFails(t *testing.T) {
	f := newFixture(t, 1, true)
	f.deposit(alice, units(50000))
	f.clock.Advance(315360)

	store := &brokenStore{Store: f.store}
	f.pool = NewPoolInteractor(store, f.stake, f.reward, NewTreasuryInteractor(f.reward), f.clock)

	aliceBefore := f.balance(f.stake, alice)
	poolBefore := f.balance(f.stake, poolAddr)
	collectorBefore := f.balance(f.stake, collector)
	treasuryBefore := f.balance(f.reward, treasury)
	pending := f.pending(alice)

	store.broken = true
	require.ErrorIs(t, f.pool.Deposit(alice, units(1000), alice), errCommit)
	require.ErrorIs(t, f.pool.Withdraw(alice, units(1000), alice), errCommit)

	assert.Equal(t, aliceBefore.Dec(), f.balance(f.stake, alice).Dec())
	assert.Equal(t, poolBefore.Dec(), f.balance(f.stake, poolAddr).Dec())
	assert.Equal(t, collectorBefore.Dec(), f.balance(f.stake, collector).Dec())
	assert.Equal(t, treasuryBefore.Dec(), f.balance(f.reward, treasury).Dec())
	assert.Equal(t, pending.Dec(), f.pending(alice).Dec())

	net := new(uint256.Int).Sub(units(50000), fee(units(50000), 1))
	pool, err := f.pool.Pool()
	require.NoError(t, err)
	assert.Equal(t, net.Dec(), pool.TotalStaked.Dec())
	assert.Equal(t, net.Dec(), f.info(alice).Amount.Dec())

	store.broken = false
	require.NoError(t, f.pool.Deposit(alice, units(1000), alice))
}
