package memory

import (
	"testing"

	"stakepool/domain"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo"
)

var (
	alice = tongo.AccountID{Workchain: 0, Address: [32]byte{1}}
	bob   = tongo.AccountID{Workchain: 0, Address: [32]byte{2}}
	pool  = tongo.AccountID{Workchain: 0, Address: [32]byte{3}}
)

func balance(t *testing.T, l *Ledger, accid tongo.AccountID) uint64 {
	b, err := l.BalanceOf(accid)
	require.NoError(t, err)
	return b.Uint64()
}

func TestTransferAndRollback(t *testing.T) {
	l := NewLedger("PCR")
	l.Mint(alice, uint256.NewInt(100))

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Transfer(alice, bob, uint256.NewInt(30)))
	require.NoError(t, tx.Transfer(bob, pool, uint256.NewInt(10)))
	assert.Equal(t, uint64(70), balance(t, l, alice))

	err = tx.Transfer(alice, bob, uint256.NewInt(71))
	assert.ErrorIs(t, err, domain.ErrorInsufficientFunds)

	require.NoError(t, tx.Rollback())
	assert.Equal(t, uint64(100), balance(t, l, alice))
	assert.Equal(t, uint64(0), balance(t, l, bob))
	assert.Equal(t, uint64(0), balance(t, l, pool))
}

func TestCommitIsFinal(t *testing.T) {
	l := NewLedger("PCR")
	l.Mint(alice, uint256.NewInt(100))

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Transfer(alice, bob, uint256.NewInt(40)))
	require.NoError(t, tx.Commit())
	require.NoError(t, tx.Rollback())

	assert.Equal(t, uint64(60), balance(t, l, alice))
	assert.Equal(t, uint64(40), balance(t, l, bob))
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	l := NewLedger("PCR")
	l.Mint(alice, uint256.NewInt(100))
	l.Approve(alice, pool, uint256.NewInt(50))

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.TransferFrom(pool, alice, bob, uint256.NewInt(20)))

	allowance, err := l.Allowance(alice, pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), allowance.Uint64())

	err = tx.TransferFrom(pool, alice, bob, uint256.NewInt(31))
	assert.ErrorIs(t, err, domain.ErrorInsufficientAuthorization)

	require.NoError(t, tx.Rollback())
	allowance, err = l.Allowance(alice, pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), allowance.Uint64())
	assert.Equal(t, uint64(100), balance(t, l, alice))
}

func TestInfiniteAllowance(t *testing.T) {
	l := NewLedger("PCR")
	l.Mint(alice, uint256.NewInt(100))
	infinite := new(uint256.Int).SetAllOne()
	l.Approve(alice, pool, infinite)

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.TransferFrom(pool, alice, bob, uint256.NewInt(100)))
	require.NoError(t, tx.Commit())

	allowance, err := l.Allowance(alice, pool)
	require.NoError(t, err)
	assert.True(t, allowance.Eq(infinite))

	tx, err = l.Begin()
	require.NoError(t, err)
	err = tx.TransferFrom(pool, alice, bob, uint256.NewInt(1))
	assert.ErrorIs(t, err, domain.ErrorInsufficientFunds)
}

func TestRevertAfterCommit(t *testing.T) {
	l := NewLedger("PCR")
	require.NoError(t, l.Mint(alice, uint256.NewInt(100)))
	require.NoError(t, l.Approve(alice, pool, uint256.NewInt(50)))

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.TransferFrom(pool, alice, bob, uint256.NewInt(20)))
	require.NoError(t, tx.Transfer(bob, pool, uint256.NewInt(5)))
	require.NoError(t, tx.Commit())
	assert.Equal(t, uint64(15), balance(t, l, bob))

	require.NoError(t, tx.Revert())
	assert.Equal(t, uint64(100), balance(t, l, alice))
	assert.Equal(t, uint64(0), balance(t, l, bob))
	assert.Equal(t, uint64(0), balance(t, l, pool))
	allowance, err := l.Allowance(alice, pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), allowance.Uint64())

	// a second revert has nothing left to undo
	require.NoError(t, tx.Revert())
	assert.Equal(t, uint64(100), balance(t, l, alice))
}

func TestRevertFailsWhenFundsAreGone(t *testing.T) {
	l := NewLedger("PCR")
	require.NoError(t, l.Mint(alice, uint256.NewInt(100)))

	tx, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Transfer(alice, bob, uint256.NewInt(60)))
	require.NoError(t, tx.Commit())

	spend, err := l.Begin()
	require.NoError(t, err)
	require.NoError(t, spend.Transfer(bob, pool, uint256.NewInt(60)))
	require.NoError(t, spend.Commit())

	assert.ErrorIs(t, tx.Revert(), domain.ErrorInsufficientFunds)
}

func TestMintOverflow(t *testing.T) {
	l := NewLedger("PCR")
	require.NoError(t, l.Mint(alice, new(uint256.Int).SetAllOne()))
	assert.ErrorIs(t, l.Mint(alice, uint256.NewInt(1)), domain.ErrorArithmeticOverflow)
}

func TestStoreSession(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.InsertPool(&domain.PoolState{PoolAddress: pool, BaseAPY: 1000}))

	session, err := s.Begin()
	require.NoError(t, err)
	state, err := session.FindPool()
	require.NoError(t, err)
	state.BaseAPY = 3000
	account := domain.NewAccountState(alice)
	account.StakedAmount = *uint256.NewInt(7)
	require.NoError(t, session.Save(state, []*domain.AccountState{account}))

	// nothing is visible before Commit
	found, err := s.FindPool()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), found.BaseAPY)
	require.NoError(t, session.Rollback())
	require.NoError(t, session.Commit())
	assert.Empty(t, s.Accounts())

	session, err = s.Begin()
	require.NoError(t, err)
	tx, joined, err := session.Join(NewLedger("PCR"))
	require.NoError(t, err)
	assert.NotNil(t, tx)
	assert.False(t, joined)
	require.NoError(t, session.Save(state, []*domain.AccountState{account}))
	require.NoError(t, session.Commit())

	found, err = s.FindPool()
	require.NoError(t, err)
	assert.Equal(t, uint64(3000), found.BaseAPY)
	stored, err := s.FindAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), stored.StakedAmount.Uint64())
}

func TestStore(t *testing.T) {
	s := NewStore()
	_, err := s.FindPool()
	assert.ErrorIs(t, err, domain.ErrorPoolNotFound)
	assert.ErrorIs(t, s.Save(&domain.PoolState{}, nil), domain.ErrorPoolNotFound)

	state := &domain.PoolState{PoolAddress: pool, BaseAPY: 1000}
	require.NoError(t, s.InsertPool(state))
	assert.ErrorIs(t, s.InsertPool(state), domain.ErrorPoolExists)

	account, err := s.FindAccount(alice)
	require.NoError(t, err)
	assert.Nil(t, account)

	account = domain.NewAccountState(alice)
	account.StakedAmount = *uint256.NewInt(5)
	state.BaseAPY = 2000
	require.NoError(t, s.Save(state, []*domain.AccountState{account}))

	// the store keeps its own copies
	account.StakedAmount = *uint256.NewInt(6)
	stored, err := s.FindAccount(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), stored.StakedAmount.Uint64())

	found, err := s.FindPool()
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), found.BaseAPY)
	assert.Len(t, s.Accounts(), 1)
}

func TestMemoStore(t *testing.T) {
	s := NewMemoStore()
	memo, err := s.Find("treasury_monitor")
	require.NoError(t, err)
	assert.Nil(t, memo)

	require.NoError(t, s.Upsert("treasury_monitor", &domain.MonitorMemo{State: "low", CheckTime: 42}))
	memo, err = s.Find("treasury_monitor")
	require.NoError(t, err)

	var monitorMemo domain.MonitorMemo
	require.NoError(t, monitorMemo.FromJson(memo.Memo))
	assert.Equal(t, domain.MonitorMemo{State: "low", CheckTime: 42}, monitorMemo)
}
