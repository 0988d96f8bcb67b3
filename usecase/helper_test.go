package usecase

import (
	"time"

	"stakepool/domain"
	"stakepool/infrastructure/memory"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo"
)

const t0 = 1_700_000_000

var (
	owner     = testAccount(1)
	poolAddr  = testAccount(2)
	treasury  = testAccount(3)
	collector = testAccount(4)
	alice     = testAccount(10)
	bob       = testAccount(11)
	carol     = testAccount(12)
)

func testAccount(i byte) tongo.AccountID {
	return tongo.AccountID{Workchain: 0, Address: [32]byte{0xaa, i}}
}

var unit = uint256.NewInt(1_000_000_000_000_000_000)

func units(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), unit)
}

func expectedReward(amount *uint256.Int, seconds, apy uint64) *uint256.Int {
	res := new(uint256.Int).Mul(amount, uint256.NewInt(seconds))
	res.Mul(res, uint256.NewInt(apy))
	return res.Div(res, uint256.NewInt(domain.Accuracy*domain.SecondsPerYear))
}

func fee(amount *uint256.Int, feeRate uint64) *uint256.Int {
	res := new(uint256.Int).Mul(amount, uint256.NewInt(feeRate))
	return res.Div(res, uint256.NewInt(domain.Accuracy))
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(seconds uint64) {
	c.now = c.now.Add(time.Duration(seconds) * time.Second)
}

// testingT is met by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Fatalf(format string, args ...interface{})
}

type fixture struct {
	t      testingT
	clock  *fakeClock
	store  *memory.Store
	stake  *memory.Ledger
	reward *memory.Ledger
	pool   *PoolInteractor
	events []domain.Event
}

// newFixture creates a pool with base APY 1000 (10%). Participants and the
// treasury are funded and have approved the pool without limit.
func newFixture(t testingT, feeRate uint64, sameAsset bool) *fixture {
	f := &fixture{
		t:     t,
		clock: &fakeClock{now: time.Unix(t0, 0)},
		store: memory.NewStore(),
		stake: memory.NewLedger("PCR"),
	}
	f.reward = f.stake
	rewardAsset := "PCR"
	if !sameAsset {
		f.reward = memory.NewLedger("USDT")
		rewardAsset = "USDT"
	}

	infinite := new(uint256.Int).SetAllOne()
	for _, accid := range []tongo.AccountID{alice, bob, carol} {
		f.stake.Mint(accid, units(2_000_000))
		f.stake.Approve(accid, poolAddr, infinite)
	}
	f.reward.Mint(treasury, units(250_000_000))
	f.reward.Approve(treasury, poolAddr, infinite)

	treasuryInteractor := NewTreasuryInteractor(f.reward)
	f.pool = NewPoolInteractor(f.store, f.stake, f.reward, treasuryInteractor, f.clock)
	f.pool.Subscribe(func(event domain.Event) {
		f.events = append(f.events, event)
	})

	_, err := f.pool.Initialize(domain.PoolParams{
		PoolAddress:  poolAddr,
		Owner:        owner,
		StakeAsset:   "PCR",
		RewardAsset:  rewardAsset,
		Treasury:     treasury,
		FeeCollector: collector,
		BaseAPY:      1000,
		FeeRate:      feeRate,
		Decimals:     18,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) balance(l *memory.Ledger, accid tongo.AccountID) *uint256.Int {
	b, err := l.BalanceOf(accid)
	require.NoError(f.t, err)
	return b
}

func (f *fixture) pending(accid tongo.AccountID) *uint256.Int {
	p, err := f.pool.PendingReward(accid)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) info(accid tongo.AccountID) *domain.UserInfo {
	info, err := f.pool.UserInfo(accid)
	require.NoError(f.t, err)
	return info
}

func (f *fixture) apy(accid tongo.AccountID) uint64 {
	apy, err := f.pool.RewardAPY(accid)
	require.NoError(f.t, err)
	return apy
}

func (f *fixture) deposit(accid tongo.AccountID, amount *uint256.Int) {
	require.NoError(f.t, f.pool.Deposit(accid, amount, accid))
}

func (f *fixture) lastEvent(kind string) domain.Event {
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Kind == kind {
			return f.events[i]
		}
	}
	f.t.Fatalf("no %v event", kind)
	return domain.Event{}
}
