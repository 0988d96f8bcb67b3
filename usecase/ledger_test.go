package usecase

import (
	"testing"

	"stakepool/domain"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundedAccountCanDeposit(t *testing.T) {
	f := newFixture(t, 0, false)
	ledgers := NewLedgerInteractor(f.pool, f.stake, f.reward)
	dave := testAccount(13)

	err := f.pool.Deposit(dave, units(100), dave)
	require.ErrorIs(t, err, domain.ErrorInsufficientAuthorization)

	require.NoError(t, ledgers.Fund("PCR", dave, units(100)))
	require.NoError(t, ledgers.Approve("PCR", dave, poolAddr, units(60)))
	require.NoError(t, f.pool.Deposit(dave, units(60), dave))

	balance, err := ledgers.Balance("PCR", dave)
	require.NoError(t, err)
	assert.Equal(t, units(40).Dec(), balance.Dec())
	allowance, err := ledgers.Allowance("PCR", dave, poolAddr)
	require.NoError(t, err)
	assert.True(t, allowance.IsZero())
	assert.Equal(t, units(60).Dec(), f.info(dave).Amount.Dec())

	assert.ErrorIs(t, ledgers.Fund("TON", dave, units(1)), domain.ErrorUnknownAsset)
}

func TestFillTreasury(t *testing.T) {
	f := newFixture(t, 0, false)
	ledgers := NewLedgerInteractor(f.pool, f.stake, f.reward)
	require.NoError(t, f.reward.Approve(treasury, poolAddr, units(100)))

	available, err := ledgers.FillTreasury(units(200_000_000))
	require.NoError(t, err)
	assert.Equal(t, units(250_000_000).Dec(), available.InTreasury.Dec())
	assert.Equal(t, units(100).Dec(), available.AllowedForPool.Dec())

	available, err = ledgers.FillTreasury(units(300_000_000))
	require.NoError(t, err)
	assert.Equal(t, units(300_000_000).Dec(), available.InTreasury.Dec())
	assert.Equal(t, units(50_000_100).Dec(), available.AllowedForPool.Dec())
}

func TestFillTreasuryKeepsUnlimitedAllowance(t *testing.T) {
	f := newFixture(t, 0, true)
	ledgers := NewLedgerInteractor(f.pool, f.stake)

	_, err := ledgers.FillTreasury(units(260_000_000))
	require.NoError(t, err)

	allowance, err := f.reward.Allowance(treasury, poolAddr)
	require.NoError(t, err)
	assert.True(t, allowance.Eq(new(uint256.Int).SetAllOne()))
	assert.Equal(t, units(260_000_000).Dec(), f.balance(f.reward, treasury).Dec())
}
