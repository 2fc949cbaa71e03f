package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	alice    = Principal("alice")
	bob      = Principal("bob")
	reporter = Principal("harvester")
)

var even = NewAllocation(3333, 3333, 3334)

func TestVault_InitialState(t *testing.T) {
	v := NewVault(reporter)

	assert.Equal(t, uint64(0), v.TotalAssets())
	assert.Equal(t, uint64(0), v.TotalShares())
	assert.Equal(t, Scale, v.SharePrice())
	assert.Equal(t, uint64(0), v.UserShares(alice))

	_, ok := v.UserAllocation(alice)
	assert.False(t, ok)
}

func TestVault_DepositIntoEmptyVault(t *testing.T) {
	v := NewVault(reporter)

	minted, err := v.Deposit(alice, 10_000_000, even)
	require.NoError(t, err)

	assert.Equal(t, uint64(10_000_000), minted)
	assert.Equal(t, uint64(10_000_000), v.UserShares(alice))
	assert.Equal(t, uint64(10_000_000), v.TotalAssets())
	assert.Equal(t, uint64(10_000_000), v.UserDeposited(alice))

	allocation, ok := v.UserAllocation(alice)
	require.True(t, ok)
	assert.Equal(t, even, allocation)
}

func TestVault_DepositRejectsInvalidAllocation(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 5_000_000, even)
	require.NoError(t, err)

	_, err = v.Deposit(alice, 10_000_000, NewAllocation(3000, 3000, 3000))
	assert.ErrorIs(t, err, ErrorInvalidAllocation)
	assert.Equal(t, CodeInvalidAllocation, Code(err))

	assert.Equal(t, uint64(5_000_000), v.TotalAssets())
	assert.Equal(t, uint64(5_000_000), v.TotalShares())
	allocation, _ := v.UserAllocation(alice)
	assert.Equal(t, even, allocation)
}

func TestVault_DepositRejectsZeroAmount(t *testing.T) {
	v := NewVault(reporter)

	_, err := v.Deposit(alice, 0, even)
	assert.ErrorIs(t, err, ErrorInvalidAmount)
	_, ok := v.Depositor(alice)
	assert.False(t, ok)
}

func TestVault_DepositRejectsZeroMint(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 1, even)
	require.NoError(t, err)
	require.NoError(t, v.ReportYield(reporter, 5_000_000))

	// price is now 5,000,001 * 1e6, so 1 unit cannot buy a share
	_, err = v.Deposit(bob, 1, even)
	assert.ErrorIs(t, err, ErrorZeroShares)
	assert.Equal(t, uint64(5_000_001), v.TotalAssets())
	assert.Equal(t, uint64(1), v.TotalShares())
}

func TestVault_DepositUsesPreDepositPrice(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 10_000_000, even)
	require.NoError(t, err)
	require.NoError(t, v.ReportYield(reporter, 500_000))
	assert.Equal(t, uint64(1_050_000), v.SharePrice())

	minted, err := v.Deposit(bob, 2_100_000, even)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), minted)
	assert.Equal(t, uint64(1_050_000), v.SharePrice())
}

func TestVault_Withdraw(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 20_000_000, even)
	require.NoError(t, err)

	payout, err := v.Withdraw(alice, 10_000_000)
	require.NoError(t, err)

	assert.Equal(t, uint64(10_000_000), payout)
	assert.Equal(t, uint64(10_000_000), v.UserShares(alice))
	assert.Equal(t, uint64(10_000_000), v.TotalAssets())
	assert.Equal(t, uint64(10_000_000), v.UserWithdrawn(alice))
}

func TestVault_WithdrawInsufficientShares(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 5_000_000, even)
	require.NoError(t, err)

	_, err = v.Withdraw(alice, 10_000_000)
	assert.ErrorIs(t, err, ErrorInsufficientShares)
	assert.Equal(t, CodeInsufficientShares, Code(err))
	assert.Equal(t, uint64(5_000_000), v.UserShares(alice))
	assert.Equal(t, uint64(5_000_000), v.TotalAssets())
	assert.Equal(t, uint64(0), v.UserWithdrawn(alice))

	_, err = v.Withdraw(bob, 1)
	assert.ErrorIs(t, err, ErrorInsufficientShares)
}

func TestVault_FullWithdrawKeepsRecord(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 7_000_000, even)
	require.NoError(t, err)

	_, err = v.Withdraw(alice, 7_000_000)
	require.NoError(t, err)

	d, ok := v.Depositor(alice)
	require.True(t, ok)
	assert.Equal(t, uint64(0), d.Shares)
	assert.Equal(t, uint64(7_000_000), d.DepositedTotal)
	assert.Equal(t, uint64(7_000_000), d.WithdrawnTotal)
	assert.Equal(t, Scale, v.SharePrice())
}

func TestVault_Reallocate(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 10_000_000, even)
	require.NoError(t, err)

	require.NoError(t, v.Reallocate(alice, NewAllocation(5000, 3000, 2000)))
	allocation, _ := v.UserAllocation(alice)
	assert.Equal(t, NewAllocation(5000, 3000, 2000), allocation)
	assert.Equal(t, uint64(10_000_000), v.TotalAssets())
	assert.Equal(t, uint64(10_000_000), v.UserShares(alice))

	err = v.Reallocate(alice, NewAllocation(5000, 5000, 5000))
	assert.ErrorIs(t, err, ErrorInvalidAllocation)
	allocation, _ = v.UserAllocation(alice)
	assert.Equal(t, NewAllocation(5000, 3000, 2000), allocation)
}

func TestVault_ReportYieldRaisesPrice(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 10_000_000, even)
	require.NoError(t, err)

	require.NoError(t, v.ReportYield(reporter, 500_000))
	assert.Equal(t, uint64(1_050_000), v.SharePrice())
	assert.Equal(t, uint64(10_000_000), v.TotalShares())
}

func TestVault_ReportYieldUnauthorized(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 10_000_000, even)
	require.NoError(t, err)

	err = v.ReportYield(alice, 500_000)
	assert.ErrorIs(t, err, ErrorUnauthorized)
	assert.Equal(t, uint64(10_000_000), v.TotalAssets())

	assert.ErrorIs(t, v.ReportYield(reporter, 0), ErrorInvalidAmount)
}

func TestVault_ReportStrategyYield(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 10_000_000, even)
	require.NoError(t, err)

	require.NoError(t, v.ReportStrategyYield(reporter, StrategyA, 500_000))
	assert.Equal(t, uint64(500_000), v.StrategyYield(StrategyA))
	assert.Equal(t, uint64(10_500_000), v.TotalAssets())
	assert.Equal(t, uint64(1_050_000), v.SharePrice())

	assert.ErrorIs(t, v.ReportStrategyYield(reporter, "Z", 1), ErrorUnknownStrategy)
	assert.ErrorIs(t, v.ReportStrategyYield(bob, StrategyB, 1), ErrorUnauthorized)
	assert.Equal(t, uint64(0), v.StrategyYield(StrategyB))
}

func TestVault_LargeAmountsDoNotWrap(t *testing.T) {
	v := NewVault(reporter)
	amount := uint64(1) << 60

	minted, err := v.Deposit(alice, amount, even)
	require.NoError(t, err)
	assert.Equal(t, amount, minted)

	payout, err := v.Withdraw(alice, amount/2)
	require.NoError(t, err)
	assert.Equal(t, amount/2, payout)

	_, err = v.Deposit(bob, ^uint64(0), even)
	assert.ErrorIs(t, err, ErrorOverflow)
	assert.Equal(t, amount/2, v.TotalAssets())
}

func TestVault_Conservation(t *testing.T) {
	v := NewVault(reporter)
	users := []Principal{alice, bob, "carol"}

	for i := 0; i < 60; i++ {
		p := users[i%len(users)]
		switch i % 4 {
		case 0, 1:
			_, err := v.Deposit(p, uint64(1_000_003+i*7_919), even)
			require.NoError(t, err)
		case 2:
			if shares := v.UserShares(p); shares > 0 {
				_, err := v.Withdraw(p, shares/3+1)
				require.NoError(t, err)
			}
		case 3:
			require.NoError(t, v.ReportYield(reporter, uint64(10_007+i)))
		}

		var sum uint64
		for _, d := range v.Depositors() {
			sum += d.Shares
		}
		require.Equal(t, v.TotalShares(), sum, "step %d", i)
	}
}

func TestVault_SharePriceNeverFalls(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 3_333_333, even)
	require.NoError(t, err)

	price := v.SharePrice()
	for i := 0; i < 50; i++ {
		switch i % 3 {
		case 0:
			_, err = v.Deposit(bob, uint64(999_999+i*13), even)
			require.NoError(t, err)
		case 1:
			_, err = v.Withdraw(bob, v.UserShares(bob)/2+1)
			require.NoError(t, err)
		case 2:
			before := v.SharePrice()
			require.NoError(t, v.ReportYield(reporter, 77_777))
			assert.Greater(t, v.SharePrice(), before)
		}
		require.GreaterOrEqual(t, v.SharePrice(), price, "step %d", i)
		price = v.SharePrice()
	}
}

func TestVault_PriceBeyondRangeFailsWithdraw(t *testing.T) {
	v := NewVault(reporter)
	_, err := v.Deposit(alice, 1, even)
	require.NoError(t, err)
	// 2e13 assets per share is a scaled price of 2e19
	require.NoError(t, v.ReportYield(reporter, 20_000_000_000_000))

	assert.Equal(t, ^uint64(0), v.SharePrice())

	_, err = v.PreviewWithdraw(1)
	assert.ErrorIs(t, err, ErrorOverflow)

	_, err = v.Withdraw(alice, 1)
	assert.ErrorIs(t, err, ErrorOverflow)
	assert.Equal(t, CodeOverflow, Code(err))
	assert.Equal(t, uint64(20_000_000_000_001), v.TotalAssets())
	assert.Equal(t, uint64(1), v.TotalShares())
	assert.Equal(t, uint64(1), v.UserShares(alice))

	_, err = v.Deposit(bob, 1_000_000, even)
	assert.ErrorIs(t, err, ErrorOverflow)
	assert.Equal(t, uint64(0), v.UserShares(bob))
}
