package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const operator = Principal("operator")

type harvestFixture struct {
	clock      *ManualClock
	vault      *Vault
	strategies []*Strategy
	harvester  *Harvester
}

// newHarvestFixture funds every default strategy with 10,000,000 and the vault with 30,000,000.
func newHarvestFixture(t *testing.T) *harvestFixture {
	t.Helper()
	clock := NewManualClock(0)
	vault := NewVault(reporter)
	strategies := make([]*Strategy, 0, len(DefaultStrategies))
	for _, p := range DefaultStrategies {
		s := NewStrategy(p, clock)
		require.NoError(t, s.Deposit(10_000_000))
		strategies = append(strategies, s)
	}
	_, err := vault.Deposit(alice, 30_000_000, even)
	require.NoError(t, err)

	return &harvestFixture{
		clock:      clock,
		vault:      vault,
		strategies: strategies,
		harvester:  NewHarvester(reporter, operator, vault, strategies, clock),
	}
}

func TestHarvester_CreatorIsAuthorized(t *testing.T) {
	f := newHarvestFixture(t)

	assert.True(t, f.harvester.IsAuthorized(operator))
	assert.False(t, f.harvester.IsAuthorized(alice))
}

func TestHarvester_AddHarvester(t *testing.T) {
	f := newHarvestFixture(t)

	require.NoError(t, f.harvester.AddHarvester(operator, alice))
	assert.True(t, f.harvester.IsAuthorized(alice))

	require.NoError(t, f.harvester.AddHarvester(alice, alice))
	assert.Equal(t, []Principal{alice, operator}, f.harvester.Authorized())

	err := f.harvester.AddHarvester(bob, bob)
	assert.ErrorIs(t, err, ErrorUnauthorized)
	assert.False(t, f.harvester.IsAuthorized(bob))
}

func TestHarvester_RejectsUnauthorizedHarvest(t *testing.T) {
	f := newHarvestFixture(t)
	f.clock.Mine(300)

	_, err := f.harvester.Harvest(alice)
	assert.ErrorIs(t, err, ErrorUnauthorized)
	assert.Equal(t, CodeUnauthorized, Code(err))

	assert.Equal(t, uint64(30_000_000), f.vault.TotalAssets())
	assert.Equal(t, uint64(0), f.harvester.AccumulatedFee())
	for _, s := range f.strategies {
		assert.Equal(t, uint64(10_000_000), s.TVL())
		assert.Equal(t, uint64(0), s.LastHarvestHeight())
	}
}

func TestHarvester_HarvestAggregatesAndSkimsFee(t *testing.T) {
	f := newHarvestFixture(t)
	f.clock.Mine(300)
	require.True(t, f.harvester.CanHarvest())

	result, err := f.harvester.Harvest(operator)
	require.NoError(t, err)

	assert.Equal(t, uint64(2_650_000), result.TotalRewards)
	assert.Equal(t, uint64(53_000), result.Fee)
	assert.Equal(t, uint64(2_597_000), result.Net)
	assert.Equal(t, uint64(53_000), f.harvester.AccumulatedFee())
	assert.Equal(t, uint64(32_597_000), f.vault.TotalAssets())
	assert.Equal(t, uint64(30_000_000), f.vault.TotalShares())

	require.Len(t, result.Rewards, 3)
	assert.Equal(t, StrategyReward{Strategy: StrategyA, Reward: 800_000, Net: 784_000}, result.Rewards[0])
	assert.Equal(t, StrategyReward{Strategy: StrategyB, Reward: 650_000, Net: 637_000}, result.Rewards[1])
	assert.Equal(t, StrategyReward{Strategy: StrategyC, Reward: 1_200_000, Net: 1_176_000}, result.Rewards[2])

	info := f.harvester.Info()
	assert.Equal(t, uint64(1), info.Harvests)
	assert.Equal(t, uint64(300), info.LastHarvestHeight)
	assert.Equal(t, uint64(2_650_000), info.LifetimeRewards)
	assert.Equal(t, uint64(53_000), info.LifetimeFees)
	assert.False(t, f.harvester.CanHarvest())
}

func TestHarvester_PartialHarvest(t *testing.T) {
	f := newHarvestFixture(t)
	f.clock.Mine(80)

	result, err := f.harvester.Harvest(operator)
	require.NoError(t, err)

	assert.Equal(t, uint64(650_000), result.TotalRewards)
	assert.Equal(t, uint64(13_000), result.Fee)
	assert.Equal(t, uint64(637_000), result.Net)
	assert.Equal(t, uint64(10_000_000), f.strategies[0].TVL())
	assert.Equal(t, uint64(10_650_000), f.strategies[1].TVL())
}

// steppingClock answers the first len(heights) reads from heights and every
// later read with after.
type steppingClock struct {
	heights []uint64
	after   uint64
	reads   int
}

func (c *steppingClock) Height() uint64 {
	c.reads++
	if c.reads <= len(c.heights) {
		return c.heights[c.reads-1]
	}
	return c.after
}

func TestHarvester_HarvestUsesOneHeight(t *testing.T) {
	f := newHarvestFixture(t)
	clock := &steppingClock{heights: []uint64{71}, after: 300}
	h := NewHarvester(reporter, operator, f.vault, f.strategies, clock)

	// nothing is due at 71, the later blocks must not leak into this harvest
	result, err := h.Harvest(operator)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.TotalRewards)
	assert.Equal(t, uint64(30_000_000), f.vault.TotalAssets())
	for _, s := range f.strategies {
		assert.Equal(t, uint64(10_000_000), s.TVL())
		assert.Equal(t, uint64(0), s.LastHarvestHeight())
	}

	clock = &steppingClock{heights: []uint64{72}, after: 300}
	h = NewHarvester(reporter, operator, f.vault, f.strategies, clock)

	result, err = h.Harvest(operator)
	require.NoError(t, err)
	assert.Equal(t, uint64(650_000), result.TotalRewards)
	assert.Equal(t, uint64(637_000), result.Net)
	assert.Equal(t, uint64(30_637_000), f.vault.TotalAssets())
	assert.Equal(t, uint64(10_000_000), f.strategies[0].TVL())
	assert.Equal(t, uint64(10_650_000), f.strategies[1].TVL())
	assert.Equal(t, uint64(72), f.strategies[1].LastHarvestHeight())
	assert.Equal(t, uint64(10_000_000), f.strategies[2].TVL())
	assert.Equal(t, uint64(72), h.Info().LastHarvestHeight)

	var tvl uint64
	for _, s := range f.strategies {
		tvl += s.TVL()
	}
	assert.Equal(t, uint64(30_000_000)+result.TotalRewards, tvl)
}

func TestHarvester_EmptyHarvestIsNotAnError(t *testing.T) {
	f := newHarvestFixture(t)
	require.False(t, f.harvester.CanHarvest())

	result, err := f.harvester.Harvest(operator)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), result.TotalRewards)
	assert.Equal(t, uint64(0), result.Fee)
	assert.Equal(t, uint64(0), result.Net)
	assert.Equal(t, uint64(30_000_000), f.vault.TotalAssets())
	assert.Equal(t, uint64(0), f.harvester.Info().Harvests)
}

func TestHarvester_FeeIsFloored(t *testing.T) {
	clock := NewManualClock(0)
	vault := NewVault(reporter)
	s := NewStrategy(StrategyParams{ID: StrategyA, APYBps: 10_000, HarvestInterval: 1}, clock)
	require.NoError(t, s.Deposit(149))
	_, err := vault.Deposit(alice, 1_000, even)
	require.NoError(t, err)
	h := NewHarvester(reporter, operator, vault, []*Strategy{s}, clock)

	clock.Mine(1)
	result, err := h.Harvest(operator)
	require.NoError(t, err)

	// floor(149 * 200 / 10000) = 2
	assert.Equal(t, uint64(149), result.TotalRewards)
	assert.Equal(t, uint64(2), result.Fee)
	assert.Equal(t, uint64(147), result.Net)
	assert.Equal(t, uint64(1_147), vault.TotalAssets())
}

func TestHarvester_PerStrategyReporting(t *testing.T) {
	f := newHarvestFixture(t)
	f.harvester.SetReportMode(ReportPerStrategy)
	f.clock.Mine(300)

	result, err := f.harvester.Harvest(operator)
	require.NoError(t, err)

	assert.Equal(t, uint64(2_597_000), result.Net)
	assert.Equal(t, uint64(32_597_000), f.vault.TotalAssets())
	assert.Equal(t, uint64(784_000), f.vault.StrategyYield(StrategyA))
	assert.Equal(t, uint64(637_000), f.vault.StrategyYield(StrategyB))
	assert.Equal(t, uint64(1_176_000), f.vault.StrategyYield(StrategyC))
}

func TestHarvester_SplitNetRemainder(t *testing.T) {
	h := &Harvester{}
	result := HarvestResult{
		TotalRewards: 10,
		Net:          7,
		Rewards: []StrategyReward{
			{Strategy: StrategyA, Reward: 3},
			{Strategy: StrategyB, Reward: 3},
			{Strategy: StrategyC, Reward: 4},
			{Strategy: "D", Reward: 0},
		},
	}
	require.NoError(t, h.splitNet(&result))

	// floor(21/10)=2, floor(21/10)=2, floor(28/10)=2, remainder 1 to C
	assert.Equal(t, uint64(2), result.Rewards[0].Net)
	assert.Equal(t, uint64(2), result.Rewards[1].Net)
	assert.Equal(t, uint64(3), result.Rewards[2].Net)
	assert.Equal(t, uint64(0), result.Rewards[3].Net)
}

func TestHarvester_HarvestIsAtomicOnVaultFailure(t *testing.T) {
	f := newHarvestFixture(t)
	// a harvester the vault does not accept reports from
	rogue := NewHarvester("rogue", operator, f.vault, f.strategies, f.clock)
	f.clock.Mine(300)

	_, err := rogue.Harvest(operator)
	assert.ErrorIs(t, err, ErrorUnauthorized)
	for _, s := range f.strategies {
		assert.Equal(t, uint64(10_000_000), s.TVL())
	}
	assert.Equal(t, uint64(0), rogue.AccumulatedFee())
	assert.True(t, f.harvester.CanHarvest())
}

func TestHarvester_ClaimFees(t *testing.T) {
	f := newHarvestFixture(t)
	f.clock.Mine(300)
	_, err := f.harvester.Harvest(operator)
	require.NoError(t, err)

	err = f.harvester.ClaimFees(alice, alice, 1_000)
	assert.ErrorIs(t, err, ErrorUnauthorized)

	err = f.harvester.ClaimFees(operator, "treasury", 60_000)
	assert.ErrorIs(t, err, ErrorInsufficientFees)
	assert.Equal(t, CodeInsufficientFees, Code(err))
	assert.Equal(t, uint64(53_000), f.harvester.AccumulatedFee())

	require.NoError(t, f.harvester.ClaimFees(operator, "treasury", 50_000))
	assert.Equal(t, uint64(3_000), f.harvester.AccumulatedFee())
	assert.Equal(t, uint64(50_000), f.harvester.Claimed("treasury"))

	require.NoError(t, f.harvester.ClaimFees(operator, "treasury", 3_000))
	assert.Equal(t, uint64(0), f.harvester.AccumulatedFee())
	assert.Equal(t, uint64(53_000), f.harvester.Claimed("treasury"))
}
