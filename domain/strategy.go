package domain

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// StrategyParams are the constants that distinguish one strategy instance from another.
type StrategyParams struct {
	ID              StrategyID `json:"id" mapstructure:"id"`
	Name            string     `json:"name" mapstructure:"name"`
	Risk            string     `json:"risk" mapstructure:"risk"`
	APYBps          uint64     `json:"apy_bps" mapstructure:"apy_bps"`
	HarvestInterval uint64     `json:"harvest_interval" mapstructure:"harvest_interval"`
}

// DefaultStrategies are the three strategies the vault ships with.
var DefaultStrategies = []StrategyParams{
	{ID: StrategyA, Name: "sBTC Staking", Risk: RiskLow, APYBps: 800, HarvestInterval: 144},
	{ID: StrategyB, Name: "STX Lending", Risk: RiskLow, APYBps: 650, HarvestInterval: 72},
	{ID: StrategyC, Name: "Liquidity Pool", Risk: RiskMedium, APYBps: 1200, HarvestInterval: 288},
}

// Strategy holds a yield-bearing balance that accrues a flat rate once per
// harvest interval. Rewards compound into the strategy's own balance.
type Strategy struct {
	params            StrategyParams
	clock             Clock
	tvl               uint64
	lastHarvestHeight uint64
}

// NewStrategy creates a strategy whose first interval starts at the clock's current height.
func NewStrategy(params StrategyParams, clock Clock) *Strategy {
	return &Strategy{
		params:            params,
		clock:             clock,
		lastHarvestHeight: clock.Height(),
	}
}

func (s *Strategy) ID() StrategyID {
	return s.params.ID
}

func (s *Strategy) Params() StrategyParams {
	return s.params
}

func (s *Strategy) TVL() uint64 {
	return s.tvl
}

func (s *Strategy) LastHarvestHeight() uint64 {
	return s.lastHarvestHeight
}

func (s *Strategy) Deposit(amount uint64) error {
	tvl, err := add(s.tvl, amount)
	if err != nil {
		return err
	}
	s.tvl = tvl
	return nil
}

// Due reports whether a full harvest interval has elapsed.
func (s *Strategy) Due() bool {
	return s.DueAt(s.clock.Height())
}

func (s *Strategy) DueAt(height uint64) bool {
	return height >= s.lastHarvestHeight && height-s.lastHarvestHeight >= s.params.HarvestInterval
}

// Pending returns the reward Harvest would realize right now, without changing state.
func (s *Strategy) Pending() (uint64, error) {
	return s.PendingAt(s.clock.Height())
}

func (s *Strategy) PendingAt(height uint64) (uint64, error) {
	if !s.DueAt(height) {
		return 0, nil
	}
	reward, err := mulDiv(s.tvl, s.params.APYBps, BasisPoints)
	if err != nil {
		return 0, err
	}
	if _, err := add(s.tvl, reward); err != nil {
		return 0, err
	}
	return reward, nil
}

// Harvest realizes one interval of yield. Before the interval elapses it
// returns 0 and leaves the strategy untouched.
func (s *Strategy) Harvest() (uint64, error) {
	return s.HarvestAt(s.clock.Height())
}

// HarvestAt realizes the reward PendingAt reports for the same height.
func (s *Strategy) HarvestAt(height uint64) (uint64, error) {
	reward, err := s.PendingAt(height)
	if err != nil || !s.DueAt(height) {
		return 0, err
	}
	s.tvl += reward
	s.lastHarvestHeight = height
	return reward, nil
}
