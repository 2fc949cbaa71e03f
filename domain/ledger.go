package domain

// LedgerConfig describes how a Ledger is assembled.
type LedgerConfig struct {
	Operator   Principal
	Harvester  Principal
	Strategies []StrategyParams
	FeeBps     uint64
	ReportMode string
}

// Ledger owns the vault, its strategies and the harvester. All mutations go
// through it one call at a time; it does no locking of its own.
type Ledger struct {
	sequence   uint64
	clock      Clock
	vault      *Vault
	strategies []*Strategy
	harvester  *Harvester
	router     *Router
}

func NewLedger(cfg LedgerConfig, clock Clock) *Ledger {
	params := cfg.Strategies
	if len(params) == 0 {
		params = DefaultStrategies
	}
	strategies := make([]*Strategy, 0, len(params))
	for _, p := range params {
		strategies = append(strategies, NewStrategy(p, clock))
	}

	vault := NewVault(cfg.Harvester)
	harvester := NewHarvester(cfg.Harvester, cfg.Operator, vault, strategies, clock)
	if cfg.FeeBps > 0 && cfg.FeeBps <= BasisPoints {
		harvester.feeBps = cfg.FeeBps
	}
	harvester.SetReportMode(cfg.ReportMode)

	return &Ledger{
		clock:      clock,
		vault:      vault,
		strategies: strategies,
		harvester:  harvester,
		router:     NewRouter(strategies),
	}
}

func (l *Ledger) Vault() *Vault {
	return l.vault
}

func (l *Ledger) Harvester() *Harvester {
	return l.harvester
}

func (l *Ledger) Strategies() []*Strategy {
	return l.strategies
}

func (l *Ledger) Strategy(id StrategyID) (*Strategy, bool) {
	for _, s := range l.strategies {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

func (l *Ledger) Height() uint64 {
	return l.clock.Height()
}

// Sequence is the number of operations applied so far. Rejected calls do not count.
func (l *Ledger) Sequence() uint64 {
	return l.sequence
}

func (l *Ledger) applied(err error) error {
	if err == nil {
		l.sequence++
	}
	return err
}

// Deposit mints vault shares and routes the amount to the strategies by allocation.
func (l *Ledger) Deposit(p Principal, amount uint64, allocation Allocation) (uint64, []Routed, error) {
	if err := allocation.Validate(); err != nil {
		return 0, nil, err
	}
	if amount == 0 {
		return 0, nil, ErrorInvalidAmount
	}
	if _, err := l.router.Split(amount, allocation); err != nil {
		return 0, nil, err
	}
	minted, err := l.vault.Deposit(p, amount, allocation)
	if err != nil {
		return 0, nil, err
	}
	routed, err := l.router.Route(amount, allocation)
	if err != nil {
		return 0, nil, err
	}
	l.sequence++
	return minted, routed, nil
}

func (l *Ledger) Withdraw(p Principal, shares uint64) (uint64, error) {
	payout, err := l.vault.Withdraw(p, shares)
	return payout, l.applied(err)
}

func (l *Ledger) Reallocate(p Principal, allocation Allocation) error {
	return l.applied(l.vault.Reallocate(p, allocation))
}

func (l *Ledger) Harvest(caller Principal) (HarvestResult, error) {
	result, err := l.harvester.Harvest(caller)
	return result, l.applied(err)
}

func (l *Ledger) AddHarvester(caller, harvester Principal) error {
	return l.applied(l.harvester.AddHarvester(caller, harvester))
}

func (l *Ledger) ClaimFees(caller, recipient Principal, amount uint64) error {
	return l.applied(l.harvester.ClaimFees(caller, recipient, amount))
}

func (l *Ledger) CanHarvest() bool {
	return l.harvester.CanHarvest()
}
