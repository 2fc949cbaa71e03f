package domain

import "sort"

// DefaultFeeBps is the performance fee: 2% of harvested yield.
const DefaultFeeBps = uint64(200)

const (
	ReportAggregate   = "aggregate"
	ReportPerStrategy = "per_strategy"
)

// AllowList is the set of principals allowed to run privileged harvester calls.
type AllowList struct {
	members map[Principal]struct{}
}

func NewAllowList(members ...Principal) *AllowList {
	l := &AllowList{members: make(map[Principal]struct{}, len(members))}
	for _, m := range members {
		l.Add(m)
	}
	return l
}

func (l *AllowList) Add(p Principal) {
	l.members[p] = struct{}{}
}

func (l *AllowList) Contains(p Principal) bool {
	_, ok := l.members[p]
	return ok
}

func (l *AllowList) Members() []Principal {
	list := make([]Principal, 0, len(l.members))
	for m := range l.members {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

type StrategyReward struct {
	Strategy StrategyID `json:"strategy"`
	Reward   uint64     `json:"reward"`
	Net      uint64     `json:"net"`
}

type HarvestResult struct {
	TotalRewards uint64           `json:"total_rewards"`
	Fee          uint64           `json:"fee"`
	Net          uint64           `json:"net"`
	Rewards      []StrategyReward `json:"rewards"`
}

// HarvestInfo summarizes the harvester's lifetime activity.
type HarvestInfo struct {
	Harvests          uint64 `json:"harvests"`
	LastHarvestHeight uint64 `json:"last_harvest_height"`
	LifetimeRewards   uint64 `json:"lifetime_rewards"`
	LifetimeFees      uint64 `json:"lifetime_fees"`
	AccumulatedFee    uint64 `json:"accumulated_fee"`
	FeeBps            uint64 `json:"fee_bps"`
}

// Harvester realizes yield across the strategies, keeps the performance fee
// and credits the rest to the vault.
type Harvester struct {
	id         Principal
	authorized *AllowList
	vault      *Vault
	strategies []*Strategy
	clock      Clock
	feeBps     uint64
	reportMode string

	accumulatedFee    uint64
	claimed           map[Principal]uint64
	harvests          uint64
	lastHarvestHeight uint64
	lifetimeRewards   uint64
	lifetimeFees      uint64
}

// NewHarvester creates a harvester identified to the vault as id, with
// creator pre-authorized. Strategies are harvested in the order given.
func NewHarvester(id, creator Principal, vault *Vault, strategies []*Strategy, clock Clock) *Harvester {
	return &Harvester{
		id:         id,
		authorized: NewAllowList(creator),
		vault:      vault,
		strategies: strategies,
		clock:      clock,
		feeBps:     DefaultFeeBps,
		reportMode: ReportAggregate,
		claimed:    make(map[Principal]uint64),
	}
}

// SetReportMode selects between one aggregate yield report per harvest and
// one report per rewarding strategy.
func (h *Harvester) SetReportMode(mode string) {
	if mode == ReportPerStrategy {
		h.reportMode = ReportPerStrategy
		return
	}
	h.reportMode = ReportAggregate
}

func (h *Harvester) ID() Principal {
	return h.id
}

func (h *Harvester) IsAuthorized(caller Principal) bool {
	return h.authorized.Contains(caller)
}

func (h *Harvester) Authorized() []Principal {
	return h.authorized.Members()
}

// AddHarvester authorizes harvester. Adding an existing member is a no-op.
func (h *Harvester) AddHarvester(caller, harvester Principal) error {
	if !h.IsAuthorized(caller) {
		return ErrorUnauthorized
	}
	h.authorized.Add(harvester)
	return nil
}

func (h *Harvester) AccumulatedFee() uint64 {
	return h.accumulatedFee
}

func (h *Harvester) FeeBps() uint64 {
	return h.feeBps
}

// Claimed is the total of fees transferred to recipient so far.
func (h *Harvester) Claimed(recipient Principal) uint64 {
	return h.claimed[recipient]
}

// CanHarvest reports whether any strategy's interval has elapsed.
func (h *Harvester) CanHarvest() bool {
	for _, s := range h.strategies {
		if s.Due() {
			return true
		}
	}
	return false
}

func (h *Harvester) Info() HarvestInfo {
	return HarvestInfo{
		Harvests:          h.harvests,
		LastHarvestHeight: h.lastHarvestHeight,
		LifetimeRewards:   h.lifetimeRewards,
		LifetimeFees:      h.lifetimeFees,
		AccumulatedFee:    h.accumulatedFee,
		FeeBps:            h.feeBps,
	}
}

// Harvest harvests every strategy, skims the fee and reports the net yield.
// Nothing is mutated unless every step can succeed.
func (h *Harvester) Harvest(caller Principal) (HarvestResult, error) {
	if !h.IsAuthorized(caller) {
		return HarvestResult{}, ErrorUnauthorized
	}

	// one height for the preview and the commit
	height := h.clock.Height()
	result := HarvestResult{Rewards: make([]StrategyReward, 0, len(h.strategies))}
	for _, s := range h.strategies {
		reward, err := s.PendingAt(height)
		if err != nil {
			return HarvestResult{}, err
		}
		total, err := add(result.TotalRewards, reward)
		if err != nil {
			return HarvestResult{}, err
		}
		result.TotalRewards = total
		result.Rewards = append(result.Rewards, StrategyReward{Strategy: s.ID(), Reward: reward})
	}

	fee, err := mulDiv(result.TotalRewards, h.feeBps, BasisPoints)
	if err != nil {
		return HarvestResult{}, err
	}
	result.Fee = fee
	result.Net = result.TotalRewards - fee

	accumulated, err := add(h.accumulatedFee, fee)
	if err != nil {
		return HarvestResult{}, err
	}
	lifetimeRewards, err := add(h.lifetimeRewards, result.TotalRewards)
	if err != nil {
		return HarvestResult{}, err
	}
	if err := h.splitNet(&result); err != nil {
		return HarvestResult{}, err
	}
	if result.Net > 0 {
		if err := h.vault.CheckYield(h.id, result.Net); err != nil {
			return HarvestResult{}, err
		}
	}

	// commit
	for _, s := range h.strategies {
		if _, err := s.HarvestAt(height); err != nil {
			return HarvestResult{}, err
		}
	}
	if err := h.report(result); err != nil {
		return HarvestResult{}, err
	}
	h.accumulatedFee = accumulated
	h.lifetimeRewards = lifetimeRewards
	h.lifetimeFees += fee
	if result.TotalRewards > 0 {
		h.harvests++
		h.lastHarvestHeight = height
	}
	return result, nil
}

// splitNet attributes net to each strategy in proportion to its reward. The
// last rewarding strategy takes the rounding remainder.
func (h *Harvester) splitNet(result *HarvestResult) error {
	if result.TotalRewards == 0 {
		return nil
	}
	last := -1
	var assigned uint64
	for i := range result.Rewards {
		if result.Rewards[i].Reward == 0 {
			continue
		}
		share, err := mulDiv(result.Rewards[i].Reward, result.Net, result.TotalRewards)
		if err != nil {
			return err
		}
		result.Rewards[i].Net = share
		assigned += share
		last = i
	}
	result.Rewards[last].Net += result.Net - assigned
	return nil
}

func (h *Harvester) report(result HarvestResult) error {
	if result.Net == 0 {
		return nil
	}
	if h.reportMode == ReportAggregate {
		return h.vault.ReportYield(h.id, result.Net)
	}
	for _, r := range result.Rewards {
		if r.Net == 0 {
			continue
		}
		if err := h.vault.ReportStrategyYield(h.id, r.Strategy, r.Net); err != nil {
			return err
		}
	}
	return nil
}

// ClaimFees transfers amount of the accumulated fee to recipient.
func (h *Harvester) ClaimFees(caller, recipient Principal, amount uint64) error {
	if !h.IsAuthorized(caller) {
		return ErrorUnauthorized
	}
	if amount == 0 {
		return ErrorInvalidAmount
	}
	if amount > h.accumulatedFee {
		return ErrorInsufficientFees
	}
	claimed, err := add(h.claimed[recipient], amount)
	if err != nil {
		return err
	}
	h.accumulatedFee -= amount
	h.claimed[recipient] = claimed
	return nil
}
