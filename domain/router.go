package domain

// Routed is the notional amount a deposit sent to one strategy.
type Routed struct {
	Strategy StrategyID `json:"strategy"`
	Amount   uint64     `json:"amount"`
}

// Router turns a deposit's allocation into per-strategy notional increases.
type Router struct {
	strategies []*Strategy
}

func NewRouter(strategies []*Strategy) *Router {
	return &Router{strategies: strategies}
}

// Split divides amount by allocation. Every part is floored and the last
// strategy with a non-zero allocation receives the remainder, so the parts
// always sum to amount.
func (r *Router) Split(amount uint64, allocation Allocation) ([]Routed, error) {
	if err := allocation.Validate(); err != nil {
		return nil, err
	}
	parts := make([]Routed, 0, len(r.strategies))
	last := -1
	var assigned uint64
	for i, s := range r.strategies {
		bps := allocation.Of(s.ID())
		part, err := mulDiv(amount, bps, BasisPoints)
		if err != nil {
			return nil, err
		}
		parts = append(parts, Routed{Strategy: s.ID(), Amount: part})
		assigned += part
		if bps > 0 {
			last = i
		}
	}
	if last >= 0 {
		parts[last].Amount += amount - assigned
	}
	for i, s := range r.strategies {
		if _, err := add(s.TVL(), parts[i].Amount); err != nil {
			return nil, err
		}
	}
	return parts, nil
}

// Route deposits each part of the split into its strategy.
func (r *Router) Route(amount uint64, allocation Allocation) ([]Routed, error) {
	parts, err := r.Split(amount, allocation)
	if err != nil {
		return nil, err
	}
	for i, s := range r.strategies {
		if err := s.Deposit(parts[i].Amount); err != nil {
			return nil, err
		}
	}
	return parts, nil
}
