package domain

import "fmt"

// Principal identifies a caller: a depositor, an operator or a harvester bot.
type Principal string

type StrategyID string

const (
	StrategyA StrategyID = "A"
	StrategyB StrategyID = "B"
	StrategyC StrategyID = "C"
)

// StrategyIDs lists the strategies in their fixed harvest and routing order.
var StrategyIDs = []StrategyID{StrategyA, StrategyB, StrategyC}

// Allocation splits a position across the three strategies, in basis points.
type Allocation struct {
	StrategyA uint64 `json:"strategy_a"`
	StrategyB uint64 `json:"strategy_b"`
	StrategyC uint64 `json:"strategy_c"`
}

func NewAllocation(a, b, c uint64) Allocation {
	return Allocation{StrategyA: a, StrategyB: b, StrategyC: c}
}

func (a Allocation) Validate() error {
	if a.StrategyA > BasisPoints || a.StrategyB > BasisPoints || a.StrategyC > BasisPoints {
		return ErrorInvalidAllocation
	}
	if a.StrategyA+a.StrategyB+a.StrategyC != BasisPoints {
		return ErrorInvalidAllocation
	}
	return nil
}

// Of returns the basis points allocated to id.
func (a Allocation) Of(id StrategyID) uint64 {
	switch id {
	case StrategyA:
		return a.StrategyA
	case StrategyB:
		return a.StrategyB
	case StrategyC:
		return a.StrategyC
	}
	return 0
}

func (a Allocation) String() string {
	return fmt.Sprintf("A=%d B=%d C=%d", a.StrategyA, a.StrategyB, a.StrategyC)
}
