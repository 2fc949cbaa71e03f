package domain

import (
	"encoding/json"
	"fmt"
)

var (
	ErrorCorruptSnapshot = fmt.Errorf("ledger snapshot is inconsistent")
	ErrorStaleLedger     = fmt.Errorf("ledger was changed by another process")
)

type StrategyState struct {
	Params            StrategyParams `json:"params"`
	TVL               uint64         `json:"tvl"`
	LastHarvestHeight uint64         `json:"last_harvest_height"`
}

type VaultState struct {
	Reporter      Principal             `json:"reporter"`
	TotalAssets   uint64                `json:"total_assets"`
	TotalShares   uint64                `json:"total_shares"`
	Depositors    []Depositor           `json:"depositors"`
	StrategyYield map[StrategyID]uint64 `json:"strategy_yield"`
}

type HarvesterState struct {
	ID                Principal            `json:"id"`
	Authorized        []Principal          `json:"authorized"`
	FeeBps            uint64               `json:"fee_bps"`
	ReportMode        string               `json:"report_mode"`
	AccumulatedFee    uint64               `json:"accumulated_fee"`
	Claimed           map[Principal]uint64 `json:"claimed"`
	Harvests          uint64               `json:"harvests"`
	LastHarvestHeight uint64               `json:"last_harvest_height"`
	LifetimeRewards   uint64               `json:"lifetime_rewards"`
	LifetimeFees      uint64               `json:"lifetime_fees"`
}

// LedgerSnapshot is the persisted form of a Ledger. Sequence counts the
// operations applied to the ledger since it was created.
type LedgerSnapshot struct {
	Sequence   uint64          `json:"sequence"`
	Height     uint64          `json:"height"`
	Vault      VaultState      `json:"vault"`
	Strategies []StrategyState `json:"strategies"`
	Harvester  HarvesterState  `json:"harvester"`
}

func (obj *LedgerSnapshot) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *LedgerSnapshot) FromJson(jstr string) error {
	return json.Unmarshal([]byte(jstr), obj)
}

func (l *Ledger) Snapshot() *LedgerSnapshot {
	snap := &LedgerSnapshot{
		Sequence: l.sequence,
		Height:   l.clock.Height(),
		Vault: VaultState{
			Reporter:      l.vault.reporter,
			TotalAssets:   l.vault.totalAssets,
			TotalShares:   l.vault.totalShares,
			Depositors:    l.vault.Depositors(),
			StrategyYield: make(map[StrategyID]uint64, len(l.vault.strategyYield)),
		},
		Strategies: make([]StrategyState, 0, len(l.strategies)),
	}
	for id, y := range l.vault.strategyYield {
		snap.Vault.StrategyYield[id] = y
	}
	for _, s := range l.strategies {
		snap.Strategies = append(snap.Strategies, StrategyState{
			Params:            s.params,
			TVL:               s.tvl,
			LastHarvestHeight: s.lastHarvestHeight,
		})
	}

	h := l.harvester
	snap.Harvester = HarvesterState{
		ID:                h.id,
		Authorized:        h.authorized.Members(),
		FeeBps:            h.feeBps,
		ReportMode:        h.reportMode,
		AccumulatedFee:    h.accumulatedFee,
		Claimed:           make(map[Principal]uint64, len(h.claimed)),
		Harvests:          h.harvests,
		LastHarvestHeight: h.lastHarvestHeight,
		LifetimeRewards:   h.lifetimeRewards,
		LifetimeFees:      h.lifetimeFees,
	}
	for p, c := range h.claimed {
		snap.Harvester.Claimed[p] = c
	}
	return snap
}

// RestoreLedger rebuilds a Ledger from a snapshot, checking the share conservation invariant.
func RestoreLedger(snap *LedgerSnapshot, clock Clock) (*Ledger, error) {
	if len(snap.Strategies) == 0 || snap.Harvester.FeeBps > BasisPoints {
		return nil, ErrorCorruptSnapshot
	}

	vault := NewVault(snap.Vault.Reporter)
	vault.totalAssets = snap.Vault.TotalAssets
	vault.totalShares = snap.Vault.TotalShares
	var shares uint64
	for _, d := range snap.Vault.Depositors {
		var err error
		shares, err = add(shares, d.Shares)
		if err != nil {
			return nil, ErrorCorruptSnapshot
		}
		record := d
		vault.depositors[d.Principal] = &record
	}
	if shares != vault.totalShares {
		return nil, ErrorCorruptSnapshot
	}
	for id, y := range snap.Vault.StrategyYield {
		vault.strategyYield[id] = y
	}

	strategies := make([]*Strategy, 0, len(snap.Strategies))
	for _, st := range snap.Strategies {
		strategies = append(strategies, &Strategy{
			params:            st.Params,
			clock:             clock,
			tvl:               st.TVL,
			lastHarvestHeight: st.LastHarvestHeight,
		})
	}

	hs := snap.Harvester
	if hs.ID != vault.reporter {
		return nil, ErrorCorruptSnapshot
	}
	harvester := &Harvester{
		id:                hs.ID,
		authorized:        NewAllowList(hs.Authorized...),
		vault:             vault,
		strategies:        strategies,
		clock:             clock,
		feeBps:            hs.FeeBps,
		accumulatedFee:    hs.AccumulatedFee,
		claimed:           make(map[Principal]uint64, len(hs.Claimed)),
		harvests:          hs.Harvests,
		lastHarvestHeight: hs.LastHarvestHeight,
		lifetimeRewards:   hs.LifetimeRewards,
		lifetimeFees:      hs.LifetimeFees,
	}
	harvester.SetReportMode(hs.ReportMode)
	for p, c := range hs.Claimed {
		harvester.claimed[p] = c
	}

	return &Ledger{
		sequence:   snap.Sequence,
		clock:      clock,
		vault:      vault,
		strategies: strategies,
		harvester:  harvester,
		router:     NewRouter(strategies),
	}, nil
}
