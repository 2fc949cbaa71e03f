package domain

import (
	"encoding/json"
	"time"
)

const (
	EventDeposit      = "deposit"
	EventWithdraw     = "withdraw"
	EventReallocate   = "reallocate"
	EventHarvest      = "harvest"
	EventAddHarvester = "add_harvester"
	EventClaimFees    = "claim_fees"
)

// LedgerEvent is one committed operation in the ledger journal.
type LedgerEvent struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Principal  Principal       `json:"principal"`
	Amount     uint64          `json:"amount"`
	Shares     uint64          `json:"shares"`
	Height     uint64          `json:"height"`
	SharePrice uint64          `json:"share_price"`
	Info       json.RawMessage `json:"info"`
	CreateTime time.Time       `json:"create_time"`
}

type DepositInfo struct {
	Allocation Allocation `json:"allocation"`
	Routed     []Routed   `json:"routed"`
}

type ReallocateInfo struct {
	Allocation Allocation `json:"allocation"`
}

type AddHarvesterInfo struct {
	Harvester Principal `json:"harvester"`
}

type ClaimFeesInfo struct {
	Recipient Principal `json:"recipient"`
}
