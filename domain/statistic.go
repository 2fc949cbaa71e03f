package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	hundred     = decimal.NewFromInt(100)
	basisPoints = fromUint64(BasisPoints)
	scale       = fromUint64(Scale)
)

type StrategyStatistic struct {
	Params            StrategyParams `json:"params"`
	TVL               uint64         `json:"tvl"`
	Yield             uint64         `json:"yield"`
	LastHarvestHeight uint64         `json:"last_harvest_height"`
	Due               bool           `json:"due"`
}

type VaultStatistic struct {
	Height      uint64              `json:"height"`
	TotalAssets uint64              `json:"total_assets"`
	TotalShares uint64              `json:"total_shares"`
	SharePrice  decimal.Decimal     `json:"share_price"`
	Depositors  int                 `json:"depositors"`
	Harvest     HarvestInfo         `json:"harvest"`
	Harvesters  []Principal         `json:"harvesters"`
	Strategies  []StrategyStatistic `json:"strategies"`
}

// UserStatistic is a depositor's position valued at the current share price.
type UserStatistic struct {
	Principal   Principal       `json:"principal"`
	Shares      uint64          `json:"shares"`
	Allocation  Allocation      `json:"allocation"`
	Balance     uint64          `json:"balance"`
	Deposited   uint64          `json:"deposited"`
	Withdrawn   uint64          `json:"withdrawn"`
	Earnings    decimal.Decimal `json:"earnings"`
	WeightedAPY decimal.Decimal `json:"weighted_apy"`
}

// SharePriceUnits converts a scaled share price to assets per share.
func SharePriceUnits(price uint64) decimal.Decimal {
	return fromUint64(price).Div(scale)
}

// Earnings is balance plus everything withdrawn minus everything deposited,
// floored at zero.
func Earnings(balance, withdrawn, deposited uint64) decimal.Decimal {
	earned := fromUint64(balance).Add(fromUint64(withdrawn)).Sub(fromUint64(deposited))
	if earned.IsNegative() {
		return decimal.Zero
	}
	return earned
}

// WeightedAPY is the allocation-weighted APY of the strategies, in percent.
func WeightedAPY(allocation Allocation, strategies []StrategyParams) decimal.Decimal {
	total := decimal.Zero
	for _, p := range strategies {
		weight := fromUint64(allocation.Of(p.ID))
		total = total.Add(weight.Mul(fromUint64(p.APYBps)))
	}
	return total.Div(basisPoints).Div(hundred)
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}
