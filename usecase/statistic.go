package usecase

import (
	"haven/domain"
)

type StatisticInteractor struct {
	ledgerInteractor *LedgerInteractor
}

func NewStatisticInteractor(ledgerInteractor *LedgerInteractor) *StatisticInteractor {
	interactor := &StatisticInteractor{
		ledgerInteractor: ledgerInteractor,
	}
	return interactor
}

func (interactor *StatisticInteractor) Vault() *domain.VaultStatistic {
	result := &domain.VaultStatistic{}

	interactor.ledgerInteractor.View(func(ledger *domain.Ledger) {
		vault := ledger.Vault()
		harvester := ledger.Harvester()

		result.Height = ledger.Height()
		result.TotalAssets = vault.TotalAssets()
		result.TotalShares = vault.TotalShares()
		result.SharePrice = domain.SharePriceUnits(vault.SharePrice())
		result.Depositors = len(vault.Depositors())
		result.Harvest = harvester.Info()
		result.Harvesters = harvester.Authorized()

		for _, s := range ledger.Strategies() {
			result.Strategies = append(result.Strategies, domain.StrategyStatistic{
				Params:            s.Params(),
				TVL:               s.TVL(),
				Yield:             vault.StrategyYield(s.ID()),
				LastHarvestHeight: s.LastHarvestHeight(),
				Due:               s.Due(),
			})
		}
	})

	return result
}

// User returns the position of depositor, or nil if they never deposited.
func (interactor *StatisticInteractor) User(depositor domain.Principal) (*domain.UserStatistic, error) {
	var result *domain.UserStatistic
	var err error

	interactor.ledgerInteractor.View(func(ledger *domain.Ledger) {
		vault := ledger.Vault()
		d, ok := vault.Depositor(depositor)
		if !ok {
			return
		}

		var balance uint64
		if d.Shares > 0 {
			balance, err = vault.PreviewWithdraw(d.Shares)
			if err != nil {
				return
			}
		}

		params := make([]domain.StrategyParams, 0, len(ledger.Strategies()))
		for _, s := range ledger.Strategies() {
			params = append(params, s.Params())
		}

		result = &domain.UserStatistic{
			Principal:   d.Principal,
			Shares:      d.Shares,
			Allocation:  d.Allocation,
			Balance:     balance,
			Deposited:   d.DepositedTotal,
			Withdrawn:   d.WithdrawnTotal,
			Earnings:    domain.Earnings(balance, d.WithdrawnTotal, d.DepositedTotal),
			WeightedAPY: domain.WeightedAPY(d.Allocation, params),
		}
	})

	return result, err
}
