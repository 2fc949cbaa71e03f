package usecase

import (
	"haven/domain"
	"haven/domain/util"
	"time"

	"go.uber.org/zap"
)

// HarvestInteractor drives the periodic harvest: it checks whether any
// strategy is due, harvests as the bot principal and records the cycle.
type HarvestInteractor struct {
	ledgerInteractor *LedgerInteractor
	memoInteractor   *MemoInteractor
	bot              domain.Principal
	logger           *zap.Logger
	now              func() time.Time
}

func NewHarvestInteractor(
	ledgerInteractor *LedgerInteractor,
	memoInteractor *MemoInteractor,
	bot domain.Principal,
	logger *zap.Logger,
) *HarvestInteractor {
	interactor := &HarvestInteractor{
		ledgerInteractor: ledgerInteractor,
		memoInteractor:   memoInteractor,
		bot:              bot,
		logger:           logger,
		now:              time.Now,
	}
	return interactor
}

// RunCycle performs one poll. It returns nil when nothing was due.
func (interactor *HarvestInteractor) RunCycle() (*domain.HarvestResult, error) {
	memo, err := interactor.memoInteractor.GetHarvestMemo()
	if err != nil {
		interactor.logger.Error("🔴 loading harvest memo", zap.Error(err))
		return nil, err
	}

	now := interactor.now().UTC()
	memo.LastCheckTime = now
	memo.Cycles++

	var result *domain.HarvestResult
	if interactor.ledgerInteractor.CanHarvest() {
		r, err := interactor.ledgerInteractor.Harvest(interactor.bot)
		if err != nil {
			interactor.logger.Error("🔴 harvest failed", zap.String("bot", string(interactor.bot)), zap.Error(err))
			interactor.saveMemo(memo)
			return nil, err
		}
		result = &r
		if r.TotalRewards > 0 {
			memo.LastHarvestTime = &now
			memo.LastResult = &r
			interactor.logger.Info("🔵 harvested",
				zap.String("rewards", util.MicroToUnitString(r.TotalRewards)),
				zap.String("fee", util.MicroToUnitString(r.Fee)),
				zap.String("net", util.MicroToUnitString(r.Net)))
		} else {
			interactor.logger.Info("🟡 strategies due but nothing was earned")
		}
	} else {
		interactor.logger.Debug("nothing to harvest yet", zap.Uint64("cycle", memo.Cycles))
	}

	interactor.saveMemo(memo)
	return result, nil
}

func (interactor *HarvestInteractor) saveMemo(memo *domain.HarvestMemo) {
	if err := interactor.memoInteractor.SetHarvestMemo(memo); err != nil {
		interactor.logger.Warn("🟡 storing harvest memo", zap.Error(err))
	}
}
