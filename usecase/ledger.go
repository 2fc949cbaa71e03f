package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"haven/domain"
	"haven/interface/exporter"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrorNotPersisted = fmt.Errorf("ledger change was not persisted")

// LedgerStore persists the ledger snapshot and its journal.
type LedgerStore interface {
	Load() (*domain.LedgerSnapshot, error)
	Commit(snapshot *domain.LedgerSnapshot, event *domain.LedgerEvent) error
	FindEvents(principal domain.Principal, limit int) ([]domain.LedgerEvent, error)
}

// LedgerInteractor is the single entry point to the ledger. It applies
// operations one at a time and persists every committed change.
type LedgerInteractor struct {
	mu     sync.Mutex
	ledger *domain.Ledger
	clock  domain.Clock
	store  LedgerStore
	logger *zap.Logger
	now    func() time.Time
}

// OpenLedger restores the stored ledger, or creates a new one from cfg if nothing is stored yet.
func OpenLedger(cfg domain.LedgerConfig, clock domain.Clock, store LedgerStore) (*domain.Ledger, error) {
	snapshot, err := store.Load()
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return domain.NewLedger(cfg, clock), nil
	}
	return domain.RestoreLedger(snapshot, clock)
}

func NewLedgerInteractor(ledger *domain.Ledger, clock domain.Clock, store LedgerStore, logger *zap.Logger) *LedgerInteractor {
	interactor := &LedgerInteractor{
		ledger: ledger,
		clock:  clock,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	interactor.publish()
	return interactor
}

// View runs fn with exclusive read access to the ledger. fn must not mutate it.
func (interactor *LedgerInteractor) View(fn func(ledger *domain.Ledger)) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	fn(interactor.ledger)
}

func (interactor *LedgerInteractor) Deposit(depositor domain.Principal, amount uint64, allocation domain.Allocation) (uint64, error) {
	var minted uint64
	err := interactor.apply(domain.EventDeposit, depositor, func(ledger *domain.Ledger) (*domain.LedgerEvent, error) {
		shares, routed, err := ledger.Deposit(depositor, amount, allocation)
		if err != nil {
			return nil, err
		}
		minted = shares
		return interactor.event(domain.EventDeposit, depositor, amount, shares,
			domain.DepositInfo{Allocation: allocation, Routed: routed}), nil
	})
	if err != nil {
		return 0, err
	}

	interactor.logger.Info("deposit",
		zap.String("depositor", string(depositor)),
		zap.Uint64("amount", amount),
		zap.Uint64("shares", minted),
		zap.Stringer("allocation", allocation))
	return minted, nil
}

func (interactor *LedgerInteractor) Withdraw(depositor domain.Principal, shares uint64) (uint64, error) {
	var payout uint64
	err := interactor.apply(domain.EventWithdraw, depositor, func(ledger *domain.Ledger) (*domain.LedgerEvent, error) {
		amount, err := ledger.Withdraw(depositor, shares)
		if err != nil {
			return nil, err
		}
		payout = amount
		return interactor.event(domain.EventWithdraw, depositor, amount, shares, nil), nil
	})
	if err != nil {
		return 0, err
	}

	interactor.logger.Info("withdraw",
		zap.String("depositor", string(depositor)),
		zap.Uint64("shares", shares),
		zap.Uint64("payout", payout))
	return payout, nil
}

func (interactor *LedgerInteractor) Reallocate(depositor domain.Principal, allocation domain.Allocation) error {
	return interactor.apply(domain.EventReallocate, depositor, func(ledger *domain.Ledger) (*domain.LedgerEvent, error) {
		if err := ledger.Reallocate(depositor, allocation); err != nil {
			return nil, err
		}
		return interactor.event(domain.EventReallocate, depositor, 0, 0,
			domain.ReallocateInfo{Allocation: allocation}), nil
	})
}

// Harvest runs a harvest as caller. A harvest that realizes nothing is
// committed as a no-op and not journaled.
func (interactor *LedgerInteractor) Harvest(caller domain.Principal) (domain.HarvestResult, error) {
	var result domain.HarvestResult
	err := interactor.apply(domain.EventHarvest, caller, func(ledger *domain.Ledger) (*domain.LedgerEvent, error) {
		r, err := ledger.Harvest(caller)
		if err != nil {
			return nil, err
		}
		result = r
		if r.TotalRewards == 0 {
			return nil, nil
		}
		return interactor.event(domain.EventHarvest, caller, r.Net, 0, r), nil
	})
	if err != nil {
		return domain.HarvestResult{}, err
	}

	interactor.logger.Info("harvest",
		zap.String("caller", string(caller)),
		zap.Uint64("total_rewards", result.TotalRewards),
		zap.Uint64("fee", result.Fee),
		zap.Uint64("net", result.Net))
	return result, nil
}

func (interactor *LedgerInteractor) AddHarvester(caller, harvester domain.Principal) error {
	return interactor.apply(domain.EventAddHarvester, caller, func(ledger *domain.Ledger) (*domain.LedgerEvent, error) {
		if err := ledger.AddHarvester(caller, harvester); err != nil {
			return nil, err
		}
		return interactor.event(domain.EventAddHarvester, caller, 0, 0,
			domain.AddHarvesterInfo{Harvester: harvester}), nil
	})
}

func (interactor *LedgerInteractor) ClaimFees(caller, recipient domain.Principal, amount uint64) error {
	return interactor.apply(domain.EventClaimFees, caller, func(ledger *domain.Ledger) (*domain.LedgerEvent, error) {
		if err := ledger.ClaimFees(caller, recipient, amount); err != nil {
			return nil, err
		}
		return interactor.event(domain.EventClaimFees, caller, amount, 0,
			domain.ClaimFeesInfo{Recipient: recipient}), nil
	})
}

func (interactor *LedgerInteractor) CanHarvest() bool {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.ledger.CanHarvest()
}

func (interactor *LedgerInteractor) IsAuthorized(caller domain.Principal) bool {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.ledger.Harvester().IsAuthorized(caller)
}

func (interactor *LedgerInteractor) GetTotalAssets() uint64 {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.ledger.Vault().TotalAssets()
}

func (interactor *LedgerInteractor) GetSharePrice() uint64 {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.ledger.Vault().SharePrice()
}

func (interactor *LedgerInteractor) GetUserShares(depositor domain.Principal) uint64 {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.ledger.Vault().UserShares(depositor)
}

func (interactor *LedgerInteractor) GetUserAllocation(depositor domain.Principal) (domain.Allocation, bool) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.ledger.Vault().UserAllocation(depositor)
}

func (interactor *LedgerInteractor) GetStrategyTVL(id domain.StrategyID) (uint64, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	s, ok := interactor.ledger.Strategy(id)
	if !ok {
		return 0, domain.ErrorUnknownStrategy
	}
	return s.TVL(), nil
}

// History returns the latest journal entries of depositor, newest first.
func (interactor *LedgerInteractor) History(depositor domain.Principal, limit int) ([]domain.LedgerEvent, error) {
	events, err := interactor.store.FindEvents(depositor, limit)
	if err != nil {
		interactor.logger.Error("🔴 loading history", zap.String("principal", string(depositor)), zap.Error(err))
		return nil, err
	}
	return events, nil
}

// apply runs op under the lock and persists the result. If persisting
// fails the in-memory ledger is rolled back to the state before op. When
// another process committed first, the stored ledger is reloaded and op
// runs once more against it.
func (interactor *LedgerInteractor) apply(operation string, caller domain.Principal, op func(ledger *domain.Ledger) (*domain.LedgerEvent, error)) error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	err := interactor.try(operation, caller, op)
	if errors.Is(err, domain.ErrorStaleLedger) {
		interactor.logger.Warn("🟡 ledger changed elsewhere, reloading", zap.String("operation", operation))
		if rerr := interactor.reloadLocked(); rerr != nil {
			return fmt.Errorf("%v: %w", operation, rerr)
		}
		err = interactor.try(operation, caller, op)
	}
	if err != nil {
		return err
	}

	exporter.IncOperationCount(operation)
	interactor.publishLocked()
	return nil
}

func (interactor *LedgerInteractor) try(operation string, caller domain.Principal, op func(ledger *domain.Ledger) (*domain.LedgerEvent, error)) error {
	before := interactor.ledger.Snapshot()
	event, err := op(interactor.ledger)
	if err != nil {
		exporter.IncErrorCount(operation, domain.Code(err))
		interactor.logger.Warn("rejected",
			zap.String("operation", operation),
			zap.String("caller", string(caller)),
			zap.Int("code", domain.Code(err)),
			zap.Error(err))
		return fmt.Errorf("%v: %w", operation, err)
	}

	if event != nil {
		event.Height = interactor.clock.Height()
		event.SharePrice = interactor.ledger.Vault().SharePrice()
	}
	err = interactor.store.Commit(interactor.ledger.Snapshot(), event)
	if err == nil {
		return nil
	}

	restored, rerr := domain.RestoreLedger(before, interactor.clock)
	if rerr != nil {
		interactor.logger.Error("🔴 rolling back ledger", zap.Error(rerr))
		return fmt.Errorf("%v: %w: %v", operation, ErrorNotPersisted, rerr)
	}
	interactor.ledger = restored
	if errors.Is(err, domain.ErrorStaleLedger) {
		return fmt.Errorf("%v: %w", operation, err)
	}

	exporter.IncErrorCount(operation, 0)
	interactor.logger.Error("🔴 persisting ledger, rolled back",
		zap.String("operation", operation),
		zap.Error(err))
	return fmt.Errorf("%v: %w: %v", operation, ErrorNotPersisted, err)
}

// Refresh replaces the in-memory ledger with the stored one if the store is ahead.
func (interactor *LedgerInteractor) Refresh() error {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	return interactor.reloadLocked()
}

func (interactor *LedgerInteractor) reloadLocked() error {
	snapshot, err := interactor.store.Load()
	if err != nil {
		return err
	}
	if snapshot == nil || snapshot.Sequence <= interactor.ledger.Sequence() {
		return nil
	}
	ledger, err := domain.RestoreLedger(snapshot, interactor.clock)
	if err != nil {
		return err
	}
	interactor.logger.Debug("ledger reloaded",
		zap.Uint64("from", interactor.ledger.Sequence()),
		zap.Uint64("to", snapshot.Sequence))
	interactor.ledger = ledger
	interactor.publishLocked()
	return nil
}

func (interactor *LedgerInteractor) event(kind string, principal domain.Principal, amount, shares uint64, info interface{}) *domain.LedgerEvent {
	event := &domain.LedgerEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Principal:  principal,
		Amount:     amount,
		Shares:     shares,
		CreateTime: interactor.now().UTC(),
	}
	if info != nil {
		// info is one of the plain domain info structs
		event.Info, _ = json.Marshal(info)
	}
	return event
}

func (interactor *LedgerInteractor) publish() {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()
	interactor.publishLocked()
}

// Publish refreshes the exported gauges.
func (interactor *LedgerInteractor) Publish() {
	interactor.publish()
}

func (interactor *LedgerInteractor) publishLocked() {
	vault := interactor.ledger.Vault()
	state := exporter.VaultState{
		TotalAssets:    vault.TotalAssets(),
		TotalShares:    vault.TotalShares(),
		SharePrice:     vault.SharePrice(),
		AccumulatedFee: interactor.ledger.Harvester().AccumulatedFee(),
		StrategyTVL:    make(map[string]uint64),
	}
	for _, s := range interactor.ledger.Strategies() {
		state.StrategyTVL[string(s.ID())] = s.TVL()
	}
	exporter.SetVaultState(state)
}
