package domain

import "sort"

// Depositor is the vault's record of a single depositor. It is created on
// first deposit and kept at zero shares after a full withdrawal.
type Depositor struct {
	Principal      Principal  `json:"principal"`
	Shares         uint64     `json:"shares"`
	Allocation     Allocation `json:"allocation"`
	DepositedTotal uint64     `json:"deposited_total"`
	WithdrawnTotal uint64     `json:"withdrawn_total"`
}

// Vault is the pooled-deposit ledger. Asset custody is pooled: allocations
// only describe how a depositor's position is attributed to strategies.
type Vault struct {
	reporter      Principal
	totalAssets   uint64
	totalShares   uint64
	depositors    map[Principal]*Depositor
	strategyYield map[StrategyID]uint64
}

// NewVault creates an empty vault. Only reporter may credit yield.
func NewVault(reporter Principal) *Vault {
	return &Vault{
		reporter:      reporter,
		depositors:    make(map[Principal]*Depositor),
		strategyYield: make(map[StrategyID]uint64),
	}
}

func (v *Vault) Reporter() Principal {
	return v.reporter
}

func (v *Vault) TotalAssets() uint64 {
	return v.totalAssets
}

func (v *Vault) TotalShares() uint64 {
	return v.totalShares
}

// SharePrice is total assets per share scaled by Scale, or Scale for an empty
// vault. A price beyond uint64 reads as the maximum; deposits and withdrawals
// at such a price fail with ErrorOverflow.
func (v *Vault) SharePrice() uint64 {
	price, err := v.price()
	if err != nil {
		return ^uint64(0)
	}
	return price
}

func (v *Vault) price() (uint64, error) {
	if v.totalShares == 0 {
		return Scale, nil
	}
	return mulDiv(v.totalAssets, Scale, v.totalShares)
}

func (v *Vault) UserShares(p Principal) uint64 {
	if d, ok := v.depositors[p]; ok {
		return d.Shares
	}
	return 0
}

func (v *Vault) UserAllocation(p Principal) (Allocation, bool) {
	if d, ok := v.depositors[p]; ok {
		return d.Allocation, true
	}
	return Allocation{}, false
}

func (v *Vault) UserDeposited(p Principal) uint64 {
	if d, ok := v.depositors[p]; ok {
		return d.DepositedTotal
	}
	return 0
}

func (v *Vault) UserWithdrawn(p Principal) uint64 {
	if d, ok := v.depositors[p]; ok {
		return d.WithdrawnTotal
	}
	return 0
}

// Depositor returns a copy of the depositor record.
func (v *Vault) Depositor(p Principal) (Depositor, bool) {
	if d, ok := v.depositors[p]; ok {
		return *d, true
	}
	return Depositor{}, false
}

// Depositors returns copies of every depositor record, ordered by principal.
func (v *Vault) Depositors() []Depositor {
	list := make([]Depositor, 0, len(v.depositors))
	for _, d := range v.depositors {
		list = append(list, *d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Principal < list[j].Principal })
	return list
}

// StrategyYield is the yield credited through ReportStrategyYield for id.
func (v *Vault) StrategyYield(id StrategyID) uint64 {
	return v.strategyYield[id]
}

// PreviewDeposit returns the shares a deposit of amount would mint at the current price.
func (v *Vault) PreviewDeposit(amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrorInvalidAmount
	}
	price, err := v.price()
	if err != nil {
		return 0, err
	}
	minted, err := mulDiv(amount, Scale, price)
	if err != nil {
		return 0, err
	}
	if minted == 0 {
		return 0, ErrorZeroShares
	}
	return minted, nil
}

// PreviewWithdraw returns the payout for burning shares at the current price.
func (v *Vault) PreviewWithdraw(shares uint64) (uint64, error) {
	price, err := v.price()
	if err != nil {
		return 0, err
	}
	return mulDiv(shares, price, Scale)
}

// Deposit mints shares for amount at the pre-deposit share price and
// overwrites the depositor's allocation.
func (v *Vault) Deposit(p Principal, amount uint64, allocation Allocation) (uint64, error) {
	if err := allocation.Validate(); err != nil {
		return 0, err
	}
	minted, err := v.PreviewDeposit(amount)
	if err != nil {
		return 0, err
	}

	totalAssets, err := add(v.totalAssets, amount)
	if err != nil {
		return 0, err
	}
	totalShares, err := add(v.totalShares, minted)
	if err != nil {
		return 0, err
	}
	d := v.depositors[p]
	if d == nil {
		d = &Depositor{Principal: p}
	}
	deposited, err := add(d.DepositedTotal, amount)
	if err != nil {
		return 0, err
	}

	v.totalAssets = totalAssets
	v.totalShares = totalShares
	d.Shares += minted
	d.Allocation = allocation
	d.DepositedTotal = deposited
	v.depositors[p] = d
	return minted, nil
}

// Withdraw burns shares and returns the floored payout.
func (v *Vault) Withdraw(p Principal, shares uint64) (uint64, error) {
	if shares == 0 {
		return 0, ErrorInvalidAmount
	}
	d := v.depositors[p]
	if d == nil || shares > d.Shares {
		return 0, ErrorInsufficientShares
	}
	payout, err := v.PreviewWithdraw(shares)
	if err != nil {
		return 0, err
	}
	withdrawn, err := add(d.WithdrawnTotal, payout)
	if err != nil {
		return 0, err
	}

	v.totalAssets -= payout
	v.totalShares -= shares
	d.Shares -= shares
	d.WithdrawnTotal = withdrawn
	return payout, nil
}

// Reallocate overwrites the stored allocation. No funds move.
func (v *Vault) Reallocate(p Principal, allocation Allocation) error {
	if err := allocation.Validate(); err != nil {
		return err
	}
	d := v.depositors[p]
	if d == nil {
		d = &Depositor{Principal: p}
		v.depositors[p] = d
	}
	d.Allocation = allocation
	return nil
}

// CheckYield reports whether ReportYield(caller, amount) would succeed.
func (v *Vault) CheckYield(caller Principal, amount uint64) error {
	if caller != v.reporter {
		return ErrorUnauthorized
	}
	if amount == 0 {
		return ErrorInvalidAmount
	}
	_, err := add(v.totalAssets, amount)
	return err
}

// ReportYield credits net yield to the pool without minting shares.
func (v *Vault) ReportYield(caller Principal, amount uint64) error {
	if err := v.CheckYield(caller, amount); err != nil {
		return err
	}
	v.totalAssets += amount
	return nil
}

// ReportStrategyYield credits yield like ReportYield and attributes it to id.
func (v *Vault) ReportStrategyYield(caller Principal, id StrategyID, amount uint64) error {
	if !knownStrategy(id) {
		return ErrorUnknownStrategy
	}
	if err := v.CheckYield(caller, amount); err != nil {
		return err
	}
	attributed, err := add(v.strategyYield[id], amount)
	if err != nil {
		return err
	}
	v.totalAssets += amount
	v.strategyYield[id] = attributed
	return nil
}

func knownStrategy(id StrategyID) bool {
	for _, known := range StrategyIDs {
		if known == id {
			return true
		}
	}
	return false
}
