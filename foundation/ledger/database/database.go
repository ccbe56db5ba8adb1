// Package database manages the in-memory account and pool state for the
// compensation ledger and owns the earnings-cap state machine. Durability
// comes from replaying the operation journal, not from persisting this state.
package database

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Set of errors surfaced by the store.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already registered")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrSlotOccupied        = errors.New("matrix slot already occupied")
)

// Pools holds the shared balances that accumulate across registrations and
// drain on periodic distribution.
type Pools struct {
	Treasury uint64
	Reserve  uint64
	Leader   uint64
	Help     uint64

	LastLeaderDistribution time.Time
	LastHelpDistribution   time.Time
}

// PoolCredit is one planned credit from a pool distribution.
type PoolCredit struct {
	AccountID AccountID
	Amount    uint64
}

// Database manages data related to accounts participating in the
// compensation plan.
type Database struct {
	mu sync.RWMutex

	genesis   genesis.Genesis
	accounts  map[AccountID]Account
	pools     Pools
	evHandler func(v string, args ...any)
}

// New constructs a new database and pre-registers the root account from the
// genesis information.
func New(gen genesis.Genesis, evHandler func(v string, args ...any)) (*Database, error) {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	db := Database{
		genesis:   gen,
		accounts:  make(map[AccountID]Account),
		evHandler: ev,
	}

	rootID, err := ToAccountID(gen.Root)
	if err != nil {
		return nil, fmt.Errorf("genesis root: %w", err)
	}

	topTier := uint8(len(gen.PackagePrices))
	price := gen.PackagePrices[topTier-1]

	db.accounts[rootID] = Account{
		AccountID:     rootID,
		PackageTier:   topTier,
		TotalInvested: price,
		CapMultiplier: gen.CapMultiplier,
		Status:        StatusActive,
	}

	return &db, nil
}

// Root returns the id of the matrix root account.
func (db *Database) Root() AccountID {
	return AccountID(db.genesis.Root)
}

// HasAccount reports whether the account is registered.
func (db *Database) HasAccount(accountID AccountID) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, exists := db.accounts[accountID]
	return exists
}

// Account retrieves a copy of the specified account.
func (db *Database) Account(accountID AccountID) (Account, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return Account{}, ErrAccountNotFound
	}
	return copyAccount(account), nil
}

// CreateAccount inserts a newly placed account into the store.
func (db *Database) CreateAccount(account Account) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.accounts[account.AccountID]; exists {
		return ErrAccountExists
	}

	db.accounts[account.AccountID] = copyAccount(account)
	return nil
}

// CopyAccounts makes a copy of the current accounts in the database.
func (db *Database) CopyAccounts() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account, len(db.accounts))
	for accountID, account := range db.accounts {
		accounts[accountID] = copyAccount(account)
	}
	return accounts
}

// =============================================================================
// Matrix primitives. The placement algorithm lives in the matrix package;
// these mutators keep the tree bookkeeping inside the store's lock.

// SetChild records the child in the specified slot of the parent and links
// the child back to its matrix parent.
func (db *Database) SetChild(parentID AccountID, side string, childID AccountID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	parent, exists := db.accounts[parentID]
	if !exists {
		return ErrAccountNotFound
	}

	switch side {
	case SideLeft:
		if !parent.LeftChild.IsZero() {
			return ErrSlotOccupied
		}
		parent.LeftChild = childID
	case SideRight:
		if !parent.RightChild.IsZero() {
			return ErrSlotOccupied
		}
		parent.RightChild = childID
	default:
		return fmt.Errorf("unknown matrix side %q", side)
	}

	db.accounts[parentID] = parent

	if child, exists := db.accounts[childID]; exists {
		child.MatrixParent = parentID
		child.MatrixSide = side
		db.accounts[childID] = child
	}

	return nil
}

// IncTeamSize increments the team size for the specified matrix ancestor.
func (db *Database) IncTeamSize(accountID AccountID) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if account, exists := db.accounts[accountID]; exists {
		account.TeamSize++
		db.accounts[accountID] = account
	}
}

// IncDirectReferrals increments the direct referral count for the sponsor.
func (db *Database) IncDirectReferrals(accountID AccountID) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if account, exists := db.accounts[accountID]; exists {
		account.DirectReferralCount++
		db.accounts[accountID] = account
	}
}

// =============================================================================
// Earnings and balances.

// Credit attempts to add the specified amount to the account's earnings and
// withdrawable balance, enforcing the lifetime cap. If the credit would
// exceed the remaining room, the account flips to CAPPED atomically and the
// excess is routed to the configured cap-excess sink. Credits to an already
// capped account redirect entirely.
func (db *Database) Credit(accountID AccountID, amount uint64, now time.Time) (credited uint64, excess uint64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.creditLocked(accountID, amount, now)
}

func (db *Database) creditLocked(accountID AccountID, amount uint64, now time.Time) (uint64, uint64, error) {
	account, exists := db.accounts[accountID]
	if !exists {
		return 0, 0, ErrAccountNotFound
	}

	if account.Status == StatusCapped {
		if err := db.sinkLocked(db.genesis.CapExcessSink, amount); err != nil {
			return 0, 0, err
		}
		db.evHandler("database: credit redirect: account %s capped, %d to %s", accountID, amount, db.genesis.CapExcessSink)
		return 0, amount, nil
	}

	credited := amount
	room := account.Room()
	if credited > room {
		credited = room
	}

	earnings, err := add64(account.TotalEarnings, credited)
	if err != nil {
		return 0, 0, err
	}
	withdrawable, err := add64(account.Withdrawable, credited)
	if err != nil {
		return 0, 0, err
	}

	account.TotalEarnings = earnings
	account.Withdrawable = withdrawable

	excess := amount - credited
	if excess > 0 || room == credited {
		account.Status = StatusCapped
		account.CappedAt = now
		db.evHandler("database: account %s reached earnings cap", accountID)
	}

	db.accounts[accountID] = account

	if excess > 0 {
		if err := db.sinkLocked(db.genesis.CapExcessSink, excess); err != nil {
			return 0, 0, err
		}
	}

	return credited, excess, nil
}

// AddInvestment increases the account's total investment, which widens the
// earnings cap room immediately.
func (db *Database) AddInvestment(accountID AccountID, amount uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return ErrAccountNotFound
	}

	invested, err := add64(account.TotalInvested, amount)
	if err != nil {
		return err
	}

	account.TotalInvested = invested
	db.accounts[accountID] = account
	return nil
}

// SetTier raises the account's package tier. Tiers never decrease.
func (db *Database) SetTier(accountID AccountID, tier uint8) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return ErrAccountNotFound
	}
	if tier < account.PackageTier {
		return fmt.Errorf("tier %d below current %d", tier, account.PackageTier)
	}

	account.PackageTier = tier
	db.accounts[accountID] = account
	return nil
}

// ApplyWithdrawal debits the full withdrawal amount and records the cash
// payout. The reject-don't-truncate rule lives here.
func (db *Database) ApplyWithdrawal(accountID AccountID, amount uint64, payout uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return ErrAccountNotFound
	}
	if amount > account.Withdrawable {
		return ErrInsufficientBalance
	}

	paidOut, err := add64(account.PaidOut, payout)
	if err != nil {
		return err
	}

	account.Withdrawable -= amount
	account.PaidOut = paidOut
	db.accounts[accountID] = account
	return nil
}

// ApplyReactivation lifts a capped account back to active with the new cap
// multiplier and updates the strategy's record. Total earnings are never
// reset; the new multiplier is applied against the same cumulative figure.
func (db *Database) ApplyReactivation(accountID AccountID, strategy string, capMultiplier uint64, cooldownExpiry time.Time) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	account, exists := db.accounts[accountID]
	if !exists {
		return ErrAccountNotFound
	}

	var record *ReactivationRecord
	switch strategy {
	case StrategyTimeBased:
		record = &account.TimeBased
	case StrategyTiered:
		record = &account.Tiered
	case StrategyUpgradeBased:
		record = &account.UpgradeBased
	default:
		return fmt.Errorf("unknown reactivation strategy %q", strategy)
	}

	record.Uses++
	record.CooldownExpiry = cooldownExpiry

	account.Status = StatusActive
	account.CappedAt = time.Time{}
	account.CapMultiplier = capMultiplier
	account.ReactivationCount++
	db.accounts[accountID] = account

	db.evHandler("database: account %s reactivated via %s, cap multiplier %d", accountID, strategy, capMultiplier)
	return nil
}

// MarkMutation records the guard epoch and activity time for the acting
// account of a mutating call.
func (db *Database) MarkMutation(accountID AccountID, epoch uint64, now time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if account, exists := db.accounts[accountID]; exists {
		account.LastMutationEpoch = epoch
		account.LastActivity = now
		db.accounts[accountID] = account
	}
}

// =============================================================================
// Pool balances.

// PoolBalances returns a copy of the current pool balances.
func (db *Database) PoolBalances() Pools {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.pools
}

// AddTreasury credits the treasury sink.
func (db *Database) AddTreasury(amount uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.sinkLocked(genesis.SinkTreasury, amount)
}

// AddLeaderPool accrues into the leader pool.
func (db *Database) AddLeaderPool(amount uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	v, err := add64(db.pools.Leader, amount)
	if err != nil {
		return err
	}
	db.pools.Leader = v
	return nil
}

// AddHelpPool accrues into the help pool.
func (db *Database) AddHelpPool(amount uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.sinkLocked(genesis.SinkHelpPool, amount)
}

// AddSink routes the amount to the named sink.
func (db *Database) AddSink(sink string, amount uint64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	return db.sinkLocked(sink, amount)
}

func (db *Database) sinkLocked(sink string, amount uint64) error {
	var target *uint64
	switch sink {
	case genesis.SinkHelpPool:
		target = &db.pools.Help
	case genesis.SinkReserve:
		target = &db.pools.Reserve
	case genesis.SinkTreasury:
		target = &db.pools.Treasury
	default:
		return fmt.Errorf("unknown sink %q", sink)
	}

	v, err := add64(*target, amount)
	if err != nil {
		return err
	}
	*target = v
	return nil
}

// DistributePool drains the specified pool into the planned credits under a
// single lock so a distribution either fully applies or not at all. Credits
// still route through the cap state machine; any excess returns to the
// cap-excess sink. The leftover stays in the pool for the next cycle.
func (db *Database) DistributePool(pool string, credits []PoolCredit, leftover uint64, now time.Time) ([]Line, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var balance *uint64
	switch pool {
	case PoolLeader:
		balance = &db.pools.Leader
	case PoolHelp:
		balance = &db.pools.Help
	default:
		return nil, fmt.Errorf("unknown pool %q", pool)
	}

	// Validate the plan balances before any credit is applied.
	total := leftover
	for _, credit := range credits {
		v, err := add64(total, credit.Amount)
		if err != nil {
			return nil, err
		}
		total = v
	}
	if total != *balance {
		return nil, fmt.Errorf("distribution plan moves %d, pool holds %d", total, *balance)
	}

	*balance = 0

	lines := make([]Line, 0, len(credits)+1)
	for _, credit := range credits {
		credited, excess, err := db.creditLocked(credit.AccountID, credit.Amount, now)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{Kind: LinePoolShare, Account: credit.AccountID, Amount: credited})
		if excess > 0 {
			lines = append(lines, Line{Kind: LineCapExcess, Account: credit.AccountID, Amount: excess})
		}
	}

	if leftover > 0 {
		v, err := add64(*balance, leftover)
		if err != nil {
			return nil, err
		}
		*balance = v
		lines = append(lines, Line{Kind: LineRemainder, Amount: leftover})
	}

	switch pool {
	case PoolLeader:
		db.pools.LastLeaderDistribution = now
	case PoolHelp:
		db.pools.LastHelpDistribution = now
	}

	return lines, nil
}

// =============================================================================

// AccountIDs returns every registered account id in a stable order.
func (db *Database) AccountIDs() []AccountID {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ids := make([]AccountID, 0, len(db.accounts))
	for id := range db.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// copyAccount clones the account so callers never share the upline slice.
func copyAccount(account Account) Account {
	account.UplineChain = append([]AccountID(nil), account.UplineChain...)
	return account
}
