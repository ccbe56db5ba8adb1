// Package reactivate evaluates the three strategies that lift an earnings
// capped account back to active status. Evaluation is pure; the store
// applies the outcome.
package reactivate

import (
	"errors"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Set of errors surfaced by strategy evaluation.
var (
	ErrNotCapped               = errors.New("account is not capped")
	ErrCooldownNotElapsed      = errors.New("cooldown period not elapsed")
	ErrMaxReactivationsReached = errors.New("max reactivations reached")
	ErrInsufficientPayment     = errors.New("insufficient payment")
	ErrUnknownStrategy         = errors.New("unknown reactivation strategy")
)

// Outcome describes what executing a strategy does to the account. Fee goes
// to the treasury; Purchase (upgrade strategy only) re-enters the
// distribution engine as a package payment.
type Outcome struct {
	Strategy       string
	Fee            uint64
	Purchase       uint64
	NewTier        uint8
	CapMultiplier  uint64
	CooldownExpiry time.Time
}

// Evaluate checks the strategy's trigger condition against the account and
// payment, returning the outcome to apply or the guard error that rejects
// the call. Nothing is mutated.
func Evaluate(gen genesis.Genesis, account database.Account, strategy string, payment uint64, now time.Time) (Outcome, error) {
	if account.Status != database.StatusCapped {
		return Outcome{}, ErrNotCapped
	}
	if account.ReactivationCount >= gen.Reactivation.MaxPerAccount {
		return Outcome{}, ErrMaxReactivationsReached
	}

	price, err := gen.PackagePrice(account.PackageTier)
	if err != nil {
		return Outcome{}, err
	}

	switch strategy {
	case database.StrategyTimeBased:
		return timeBased(gen, account, price, payment, now)
	case database.StrategyTiered:
		return tiered(gen, account, price, payment, now)
	case database.StrategyUpgradeBased:
		return upgradeBased(gen, account, price, payment)
	}

	return Outcome{}, ErrUnknownStrategy
}

// timeBased requires the account to have sat capped for the full cooldown
// and charges a flat fee for a reduced cap multiplier.
func timeBased(gen genesis.Genesis, account database.Account, price, payment uint64, now time.Time) (Outcome, error) {
	rules := gen.Reactivation.TimeBased
	cooldown := time.Duration(rules.CooldownSeconds) * time.Second

	if now.Before(account.CappedAt.Add(cooldown)) {
		return Outcome{}, ErrCooldownNotElapsed
	}
	if now.Before(account.TimeBased.CooldownExpiry) {
		return Outcome{}, ErrCooldownNotElapsed
	}

	fee, err := database.MulBps(price, rules.FeeBps)
	if err != nil {
		return Outcome{}, err
	}
	if payment < fee {
		return Outcome{}, ErrInsufficientPayment
	}

	return Outcome{
		Strategy:       database.StrategyTimeBased,
		Fee:            fee,
		NewTier:        account.PackageTier,
		CapMultiplier:  rules.CapMultiplier,
		CooldownExpiry: now.Add(cooldown),
	}, nil
}

// tiered escalates both the cooldown and the fee with every prior use of
// this strategy, keeping the cap multiplier unchanged.
func tiered(gen genesis.Genesis, account database.Account, price, payment uint64, now time.Time) (Outcome, error) {
	rules := gen.Reactivation.Tiered
	uses := uint64(account.Tiered.Uses)

	cooldown := time.Duration(rules.BaseCooldownSeconds+rules.StepCooldownSeconds*uses) * time.Second
	if now.Before(account.CappedAt.Add(cooldown)) {
		return Outcome{}, ErrCooldownNotElapsed
	}
	if now.Before(account.Tiered.CooldownExpiry) {
		return Outcome{}, ErrCooldownNotElapsed
	}

	feeBps := rules.BaseFeeBps + rules.StepFeeBps*uses
	if feeBps > rules.CeilingFeeBps {
		feeBps = rules.CeilingFeeBps
	}

	fee, err := database.MulBps(price, feeBps)
	if err != nil {
		return Outcome{}, err
	}
	if payment < fee {
		return Outcome{}, ErrInsufficientPayment
	}

	return Outcome{
		Strategy:       database.StrategyTiered,
		Fee:            fee,
		NewTier:        account.PackageTier,
		CapMultiplier:  rules.CapMultiplier,
		CooldownExpiry: now.Add(cooldown),
	}, nil
}

// upgradeBased has no cooldown: the account buys a bigger package outright.
// The payment must match a configured package price at least 1.5x the
// current one; it is distributed like any package purchase, and the cap
// multiplier is boosted.
func upgradeBased(gen genesis.Genesis, account database.Account, price, payment uint64) (Outcome, error) {
	rules := gen.Reactivation.UpgradeBased

	minPurchase, err := database.MulBps(price, rules.MinPurchaseFactorBps)
	if err != nil {
		return Outcome{}, err
	}
	if payment < minPurchase {
		return Outcome{}, ErrInsufficientPayment
	}

	// The payment must buy an actual configured package above the
	// current tier.
	newTier := uint8(0)
	for i, tierPrice := range gen.PackagePrices {
		if payment == tierPrice && uint8(i+1) > account.PackageTier {
			newTier = uint8(i + 1)
			break
		}
	}
	if newTier == 0 {
		return Outcome{}, ErrInsufficientPayment
	}

	return Outcome{
		Strategy:      database.StrategyUpgradeBased,
		Purchase:      payment,
		NewTier:       newTier,
		CapMultiplier: rules.CapMultiplier,
	}, nil
}
