// Package distribute computes the commission plan for a package payment.
// Planning is pure: the plan itemizes every cent of the payment before any
// state changes, so a caller can verify conservation and then apply the
// credits atomically or abort with nothing written.
package distribute

import (
	"fmt"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Credit is one planned personal commission.
type Credit struct {
	AccountID database.AccountID
	Level     int // 1-based sponsor-chain level. Zero for the sponsor commission.
	Amount    uint64
}

// Plan itemizes how one payment splits across the treasury, the sponsor
// chain, and the pools.
type Plan struct {
	Amount        uint64
	AdminFee      uint64
	Distributable uint64

	Sponsor Credit
	Levels  []Credit
	Uplines []Credit

	LeaderPool uint64
	HelpPool   uint64

	// Shortfall carries level and upline shares that had no ancestor to
	// pay; its destination is configured, not guessed.
	Shortfall     uint64
	ShortfallSink string

	// Remainder carries integer division dust.
	Remainder     uint64
	RemainderSink string
}

// Planner computes commission plans from the genesis configuration.
type Planner struct {
	genesis genesis.Genesis
}

// NewPlanner constructs a planner for the specified configuration.
func NewPlanner(gen genesis.Genesis) Planner {
	return Planner{genesis: gen}
}

// Plan splits the payment across the admin fee and the five commission
// buckets. The upline argument is the sponsor chain with the direct sponsor
// first; it is empty only for the root's own reinvestments.
func (p Planner) Plan(amount uint64, upline []database.AccountID) (Plan, error) {
	if amount == 0 {
		return Plan{}, fmt.Errorf("zero payment amount")
	}

	gen := p.genesis

	adminFee, err := database.MulBps(amount, gen.AdminFeeBps)
	if err != nil {
		return Plan{}, err
	}
	distributable := amount - adminFee

	plan := Plan{
		Amount:        amount,
		AdminFee:      adminFee,
		Distributable: distributable,
		ShortfallSink: gen.UplineShortSink,
		RemainderSink: gen.RoundingSink,
	}

	// An empty sponsor chain only happens for the root's reinvestments;
	// the personal buckets then fall through to the shortfall sink.
	sponsorCredit, err := database.MulBps(distributable, gen.Splits.SponsorBps)
	if err != nil {
		return Plan{}, err
	}
	if len(upline) > 0 {
		plan.Sponsor = Credit{AccountID: upline[0], Amount: sponsorCredit}
	} else {
		plan.Shortfall += sponsorCredit
		sponsorCredit = 0
	}

	levelBucket, err := database.MulBps(distributable, gen.Splits.LevelBps)
	if err != nil {
		return Plan{}, err
	}
	levelPaid, levelShort, err := p.planLevels(levelBucket, upline, &plan)
	if err != nil {
		return Plan{}, err
	}

	uplineBucket, err := database.MulBps(distributable, gen.Splits.UplineBps)
	if err != nil {
		return Plan{}, err
	}
	uplinePaid, uplineShort, err := p.planUplines(uplineBucket, upline, &plan)
	if err != nil {
		return Plan{}, err
	}

	plan.LeaderPool, err = database.MulBps(distributable, gen.Splits.LeaderBps)
	if err != nil {
		return Plan{}, err
	}
	plan.HelpPool, err = database.MulBps(distributable, gen.Splits.HelpBps)
	if err != nil {
		return Plan{}, err
	}

	plan.Shortfall += levelShort + uplineShort

	// Whatever integer division dropped stays inside the payment.
	assigned := sponsorCredit + levelPaid + uplinePaid + plan.LeaderPool + plan.HelpPool + plan.Shortfall
	if assigned > distributable {
		return Plan{}, fmt.Errorf("plan assigns %d of %d distributable", assigned, distributable)
	}
	plan.Remainder = distributable - assigned

	return plan, nil
}

// planLevels splits the level bucket across the sponsor chain using the
// configured per-level weights. Weights with no ancestor at that depth
// become shortfall.
func (p Planner) planLevels(bucket uint64, upline []database.AccountID, plan *Plan) (paid, short uint64, err error) {
	for i, weight := range p.genesis.LevelWeightsBps {
		share, err := database.MulBps(bucket, weight)
		if err != nil {
			return 0, 0, err
		}

		if i < len(upline) {
			plan.Levels = append(plan.Levels, Credit{AccountID: upline[i], Level: i + 1, Amount: share})
			paid += share
			continue
		}
		short += share
	}

	return paid, short, nil
}

// planUplines splits the upline bucket equally across the configured number
// of sponsor-chain levels. Slots with no ancestor become shortfall.
func (p Planner) planUplines(bucket uint64, upline []database.AccountID, plan *Plan) (paid, short uint64, err error) {
	levels := p.genesis.UplineLevels
	per := bucket / uint64(levels)

	for i := 0; i < levels; i++ {
		if i < len(upline) {
			plan.Uplines = append(plan.Uplines, Credit{AccountID: upline[i], Level: i + 1, Amount: per})
			paid += per
			continue
		}
		short += per
	}

	return paid, short, nil
}

// Total sums every destination in the plan. For any accepted payment the
// total must equal the payment amount: no value created or destroyed.
func (pl Plan) Total() uint64 {
	total := pl.AdminFee + pl.Sponsor.Amount + pl.LeaderPool + pl.HelpPool + pl.Shortfall + pl.Remainder
	for _, credit := range pl.Levels {
		total += credit.Amount
	}
	for _, credit := range pl.Uplines {
		total += credit.Amount
	}
	return total
}
