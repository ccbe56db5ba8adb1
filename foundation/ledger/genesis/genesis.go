// Package genesis maintains access to the genesis file that seeds the
// compensation plan configuration and the root of the referral matrix.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Sink values identify where redirected or leftover money is routed.
const (
	SinkHelpPool = "help"
	SinkReserve  = "reserve"
	SinkTreasury = "treasury"
)

// bpsDenominator is the denominator for all basis point rates.
const bpsDenominator = 10000

// Split defines how the distributable part of a package payment is divided
// across the commission pools. All rates are basis points of the distributable
// amount and must sum to 10000.
type Split struct {
	SponsorBps uint64 `json:"sponsor_bps"` // Direct sponsor commission.
	LevelBps   uint64 `json:"level_bps"`   // Level bonus bucket.
	UplineBps  uint64 `json:"upline_bps"`  // Global upline bonus bucket.
	LeaderBps  uint64 `json:"leader_bps"`  // Leader pool accrual.
	HelpBps    uint64 `json:"help_bps"`    // Help pool accrual.
}

// WithdrawalTier maps a minimum direct referral count to the payout rate a
// withdrawing account receives. Tiers must be ordered by MinDirects ascending.
type WithdrawalTier struct {
	MinDirects int    `json:"min_directs"`
	RateBps    uint64 `json:"rate_bps"`
}

// LeaderRank defines the qualification thresholds for a leader rank.
type LeaderRank struct {
	TeamSize   int `json:"team_size"`
	MinDirects int `json:"min_directs"`
}

// Reactivation defines the rules for the three strategies that lift a capped
// account back to active status.
type Reactivation struct {
	MaxPerAccount int `json:"max_per_account"`

	TimeBased struct {
		CooldownSeconds uint64 `json:"cooldown_seconds"`
		FeeBps          uint64 `json:"fee_bps"` // Of the current package price.
		CapMultiplier   uint64 `json:"cap_multiplier"`
	} `json:"time_based"`

	Tiered struct {
		BaseCooldownSeconds uint64 `json:"base_cooldown_seconds"`
		StepCooldownSeconds uint64 `json:"step_cooldown_seconds"` // Added per prior use.
		BaseFeeBps          uint64 `json:"base_fee_bps"`
		StepFeeBps          uint64 `json:"step_fee_bps"` // Added per prior use.
		CeilingFeeBps       uint64 `json:"ceiling_fee_bps"`
		CapMultiplier       uint64 `json:"cap_multiplier"`
	} `json:"tiered"`

	UpgradeBased struct {
		MinPurchaseFactorBps uint64 `json:"min_purchase_factor_bps"` // Of the current package price.
		CapMultiplier        uint64 `json:"cap_multiplier"`
	} `json:"upgrade_based"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date     time.Time `json:"date"`
	LedgerID uint16    `json:"ledger_id"` // Unique id for this running instance.

	// Money is tracked in cents so percentage math stays integral.
	PackagePrices []uint64 `json:"package_prices"` // Indexed by tier-1.

	AdminFeeBps      uint64           `json:"admin_fee_bps"` // Of the gross payment.
	Splits           Split            `json:"splits"`
	LevelWeightsBps  []uint64         `json:"level_weights_bps"` // Of the level bucket, must sum to 10000.
	UplineLevels     int              `json:"upline_levels"`     // Sponsor-chain depth paid by the upline bonus.
	UplineShortSink  string           `json:"upline_short_sink"` // Destination when fewer ancestors exist.
	RoundingSink     string           `json:"rounding_sink"`     // Destination for integer division remainders.
	CapExcessSink    string           `json:"cap_excess_sink"`   // Destination for credits beyond the earnings cap.
	CapMultiplier    uint64           `json:"cap_multiplier"`
	WithdrawalFeeBps uint64           `json:"withdrawal_fee_bps"`
	WithdrawalTiers  []WithdrawalTier `json:"withdrawal_tiers"`

	HelpIntervalSeconds   uint64 `json:"help_interval_seconds"`
	LeaderIntervalSeconds uint64 `json:"leader_interval_seconds"`
	HelpActivitySeconds   uint64 `json:"help_activity_seconds"` // Activity window for help pool eligibility.

	ShiningStar LeaderRank `json:"shining_star"`
	SilverStar  LeaderRank `json:"silver_star"`

	Reactivation Reactivation `json:"reactivation"`

	EpochSeconds      uint64 `json:"epoch_seconds"`    // Width of the mutation guard epoch.
	TimelockSeconds   uint64 `json:"timelock_seconds"` // Delay between proposing and executing an upgrade.
	RequiredApprovals int    `json:"required_approvals"`

	// Root is pre-registered at the top of the matrix with the highest tier.
	Root     string `json:"root"`
	Treasury string `json:"treasury"`

	// Roles maps a role name to the accounts holding it. Recognized roles
	// are admin, proposer, signer, and emergency.
	Roles map[string][]string `json:"roles"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load() (Genesis, error) {
	path := "zledger/genesis.json"
	return LoadFile(path)
}

// LoadFile opens and consumes the genesis file at the specified path.
func LoadFile(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the configuration is internally consistent. The split and
// weight tables are data, not code, so the sums are enforced here instead of
// being trusted at distribution time.
func (g Genesis) Validate() error {
	if len(g.PackagePrices) == 0 {
		return fmt.Errorf("genesis: no package tiers configured")
	}
	for i, price := range g.PackagePrices {
		if price == 0 {
			return fmt.Errorf("genesis: package tier %d has zero price", i+1)
		}
		if i > 0 && price <= g.PackagePrices[i-1] {
			return fmt.Errorf("genesis: package tier %d price must exceed tier %d", i+1, i)
		}
	}

	total := g.Splits.SponsorBps + g.Splits.LevelBps + g.Splits.UplineBps + g.Splits.LeaderBps + g.Splits.HelpBps
	if total != bpsDenominator {
		return fmt.Errorf("genesis: pool splits sum to %d bps, want %d", total, bpsDenominator)
	}

	var weights uint64
	for _, w := range g.LevelWeightsBps {
		weights += w
	}
	if weights != bpsDenominator {
		return fmt.Errorf("genesis: level weights sum to %d bps, want %d", weights, bpsDenominator)
	}

	if g.UplineLevels <= 0 {
		return fmt.Errorf("genesis: upline levels must be positive")
	}

	for _, sink := range []string{g.UplineShortSink, g.RoundingSink, g.CapExcessSink} {
		switch sink {
		case SinkHelpPool, SinkReserve, SinkTreasury:
		default:
			return fmt.Errorf("genesis: unknown sink %q", sink)
		}
	}

	if len(g.WithdrawalTiers) == 0 {
		return fmt.Errorf("genesis: no withdrawal tiers configured")
	}
	for i, tier := range g.WithdrawalTiers {
		if tier.RateBps > bpsDenominator {
			return fmt.Errorf("genesis: withdrawal tier %d rate exceeds 100%%", i)
		}
		if i > 0 && tier.MinDirects <= g.WithdrawalTiers[i-1].MinDirects {
			return fmt.Errorf("genesis: withdrawal tiers must be ordered by min directs")
		}
	}

	if g.CapMultiplier == 0 {
		return fmt.Errorf("genesis: cap multiplier must be positive")
	}
	if g.EpochSeconds == 0 {
		return fmt.Errorf("genesis: epoch seconds must be positive")
	}
	if g.Root == "" {
		return fmt.Errorf("genesis: root account is required")
	}
	if g.Treasury == "" {
		return fmt.Errorf("genesis: treasury account is required")
	}

	return nil
}

// PackagePrice returns the price for the specified tier.
func (g Genesis) PackagePrice(tier uint8) (uint64, error) {
	if tier < 1 || int(tier) > len(g.PackagePrices) {
		return 0, fmt.Errorf("invalid package tier %d", tier)
	}
	return g.PackagePrices[tier-1], nil
}

// WithdrawalRateBps returns the payout rate for the specified direct
// referral count.
func (g Genesis) WithdrawalRateBps(directs int) uint64 {
	rate := g.WithdrawalTiers[0].RateBps
	for _, tier := range g.WithdrawalTiers {
		if directs >= tier.MinDirects {
			rate = tier.RateBps
		}
	}
	return rate
}

// HasRole reports whether the specified account holds the specified role.
func (g Genesis) HasRole(role string, account string) bool {
	for _, acct := range g.Roles[role] {
		if acct == account {
			return true
		}
	}
	return false
}
