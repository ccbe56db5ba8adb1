package genesis_test

import (
	"testing"

	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func validGenesis() genesis.Genesis {
	return genesis.Genesis{
		PackagePrices: []uint64{3000, 5000, 10000, 20000},
		AdminFeeBps:   500,
		Splits: genesis.Split{
			SponsorBps: 4000,
			LevelBps:   1000,
			UplineBps:  1000,
			LeaderBps:  1000,
			HelpBps:    3000,
		},
		LevelWeightsBps: []uint64{3000, 1000, 1000, 1000, 1000, 1000, 500, 500, 500, 500},
		UplineLevels:    30,
		UplineShortSink: genesis.SinkReserve,
		RoundingSink:    genesis.SinkHelpPool,
		CapExcessSink:   genesis.SinkHelpPool,
		CapMultiplier:   4,
		WithdrawalTiers: []genesis.WithdrawalTier{
			{MinDirects: 0, RateBps: 7000},
			{MinDirects: 5, RateBps: 7500},
			{MinDirects: 20, RateBps: 8000},
		},
		EpochSeconds: 3,
		Root:         "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32",
		Treasury:     "0xbEE6aCE826eC2DE1aB38a4A0C7cf48e29A654081",
	}
}

func TestValidate(t *testing.T) {
	type table struct {
		name   string
		mutate func(gen *genesis.Genesis)
	}

	tt := []table{
		{
			name:   "no package tiers",
			mutate: func(gen *genesis.Genesis) { gen.PackagePrices = nil },
		},
		{
			name:   "prices not ascending",
			mutate: func(gen *genesis.Genesis) { gen.PackagePrices = []uint64{3000, 3000} },
		},
		{
			name:   "splits not 10000 bps",
			mutate: func(gen *genesis.Genesis) { gen.Splits.HelpBps = 2999 },
		},
		{
			name:   "level weights not 10000 bps",
			mutate: func(gen *genesis.Genesis) { gen.LevelWeightsBps = []uint64{5000, 4000} },
		},
		{
			name:   "unknown sink",
			mutate: func(gen *genesis.Genesis) { gen.RoundingSink = "burn" },
		},
		{
			name: "withdrawal tiers unordered",
			mutate: func(gen *genesis.Genesis) {
				gen.WithdrawalTiers = []genesis.WithdrawalTier{
					{MinDirects: 5, RateBps: 7500},
					{MinDirects: 0, RateBps: 7000},
				}
			},
		},
		{
			name:   "withdrawal rate over 100 percent",
			mutate: func(gen *genesis.Genesis) { gen.WithdrawalTiers[0].RateBps = 10001 },
		},
		{
			name:   "zero cap multiplier",
			mutate: func(gen *genesis.Genesis) { gen.CapMultiplier = 0 },
		},
		{
			name:   "zero epoch width",
			mutate: func(gen *genesis.Genesis) { gen.EpochSeconds = 0 },
		},
		{
			name:   "missing root",
			mutate: func(gen *genesis.Genesis) { gen.Root = "" },
		},
	}

	t.Log("Given the need to validate genesis configuration consistency.")
	{
		t.Logf("\tTest 0:\tWhen the configuration is well formed.")
		{
			if err := validGenesis().Validate(); err != nil {
				t.Errorf("\t%s\tTest 0:\tShould pass validation: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould pass validation.", success)
			}
		}

		for testID, tst := range tt {
			testID++
			t.Logf("\tTest %d:\tWhen the configuration has %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					gen := validGenesis()
					tst.mutate(&gen)

					if err := gen.Validate(); err == nil {
						t.Errorf("\t%s\tTest %d:\tShould fail validation.", failed, testID)
					} else {
						t.Logf("\t%s\tTest %d:\tShould fail validation: %v", success, testID, err)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestWithdrawalRate(t *testing.T) {
	t.Log("Given the need to resolve the payout rate from direct referrals.")
	{
		t.Logf("\tTest 0:\tWhen looking up rates across the tier boundaries.")
		{
			gen := validGenesis()

			tt := []struct {
				directs int
				rate    uint64
			}{
				{0, 7000},
				{4, 7000},
				{5, 7500},
				{19, 7500},
				{20, 8000},
				{100, 8000},
			}

			for _, tst := range tt {
				if rate := gen.WithdrawalRateBps(tst.directs); rate != tst.rate {
					t.Errorf("\t%s\tTest 0:\tShould resolve %d directs to %d bps, got %d.", failed, tst.directs, tst.rate, rate)
				} else {
					t.Logf("\t%s\tTest 0:\tShould resolve %d directs to %d bps.", success, tst.directs, tst.rate)
				}
			}
		}
	}
}
