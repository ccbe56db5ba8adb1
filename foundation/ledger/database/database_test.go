package database_test

import (
	"errors"
	"testing"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	rootAcct = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	acct1    = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	acct2    = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
)

func newGenesis() genesis.Genesis {
	gen := genesis.Genesis{
		PackagePrices: []uint64{3000, 5000, 10000, 20000},
		AdminFeeBps:   500,
		Splits: genesis.Split{
			SponsorBps: 4000,
			LevelBps:   1000,
			UplineBps:  1000,
			LeaderBps:  1000,
			HelpBps:    3000,
		},
		LevelWeightsBps:  []uint64{3000, 1000, 1000, 1000, 1000, 1000, 500, 500, 500, 500},
		UplineLevels:     30,
		UplineShortSink:  genesis.SinkReserve,
		RoundingSink:     genesis.SinkHelpPool,
		CapExcessSink:    genesis.SinkHelpPool,
		CapMultiplier:    4,
		WithdrawalFeeBps: 500,
		WithdrawalTiers: []genesis.WithdrawalTier{
			{MinDirects: 0, RateBps: 7000},
			{MinDirects: 5, RateBps: 7500},
			{MinDirects: 20, RateBps: 8000},
		},
		EpochSeconds: 3,
		Root:         rootAcct,
		Treasury:     acct2,
	}
	return gen
}

// =============================================================================

func TestEarningsCap(t *testing.T) {
	type table struct {
		name     string
		invested uint64
		credits  []uint64
		credited []uint64
		excess   []uint64
		status   string
		sink     uint64
	}

	tt := []table{
		{
			name:     "under cap",
			invested: 3000,
			credits:  []uint64{5000},
			credited: []uint64{5000},
			excess:   []uint64{0},
			status:   database.StatusActive,
			sink:     0,
		},
		{
			name:     "exact cap flips",
			invested: 3000,
			credits:  []uint64{12000},
			credited: []uint64{12000},
			excess:   []uint64{0},
			status:   database.StatusCapped,
			sink:     0,
		},
		{
			name:     "partial credit routes excess",
			invested: 3000,
			credits:  []uint64{15000},
			credited: []uint64{12000},
			excess:   []uint64{3000},
			status:   database.StatusCapped,
			sink:     3000,
		},
		{
			name:     "capped account redirects fully",
			invested: 3000,
			credits:  []uint64{12000, 100},
			credited: []uint64{12000, 0},
			excess:   []uint64{0, 100},
			status:   database.StatusCapped,
			sink:     100,
		},
	}

	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	t.Log("Given the need to validate the earnings cap state machine.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen crediting an account with a 4x cap.", testID)
			{
				f := func(t *testing.T) {
					db, err := database.New(newGenesis(), nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to open database.", success, testID)

					account := database.Account{
						AccountID:     acct1,
						Sponsor:       rootAcct,
						PackageTier:   1,
						TotalInvested: tst.invested,
						CapMultiplier: 4,
						Status:        database.StatusActive,
					}
					if err := db.CreateAccount(account); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to create account: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to create account.", success, testID)

					for i, amount := range tst.credits {
						credited, excess, err := db.Credit(acct1, amount, now)
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to credit account: %v", failed, testID, err)
						}
						if credited != tst.credited[i] {
							t.Errorf("\t%s\tTest %d:\tShould credit %d, got %d.", failed, testID, tst.credited[i], credited)
						} else {
							t.Logf("\t%s\tTest %d:\tShould credit %d.", success, testID, credited)
						}
						if excess != tst.excess[i] {
							t.Errorf("\t%s\tTest %d:\tShould route %d excess, got %d.", failed, testID, tst.excess[i], excess)
						} else {
							t.Logf("\t%s\tTest %d:\tShould route %d excess.", success, testID, excess)
						}
					}

					got, err := db.Account(acct1)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to read account back: %v", failed, testID, err)
					}
					if got.Status != tst.status {
						t.Errorf("\t%s\tTest %d:\tShould have status %s, got %s.", failed, testID, tst.status, got.Status)
					} else {
						t.Logf("\t%s\tTest %d:\tShould have status %s.", success, testID, tst.status)
					}

					if pools := db.PoolBalances(); pools.Help != tst.sink {
						t.Errorf("\t%s\tTest %d:\tShould have %d in the cap excess sink, got %d.", failed, testID, tst.sink, pools.Help)
					} else {
						t.Logf("\t%s\tTest %d:\tShould have %d in the cap excess sink.", success, testID, tst.sink)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestWithdrawalDebit(t *testing.T) {
	t.Log("Given the need to validate withdrawal debits are rejected, never truncated.")
	{
		t.Logf("\tTest 0:\tWhen withdrawing more than the balance.")
		{
			db, err := database.New(newGenesis(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open database: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to open database.", success)

			account := database.Account{
				AccountID:     acct1,
				PackageTier:   1,
				TotalInvested: 3000,
				CapMultiplier: 4,
				Status:        database.StatusActive,
			}
			if err := db.CreateAccount(account); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create account: %v", failed, err)
			}

			now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
			if _, _, err := db.Credit(acct1, 1000, now); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to credit account: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to credit account.", success)

			err = db.ApplyWithdrawal(acct1, 1500, 1000)
			if !errors.Is(err, database.ErrInsufficientBalance) {
				t.Errorf("\t%s\tTest 0:\tShould reject an over-balance withdrawal: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject an over-balance withdrawal.", success)
			}

			got, _ := db.Account(acct1)
			if got.Withdrawable != 1000 {
				t.Errorf("\t%s\tTest 0:\tShould leave the balance untouched, got %d.", failed, got.Withdrawable)
			} else {
				t.Logf("\t%s\tTest 0:\tShould leave the balance untouched.", success)
			}
		}
	}
}

func TestReactivationRecord(t *testing.T) {
	t.Log("Given the need to validate reactivation restores active status without resetting earnings.")
	{
		t.Logf("\tTest 0:\tWhen reactivating a capped account.")
		{
			db, err := database.New(newGenesis(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to open database: %v", failed, err)
			}

			account := database.Account{
				AccountID:     acct1,
				PackageTier:   1,
				TotalInvested: 3000,
				CapMultiplier: 4,
				Status:        database.StatusActive,
			}
			if err := db.CreateAccount(account); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to create account: %v", failed, err)
			}

			now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
			if _, _, err := db.Credit(acct1, 12000, now); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to cap the account: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to cap the account.", success)

			expiry := now.Add(180 * 24 * time.Hour)
			if err := db.ApplyReactivation(acct1, database.StrategyTimeBased, 2, expiry); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reactivate: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to reactivate.", success)

			got, _ := db.Account(acct1)
			if got.Status != database.StatusActive {
				t.Errorf("\t%s\tTest 0:\tShould be active again, got %s.", failed, got.Status)
			} else {
				t.Logf("\t%s\tTest 0:\tShould be active again.", success)
			}
			if got.TotalEarnings != 12000 {
				t.Errorf("\t%s\tTest 0:\tShould keep cumulative earnings, got %d.", failed, got.TotalEarnings)
			} else {
				t.Logf("\t%s\tTest 0:\tShould keep cumulative earnings.", success)
			}
			if got.CapMultiplier != 2 {
				t.Errorf("\t%s\tTest 0:\tShould have the new cap multiplier, got %d.", failed, got.CapMultiplier)
			} else {
				t.Logf("\t%s\tTest 0:\tShould have the new cap multiplier.", success)
			}
			if got.TimeBased.Uses != 1 || got.ReactivationCount != 1 {
				t.Errorf("\t%s\tTest 0:\tShould record the strategy use.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould record the strategy use.", success)
			}

			// 12000 earned against a 2x cap of 6000 leaves no room.
			if got.Room() != 0 {
				t.Errorf("\t%s\tTest 0:\tShould have no cap room left, got %d.", failed, got.Room())
			} else {
				t.Logf("\t%s\tTest 0:\tShould have no cap room left.", success)
			}
		}
	}
}
