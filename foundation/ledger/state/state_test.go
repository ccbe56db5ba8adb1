package state_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/database/storage/memory"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
	"github.com/orphinet/ledger/foundation/ledger/guard"
	"github.com/orphinet/ledger/foundation/ledger/roles"
	"github.com/orphinet/ledger/foundation/ledger/state"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const (
	rootAcct = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	treasury = "0xbEE6aCE826eC2DE1aB38a4A0C7cf48e29A654081"
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
		HelpIntervalSeconds:   604800,
		LeaderIntervalSeconds: 1209600,
		HelpActivitySeconds:   2592000,
		ShiningStar:           genesis.LeaderRank{TeamSize: 10, MinDirects: 5},
		SilverStar:            genesis.LeaderRank{TeamSize: 50, MinDirects: 10},
		EpochSeconds:          3,
		Root:                  rootAcct,
		Treasury:              treasury,
		Roles: map[string][]string{
			"admin": {rootAcct},
		},
	}
	return gen
}

func TestLifecycle(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	serializer, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the serializer: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis:    newGenesis(),
		Serializer: serializer,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the state: %v", failed, err)
	}
	defer st.Shutdown()

	t.Log("Given the need to run accounts through the full ledger lifecycle.")
	{
		t.Logf("\tTest 0:\tWhen registering an account under the root.")
		{
			receipt, err := st.Register(acct1, rootAcct, 1, 3000, "pay-1")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to register: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to register.", success)

			if receipt.CreditTotal() != 3000 {
				t.Errorf("\t%s\tTest 0:\tShould conserve the full payment, moved %d of 3000.", failed, receipt.CreditTotal())
			} else {
				t.Logf("\t%s\tTest 0:\tShould conserve the full payment.", success)
			}

			account, err := st.QueryAccount(acct1)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to query the account: %v", failed, err)
			}
			if account.Sponsor != rootAcct || account.PackageTier != 1 || account.Status != database.StatusActive {
				t.Errorf("\t%s\tTest 0:\tShould hold the registered sponsor, tier, and status.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould hold the registered sponsor, tier, and status.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen a second account registers under the first.")
		{
			clock.Advance(5 * time.Second)

			receipt, err := st.Register(acct2, acct1, 1, 3000, "pay-2")
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to register: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould be able to register.", success)

			if receipt.CreditTotal() != 3000 {
				t.Errorf("\t%s\tTest 1:\tShould conserve the full payment, moved %d of 3000.", failed, receipt.CreditTotal())
			} else {
				t.Logf("\t%s\tTest 1:\tShould conserve the full payment.", success)
			}

			// Sponsor commission is 40% of the distributable 2850.
			sponsor, err := st.QueryAccount(acct1)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to query the sponsor: %v", failed, err)
			}
			if sponsor.Withdrawable != 1140 {
				t.Errorf("\t%s\tTest 1:\tShould credit the sponsor 1140, got %d.", failed, sponsor.Withdrawable)
			} else {
				t.Logf("\t%s\tTest 1:\tShould credit the sponsor 1140.", success)
			}
			if sponsor.DirectReferralCount != 1 {
				t.Errorf("\t%s\tTest 1:\tShould count the direct referral.", failed)
			} else {
				t.Logf("\t%s\tTest 1:\tShould count the direct referral.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen an account tries to register twice.")
		{
			clock.Advance(5 * time.Second)

			_, err := st.Register(acct1, rootAcct, 1, 3000, "pay-3")
			if !errors.Is(err, state.ErrAlreadyRegistered) {
				t.Errorf("\t%s\tTest 2:\tShould reject the duplicate registration: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 2:\tShould reject the duplicate registration.", success)
			}

			if st.LatestSeq() != 2 {
				t.Errorf("\t%s\tTest 2:\tShould not journal the rejected operation.", failed)
			} else {
				t.Logf("\t%s\tTest 2:\tShould not journal the rejected operation.", success)
			}
		}

		t.Logf("\tTest 3:\tWhen the sponsor withdraws part of the balance.")
		{
			clock.Advance(5 * time.Second)

			receipt, err := st.Withdraw(acct1, 1000)
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to withdraw: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould be able to withdraw.", success)

			var payout, reinvest uint64
			for _, line := range receipt.Lines {
				switch line.Kind {
				case database.LinePayout:
					payout = line.Amount
				case database.LineReinvest:
					reinvest = line.Amount
				}
			}
			if payout != 665 || reinvest != 285 {
				t.Errorf("\t%s\tTest 3:\tShould pay out 665 and reinvest 285, got %d and %d.", failed, payout, reinvest)
			} else {
				t.Logf("\t%s\tTest 3:\tShould pay out 665 and reinvest 285.", success)
			}

			// Everything but the cash payout stays inside the ledger.
			if receipt.CreditTotal() != 1000-payout {
				t.Errorf("\t%s\tTest 3:\tShould keep %d inside the ledger, moved %d.", failed, 1000-payout, receipt.CreditTotal())
			} else {
				t.Logf("\t%s\tTest 3:\tShould keep %d inside the ledger.", success, 1000-payout)
			}

			account, err := st.QueryAccount(acct1)
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to query the account: %v", failed, err)
			}
			if account.Withdrawable != 140 || account.PaidOut != 665 {
				t.Errorf("\t%s\tTest 3:\tShould debit the balance to 140 with 665 paid out, got %d and %d.", failed, account.Withdrawable, account.PaidOut)
			} else {
				t.Logf("\t%s\tTest 3:\tShould debit the balance to 140 with 665 paid out.", success)
			}
		}

		t.Logf("\tTest 4:\tWhen rebuilding the ledger from the journal.")
		{
			rebuilt, err := state.New(state.Config{
				Genesis:    newGenesis(),
				Serializer: serializer,
				Clock:      clock,
			})
			if err != nil {
				t.Fatalf("\t%s\tTest 4:\tShould be able to replay the journal: %v", failed, err)
			}
			t.Logf("\t%s\tTest 4:\tShould be able to replay the journal.", success)

			if rebuilt.LatestSeq() != st.LatestSeq() {
				t.Errorf("\t%s\tTest 4:\tShould land on the same sequence %d, got %d.", failed, st.LatestSeq(), rebuilt.LatestSeq())
			} else {
				t.Logf("\t%s\tTest 4:\tShould land on the same sequence.", success)
			}

			if !reflect.DeepEqual(rebuilt.RetrieveAccounts(), st.RetrieveAccounts()) {
				t.Errorf("\t%s\tTest 4:\tShould rebuild identical account state.", failed)
			} else {
				t.Logf("\t%s\tTest 4:\tShould rebuild identical account state.", success)
			}

			if rebuilt.RetrievePools() != st.RetrievePools() {
				t.Errorf("\t%s\tTest 4:\tShould rebuild identical pool balances.", failed)
			} else {
				t.Logf("\t%s\tTest 4:\tShould rebuild identical pool balances.", success)
			}
		}
	}
}

func TestPoolDistribution(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	serializer, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the serializer: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis:    newGenesis(),
		Serializer: serializer,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the state: %v", failed, err)
	}
	defer st.Shutdown()

	// One tier 4 leader with ten tier 1 directs. Each registration accrues
	// 30% of its distributable to the help pool and 10% to the leader pool.
	if _, err := st.Register(acct1, rootAcct, 4, 20000, "pay-leader"); err != nil {
		t.Fatalf("\t%s\tShould be able to register the leader: %v", failed, err)
	}
	for i := 0; i < 10; i++ {
		clock.Advance(5 * time.Second)
		member := fmt.Sprintf("0x%040d", i+1)
		if _, err := st.Register(database.AccountID(member), acct1, 1, 3000, fmt.Sprintf("pay-%d", i+1)); err != nil {
			t.Fatalf("\t%s\tShould be able to register member %d: %v", failed, i+1, err)
		}
	}

	t.Log("Given the need to validate help and leader pool distributions.")
	{
		t.Logf("\tTest 0:\tWhen distributing the help pool pro-rata.")
		{
			clock.Advance(5 * time.Second)

			receipt, err := st.DistributePool(database.PoolHelp, rootAcct)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to distribute: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to distribute.", success)

			// Pool holds 5700 + 10*855 = 14250 across 50000 invested.
			if receipt.CreditTotal() != 14250 {
				t.Errorf("\t%s\tTest 0:\tShould move the full pool of 14250, moved %d.", failed, receipt.CreditTotal())
			} else {
				t.Logf("\t%s\tTest 0:\tShould move the full pool of 14250.", success)
			}

			var leaderShare uint64
			for _, line := range receipt.Lines {
				if line.Kind == database.LinePoolShare && line.Account == acct1 {
					leaderShare = line.Amount
				}
			}
			if leaderShare != 5700 {
				t.Errorf("\t%s\tTest 0:\tShould give the 20000 investor 5700, got %d.", failed, leaderShare)
			} else {
				t.Logf("\t%s\tTest 0:\tShould give the 20000 investor 5700.", success)
			}

			if pools := st.RetrievePools(); pools.Help != 0 {
				t.Errorf("\t%s\tTest 0:\tShould drain the help pool, %d left.", failed, pools.Help)
			} else {
				t.Logf("\t%s\tTest 0:\tShould drain the help pool.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen distributing again inside the interval.")
		{
			clock.Advance(5 * time.Second)

			_, err := st.DistributePool(database.PoolHelp, rootAcct)
			if !errors.Is(err, state.ErrTooEarly) {
				t.Errorf("\t%s\tTest 1:\tShould reject inside the weekly interval: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 1:\tShould reject inside the weekly interval.", success)
			}
		}

		t.Logf("\tTest 2:\tWhen the interval elapsed but the pool is empty.")
		{
			clock.Advance(8 * 24 * time.Hour)

			_, err := st.DistributePool(database.PoolHelp, rootAcct)
			if !errors.Is(err, state.ErrNoFunds) {
				t.Errorf("\t%s\tTest 2:\tShould reject an empty pool: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 2:\tShould reject an empty pool.", success)
			}
		}

		t.Logf("\tTest 3:\tWhen distributing the leader pool with one shining star.")
		{
			clock.Advance(5 * time.Second)

			receipt, err := st.DistributePool(database.PoolLeader, rootAcct)
			if err != nil {
				t.Fatalf("\t%s\tTest 3:\tShould be able to distribute: %v", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould be able to distribute.", success)

			// Pool holds 1900 + 10*285 = 4750. The shining star half pays
			// the one qualifier; the silver half carries to the next cycle.
			var share uint64
			for _, line := range receipt.Lines {
				if line.Kind == database.LinePoolShare && line.Account == acct1 {
					share = line.Amount
				}
			}
			if share != 2375 {
				t.Errorf("\t%s\tTest 3:\tShould pay the shining star 2375, got %d.", failed, share)
			} else {
				t.Logf("\t%s\tTest 3:\tShould pay the shining star 2375.", success)
			}

			if pools := st.RetrievePools(); pools.Leader != 2375 {
				t.Errorf("\t%s\tTest 3:\tShould carry the silver half of 2375, %d left.", failed, pools.Leader)
			} else {
				t.Logf("\t%s\tTest 3:\tShould carry the silver half of 2375.", success)
			}
		}

		t.Logf("\tTest 4:\tWhen a caller without the admin role distributes.")
		{
			clock.Advance(5 * time.Second)

			_, err := st.DistributePool(database.PoolLeader, acct1)
			if !errors.Is(err, roles.ErrUnauthorized) {
				t.Errorf("\t%s\tTest 4:\tShould reject a non-admin caller: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 4:\tShould reject a non-admin caller.", success)
			}
		}
	}
}

func TestPoolNoEligible(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	serializer, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the serializer: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis:    newGenesis(),
		Serializer: serializer,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the state: %v", failed, err)
	}
	defer st.Shutdown()

	t.Log("Given the need to carry a pool when no account qualifies.")
	{
		t.Logf("\tTest 0:\tWhen distributing the leader pool with no leaders.")
		{
			if _, err := st.Register(acct1, rootAcct, 1, 3000, "pay-1"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to register: %v", failed, err)
			}
			seq := st.LatestSeq()

			clock.Advance(5 * time.Second)

			_, err := st.DistributePool(database.PoolLeader, rootAcct)
			if !errors.Is(err, state.ErrNoFunds) {
				t.Errorf("\t%s\tTest 0:\tShould reject with no qualifiers: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject with no qualifiers.", success)
			}

			if pools := st.RetrievePools(); pools.Leader != 285 {
				t.Errorf("\t%s\tTest 0:\tShould leave the pool intact at 285, got %d.", failed, pools.Leader)
			} else {
				t.Logf("\t%s\tTest 0:\tShould leave the pool intact at 285.", success)
			}

			if st.LatestSeq() != seq {
				t.Errorf("\t%s\tTest 0:\tShould not journal the rejected distribution.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould not journal the rejected distribution.", success)
			}
		}
	}
}

// faultSerializer fails journal writes on demand to exercise the halt path.
type faultSerializer struct {
	*memory.Memory
	fail bool
}

func (f *faultSerializer) Write(record database.Record) error {
	if f.fail {
		return errors.New("device full")
	}
	return f.Memory.Write(record)
}

func TestJournalFault(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	mem, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the serializer: %v", failed, err)
	}
	serializer := &faultSerializer{Memory: mem}

	st, err := state.New(state.Config{
		Genesis:    newGenesis(),
		Serializer: serializer,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the state: %v", failed, err)
	}
	defer st.Shutdown()

	t.Log("Given the need to halt the ledger when the journal fails.")
	{
		t.Logf("\tTest 0:\tWhen a journal write fails mid-operation.")
		{
			if _, err := st.Register(acct1, rootAcct, 1, 3000, "pay-1"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to register: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to register.", success)

			serializer.fail = true
			clock.Advance(5 * time.Second)

			_, err := st.Register(acct2, acct1, 1, 3000, "pay-2")
			if !errors.Is(err, state.ErrJournalFault) {
				t.Errorf("\t%s\tTest 0:\tShould surface the journal fault: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould surface the journal fault.", success)
			}

			serializer.fail = false
			clock.Advance(5 * time.Second)

			_, err = st.Withdraw(acct1, 100)
			if !errors.Is(err, state.ErrJournalFault) {
				t.Errorf("\t%s\tTest 0:\tShould stay halted after the fault: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould stay halted after the fault.", success)
			}

			if st.LatestSeq() != 1 {
				t.Errorf("\t%s\tTest 0:\tShould keep the sequence at the last journaled record.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould keep the sequence at the last journaled record.", success)
			}
		}
	}
}

func TestGuardRejectsSameEpoch(t *testing.T) {
	start := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)

	serializer, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the serializer: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis:    newGenesis(),
		Serializer: serializer,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the state: %v", failed, err)
	}
	defer st.Shutdown()

	t.Log("Given the need to validate the guard holds across operations.")
	{
		t.Logf("\tTest 0:\tWhen one account issues two calls inside one epoch.")
		{
			if _, err := st.Register(acct1, rootAcct, 1, 3000, "pay-1"); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to register: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to register.", success)

			_, err := st.Withdraw(acct1, 100)
			if !errors.Is(err, guard.ErrGuardActive) {
				t.Errorf("\t%s\tTest 0:\tShould reject the second call in the same epoch: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject the second call in the same epoch.", success)
			}
		}
	}
}
