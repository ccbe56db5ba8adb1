package state

import (
	"fmt"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// DistributePool drains the specified pool across its eligible accounts.
// The call is atomic: every share credits and the distribution timestamp
// advances, or nothing happens. Help pool shares are pro-rata by total
// investment across recently active accounts; the leader pool splits 50/50
// between the two leader ranks with equal shares inside a rank.
func (s *State) DistributePool(poolID string, caller database.AccountID) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpDistributePool, caller)
	record.Pool = poolID

	return s.commit(record)
}

func (s *State) applyDistributePool(record database.Record) ([]database.Line, error) {
	pools := s.db.PoolBalances()

	var poolBalance uint64
	var last time.Time
	var interval time.Duration

	switch record.Pool {
	case database.PoolHelp:
		poolBalance = pools.Help
		last = pools.LastHelpDistribution
		interval = time.Duration(s.genesis.HelpIntervalSeconds) * time.Second
	case database.PoolLeader:
		poolBalance = pools.Leader
		last = pools.LastLeaderDistribution
		interval = time.Duration(s.genesis.LeaderIntervalSeconds) * time.Second
	default:
		return nil, fmt.Errorf("unknown pool %q", record.Pool)
	}

	if !last.IsZero() && record.Time.Before(last.Add(interval)) {
		return nil, ErrTooEarly
	}
	if poolBalance == 0 {
		return nil, ErrNoFunds
	}

	var credits []database.PoolCredit
	var err error

	switch record.Pool {
	case database.PoolHelp:
		credits, err = s.planHelpShares(poolBalance, record.Time)
	case database.PoolLeader:
		credits, err = s.planLeaderShares(poolBalance)
	}
	if err != nil {
		return nil, err
	}

	// No eligible accounts leaves the pool untouched for the next cycle
	// instead of committing an empty distribution and burning the interval.
	if len(credits) == 0 {
		return nil, ErrNoFunds
	}

	var distributed uint64
	for _, credit := range credits {
		distributed += credit.Amount
	}
	leftover := poolBalance - distributed

	lines, err := s.db.DistributePool(record.Pool, credits, leftover, record.Time)
	if err != nil {
		return nil, err
	}

	s.evHandler("state: distributed %s pool: %d across %d accounts, %d carried", record.Pool, distributed, len(credits), leftover)

	return lines, nil
}

// planHelpShares computes the pro-rata help pool shares for active accounts
// seen inside the activity window. Capped accounts are excluded entirely.
func (s *State) planHelpShares(poolBalance uint64, now time.Time) ([]database.PoolCredit, error) {
	window := time.Duration(s.genesis.HelpActivitySeconds) * time.Second
	cutoff := now.Add(-window)

	accounts := s.db.CopyAccounts()

	var eligible []database.AccountID
	var totalInvested uint64
	for _, id := range s.db.AccountIDs() {
		account := accounts[id]
		if account.Status != database.StatusActive {
			continue
		}
		if account.LastActivity.Before(cutoff) {
			continue
		}
		eligible = append(eligible, id)
		totalInvested += account.TotalInvested
	}

	if len(eligible) == 0 || totalInvested == 0 {
		return nil, nil
	}

	credits := make([]database.PoolCredit, 0, len(eligible))
	for _, id := range eligible {
		share, err := database.MulDiv(poolBalance, accounts[id].TotalInvested, totalInvested)
		if err != nil {
			return nil, err
		}
		if share == 0 {
			continue
		}
		credits = append(credits, database.PoolCredit{AccountID: id, Amount: share})
	}

	return credits, nil
}

// planLeaderShares splits the leader pool 50/50 between silver and shining
// star ranks with equal shares inside each rank. A rank with no qualifiers
// leaves its half in the pool for the next cycle.
func (s *State) planLeaderShares(poolBalance uint64) ([]database.PoolCredit, error) {
	accounts := s.db.CopyAccounts()

	var shining, silver []database.AccountID
	for _, id := range s.db.AccountIDs() {
		account := accounts[id]
		if account.Status != database.StatusActive {
			continue
		}

		switch {
		case account.TeamSize >= s.genesis.SilverStar.TeamSize && account.DirectReferralCount >= s.genesis.SilverStar.MinDirects:
			silver = append(silver, id)
		case account.TeamSize >= s.genesis.ShiningStar.TeamSize && account.DirectReferralCount >= s.genesis.ShiningStar.MinDirects:
			shining = append(shining, id)
		}
	}

	half := poolBalance / 2

	var credits []database.PoolCredit
	for _, rank := range [][]database.AccountID{shining, silver} {
		if len(rank) == 0 {
			continue
		}
		share := half / uint64(len(rank))
		if share == 0 {
			continue
		}
		for _, id := range rank {
			credits = append(credits, database.PoolCredit{AccountID: id, Amount: share})
		}
	}

	return credits, nil
}
