package state

import (
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
	"github.com/orphinet/ledger/foundation/ledger/governor"
	"github.com/orphinet/ledger/foundation/ledger/matrix"
)

// QueryAccount returns a copy of the specified account.
func (s *State) QueryAccount(accountID database.AccountID) (database.Account, error) {
	return s.db.Account(accountID)
}

// RetrieveAccounts returns a copy of every account keyed by id.
func (s *State) RetrieveAccounts() map[database.AccountID]database.Account {
	return s.db.CopyAccounts()
}

// AccountIDs returns every registered account id in a stable order.
func (s *State) AccountIDs() []database.AccountID {
	return s.db.AccountIDs()
}

// RetrievePools returns the current pool and sink balances.
func (s *State) RetrievePools() database.Pools {
	return s.db.PoolBalances()
}

// RetrieveGenesis returns the genesis information the ledger was started with.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// LatestSeq returns the sequence number of the last committed record.
func (s *State) LatestSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSeq
}

// QueryRecord retrieves the journal record with the specified sequence number.
func (s *State) QueryRecord(seq uint64) (database.Record, error) {
	return s.serializer.GetRecord(seq)
}

// QueryDownline walks the matrix subtree under the account in level order
// and returns the member ids, nearest first.
func (s *State) QueryDownline(accountID database.AccountID, maxDepth int) ([]database.AccountID, error) {
	account, err := s.db.Account(accountID)
	if err != nil {
		return nil, ErrNotRegistered
	}

	type entry struct {
		id    database.AccountID
		depth int
	}

	var members []database.AccountID
	queue := []entry{{account.AccountID, 0}}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		node, err := s.db.Account(next.id)
		if err != nil {
			return nil, err
		}
		if next.depth > 0 {
			members = append(members, next.id)
		}
		if maxDepth > 0 && next.depth == maxDepth {
			continue
		}

		if !node.LeftChild.IsZero() {
			queue = append(queue, entry{node.LeftChild, next.depth + 1})
		}
		if !node.RightChild.IsZero() {
			queue = append(queue, entry{node.RightChild, next.depth + 1})
		}
	}

	return members, nil
}

// QuerySponsorChain returns the account's upline by sponsorship, nearest
// first, up to the configured number of levels.
func (s *State) QuerySponsorChain(accountID database.AccountID) ([]database.AccountID, error) {
	account, err := s.db.Account(accountID)
	if err != nil {
		return nil, ErrNotRegistered
	}

	return matrix.SponsorChain(s.db, account.Sponsor, s.genesis.UplineLevels)
}

// QueryLastEpoch reports the last guard epoch recorded for the account.
func (s *State) QueryLastEpoch(accountID database.AccountID) (uint64, bool) {
	return s.guard.LastEpoch(accountID)
}

// QueryProposal returns the pending proposal for the implementation
// reference.
func (s *State) QueryProposal(implRef string) (governor.Proposal, error) {
	return s.governor.Proposal(implRef)
}

// RetrieveProposals returns every live upgrade proposal.
func (s *State) RetrieveProposals() []governor.Proposal {
	return s.governor.Proposals()
}

// RetrieveEmergencyHistory returns the append-only emergency upgrade record.
func (s *State) RetrieveEmergencyHistory() []governor.EmergencyRecord {
	return s.governor.EmergencyHistory()
}

// CurrentImplementation returns the implementation reference currently live.
func (s *State) CurrentImplementation() string {
	return s.governor.Current()
}
