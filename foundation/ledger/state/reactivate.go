package state

import (
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/reactivate"
)

// Reactivate lifts a capped account back to active via one of the three
// strategies. Time-based and tiered fees go to the treasury; the
// upgrade-based purchase is a real package payment and distributes like
// one.
func (s *State) Reactivate(accountID database.AccountID, strategy string, payment uint64, paymentRef string) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpReactivate, accountID)
	record.Strategy = strategy
	record.Amount = payment
	record.PaymentRef = paymentRef

	return s.commit(record)
}

func (s *State) applyReactivate(record database.Record) ([]database.Line, error) {
	account, err := s.db.Account(record.Account)
	if err != nil {
		return nil, ErrNotRegistered
	}

	outcome, err := reactivate.Evaluate(s.genesis, account, record.Strategy, record.Amount, record.Time)
	if err != nil {
		return nil, err
	}

	var lines []database.Line

	if outcome.Fee > 0 {
		if err := s.db.AddTreasury(outcome.Fee); err != nil {
			return nil, err
		}
		lines = append(lines, database.Line{Kind: database.LineFee, Account: record.Account, Amount: outcome.Fee})
	}

	if outcome.Purchase > 0 {
		if err := s.db.AddInvestment(record.Account, outcome.Purchase); err != nil {
			return nil, err
		}
		if err := s.db.SetTier(record.Account, outcome.NewTier); err != nil {
			return nil, err
		}

		purchaseLines, err := s.distributePayment(outcome.Purchase, account.UplineChain, record.Time)
		if err != nil {
			return nil, err
		}
		lines = append(lines, purchaseLines...)
	}

	if err := s.db.ApplyReactivation(record.Account, outcome.Strategy, outcome.CapMultiplier, outcome.CooldownExpiry); err != nil {
		return nil, err
	}

	return lines, nil
}
