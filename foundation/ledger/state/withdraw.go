package state

import (
	"github.com/orphinet/ledger/foundation/ledger/balance"
	"github.com/orphinet/ledger/foundation/ledger/database"
)

// Withdraw converts a withdrawal request into a cash payout and a forced
// reinvestment. The reinvested part re-enters the distribution engine as a
// package payment for the same account; only the payout leaves the ledger.
func (s *State) Withdraw(accountID database.AccountID, amount uint64) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpWithdraw, accountID)
	record.Amount = amount

	return s.commit(record)
}

func (s *State) applyWithdraw(record database.Record) ([]database.Line, error) {
	account, err := s.db.Account(record.Account)
	if err != nil {
		return nil, ErrNotRegistered
	}

	split, err := balance.Withdraw(s.genesis, record.Amount, account.DirectReferralCount)
	if err != nil {
		return nil, err
	}

	// The debit enforces the balance check: a withdrawal larger than the
	// balance is rejected outright, never truncated.
	if err := s.db.ApplyWithdrawal(record.Account, split.Amount, split.Payout); err != nil {
		return nil, err
	}

	if err := s.db.AddTreasury(split.AdminFee); err != nil {
		return nil, err
	}

	lines := []database.Line{
		{Kind: database.LineAdminFee, Amount: split.AdminFee},
		{Kind: database.LinePayout, Account: record.Account, Amount: split.Payout},
		{Kind: database.LineReinvest, Account: record.Account, Amount: split.Reinvestment},
	}

	if split.Reinvestment > 0 {
		if err := s.db.AddInvestment(record.Account, split.Reinvestment); err != nil {
			return nil, err
		}

		reinvestLines, err := s.distributePayment(split.Reinvestment, account.UplineChain, record.Time)
		if err != nil {
			return nil, err
		}
		lines = append(lines, reinvestLines...)
	}

	s.evHandler("state: withdrawal %s: amount %d, payout %d, reinvested %d", record.Account, split.Amount, split.Payout, split.Reinvestment)

	return lines, nil
}
