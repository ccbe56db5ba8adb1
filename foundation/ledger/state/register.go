package state

import (
	"fmt"
	"time"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/distribute"
	"github.com/orphinet/ledger/foundation/ledger/matrix"
)

// Register places a new account under the sponsor, applies the package
// payment through the distribution engine, and returns the receipt
// itemizing where every cent went.
func (s *State) Register(accountID, sponsorID database.AccountID, tier uint8, amount uint64, paymentRef string) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpRegister, accountID)
	record.Sponsor = sponsorID
	record.Tier = tier
	record.Amount = amount
	record.PaymentRef = paymentRef

	return s.commit(record)
}

// UpgradePackage moves a registered account to a higher tier, distributing
// the new package payment across the same commission structure.
func (s *State) UpgradePackage(accountID database.AccountID, tier uint8, amount uint64, paymentRef string) (database.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := s.newRecord(database.OpUpgradePackage, accountID)
	record.Tier = tier
	record.Amount = amount
	record.PaymentRef = paymentRef

	return s.commit(record)
}

// =============================================================================

func (s *State) applyRegister(record database.Record) ([]database.Line, error) {
	if !record.Account.IsAccountID() {
		return nil, fmt.Errorf("malformed account id %q", record.Account)
	}
	if s.db.HasAccount(record.Account) {
		return nil, ErrAlreadyRegistered
	}

	price, err := s.genesis.PackagePrice(record.Tier)
	if err != nil {
		return nil, ErrInvalidTier
	}
	if record.Amount != price {
		return nil, ErrInsufficientPayment
	}

	sponsor, err := s.db.Account(record.Sponsor)
	if err != nil || sponsor.Status != database.StatusActive {
		return nil, ErrInvalidSponsor
	}

	// The sponsor chain is fixed at registration and pays the level and
	// upline bonuses for the life of the account.
	upline, err := matrix.SponsorChain(s.db, record.Sponsor, s.genesis.UplineLevels)
	if err != nil {
		return nil, err
	}

	placement, err := matrix.Place(s.db, record.Sponsor)
	if err != nil {
		return nil, err
	}

	account := database.Account{
		AccountID:     record.Account,
		Sponsor:       record.Sponsor,
		PackageTier:   record.Tier,
		TotalInvested: record.Amount,
		UplineChain:   upline,
		CapMultiplier: s.genesis.CapMultiplier,
		Status:        database.StatusActive,
	}
	if err := s.db.CreateAccount(account); err != nil {
		return nil, ErrAlreadyRegistered
	}

	if err := s.db.SetChild(placement.Parent, placement.Side, record.Account); err != nil {
		return nil, err
	}
	for _, ancestorID := range placement.Ancestors {
		s.db.IncTeamSize(ancestorID)
	}
	s.db.IncDirectReferrals(record.Sponsor)

	s.evHandler("state: registered %s under sponsor %s at slot %s/%s", record.Account, record.Sponsor, placement.Parent, placement.Side)

	return s.distributePayment(record.Amount, upline, record.Time)
}

func (s *State) applyUpgradePackage(record database.Record) ([]database.Line, error) {
	account, err := s.db.Account(record.Account)
	if err != nil {
		return nil, ErrNotRegistered
	}

	price, err := s.genesis.PackagePrice(record.Tier)
	if err != nil {
		return nil, ErrInvalidTier
	}
	if record.Tier <= account.PackageTier {
		return nil, ErrTierNotHigher
	}
	if record.Amount != price {
		return nil, ErrInsufficientPayment
	}

	if err := s.db.AddInvestment(record.Account, record.Amount); err != nil {
		return nil, err
	}
	if err := s.db.SetTier(record.Account, record.Tier); err != nil {
		return nil, err
	}

	s.evHandler("state: upgraded %s to tier %d", record.Account, record.Tier)

	return s.distributePayment(record.Amount, account.UplineChain, record.Time)
}

// distributePayment plans and applies the commission split for a package
// payment. The plan is verified to conserve the full amount before any
// credit is written.
func (s *State) distributePayment(amount uint64, upline []database.AccountID, now time.Time) ([]database.Line, error) {
	plan, err := s.planner.Plan(amount, upline)
	if err != nil {
		return nil, err
	}
	if plan.Total() != amount {
		return nil, fmt.Errorf("%w: plan moves %d of %d", ErrConservation, plan.Total(), amount)
	}

	lines := make([]database.Line, 0, len(plan.Levels)+len(plan.Uplines)+6)

	if err := s.db.AddTreasury(plan.AdminFee); err != nil {
		return nil, err
	}
	lines = append(lines, database.Line{Kind: database.LineAdminFee, Amount: plan.AdminFee})

	if !plan.Sponsor.AccountID.IsZero() {
		line, excessLine, err := s.applyCredit(database.LineSponsor, plan.Sponsor, now)
		if err != nil {
			return nil, err
		}
		lines = appendCredit(lines, line, excessLine)
	}

	for _, credit := range plan.Levels {
		line, excessLine, err := s.applyCredit(database.LineLevel, credit, now)
		if err != nil {
			return nil, err
		}
		lines = appendCredit(lines, line, excessLine)
	}

	for _, credit := range plan.Uplines {
		line, excessLine, err := s.applyCredit(database.LineUpline, credit, now)
		if err != nil {
			return nil, err
		}
		lines = appendCredit(lines, line, excessLine)
	}

	if err := s.db.AddLeaderPool(plan.LeaderPool); err != nil {
		return nil, err
	}
	lines = append(lines, database.Line{Kind: database.LineLeaderPool, Amount: plan.LeaderPool})

	if err := s.db.AddHelpPool(plan.HelpPool); err != nil {
		return nil, err
	}
	lines = append(lines, database.Line{Kind: database.LineHelpPool, Amount: plan.HelpPool})

	if plan.Shortfall > 0 {
		if err := s.db.AddSink(plan.ShortfallSink, plan.Shortfall); err != nil {
			return nil, err
		}
		lines = append(lines, database.Line{Kind: database.LineRemainder, Amount: plan.Shortfall})
	}
	if plan.Remainder > 0 {
		if err := s.db.AddSink(plan.RemainderSink, plan.Remainder); err != nil {
			return nil, err
		}
		lines = append(lines, database.Line{Kind: database.LineRemainder, Amount: plan.Remainder})
	}

	return lines, nil
}

// applyCredit runs one planned credit through the cap state machine and
// reports both the credited and redirected portions.
func (s *State) applyCredit(kind string, credit distribute.Credit, now time.Time) (database.Line, database.Line, error) {
	credited, excess, err := s.db.Credit(credit.AccountID, credit.Amount, now)
	if err != nil {
		return database.Line{}, database.Line{}, err
	}

	line := database.Line{Kind: kind, Account: credit.AccountID, Level: credit.Level, Amount: credited}

	var excessLine database.Line
	if excess > 0 {
		excessLine = database.Line{Kind: database.LineCapExcess, Account: credit.AccountID, Amount: excess}
	}

	return line, excessLine, nil
}

// appendCredit folds a credit and its optional excess into the line list,
// dropping zero-value credit lines that carry no information.
func appendCredit(lines []database.Line, line, excessLine database.Line) []database.Line {
	if line.Amount > 0 || excessLine.Amount == 0 {
		lines = append(lines, line)
	}
	if excessLine.Amount > 0 {
		lines = append(lines, excessLine)
	}
	return lines
}
