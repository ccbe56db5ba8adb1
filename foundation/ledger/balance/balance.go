// Package balance computes the split of a withdrawal request into the admin
// fee, the cash payout, and the forced reinvestment.
package balance

import (
	"fmt"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Split is the outcome of a withdrawal calculation. Payout leaves the ledger
// as cash; Reinvestment re-enters the distribution engine as a new package
// purchase for the same account.
type Split struct {
	Amount       uint64
	AdminFee     uint64
	Net          uint64
	RateBps      uint64
	Payout       uint64
	Reinvestment uint64
}

// Withdraw computes the split for the specified amount. The payout rate is
// progressive in the account's direct referral count.
func Withdraw(gen genesis.Genesis, amount uint64, directReferrals int) (Split, error) {
	if amount == 0 {
		return Split{}, fmt.Errorf("zero withdrawal amount")
	}

	adminFee, err := database.MulBps(amount, gen.WithdrawalFeeBps)
	if err != nil {
		return Split{}, err
	}
	net := amount - adminFee

	rate := gen.WithdrawalRateBps(directReferrals)
	payout, err := database.MulBps(net, rate)
	if err != nil {
		return Split{}, err
	}

	return Split{
		Amount:       amount,
		AdminFee:     adminFee,
		Net:          net,
		RateBps:      rate,
		Payout:       payout,
		Reinvestment: net - payout,
	}, nil
}
