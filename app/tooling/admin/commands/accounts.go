// Package commands implements the admin tool's subcommands against a
// journal-rebuilt ledger state.
package commands

import (
	"fmt"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/state"
)

// Accounts prints the current set of account balances.
func Accounts(args []string, st *state.State) error {
	var onlyAct string
	if len(args) == 3 {
		onlyAct = args[2]
	}

	fmt.Printf("Latest Seq: %d\n\n", st.LatestSeq())

	for _, accountID := range st.AccountIDs() {
		if onlyAct != "" && onlyAct != string(accountID) {
			continue
		}

		account, err := st.QueryAccount(accountID)
		if err != nil {
			return err
		}

		fmt.Printf("Account: %s  Status: %s  Tier: %d  Invested: %d  Earned: %d  Withdrawable: %d\n",
			account.AccountID, account.Status, account.PackageTier,
			account.TotalInvested, account.TotalEarnings, account.Withdrawable)
	}

	return nil
}

// Pools prints the current pool and sink balances.
func Pools(args []string, st *state.State) error {
	pools := st.RetrievePools()

	fmt.Printf("Treasury: %d\n", pools.Treasury)
	fmt.Printf("Reserve:  %d\n", pools.Reserve)
	fmt.Printf("Leader:   %d  last distributed %v\n", pools.Leader, pools.LastLeaderDistribution)
	fmt.Printf("Help:     %d  last distributed %v\n", pools.Help, pools.LastHelpDistribution)

	return nil
}

// filterRecord reports whether the record involves the account.
func filterRecord(record database.Record, acct string) bool {
	if acct == "" {
		return true
	}
	return string(record.Account) == acct || string(record.Sponsor) == acct
}
