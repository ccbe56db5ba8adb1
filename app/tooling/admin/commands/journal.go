package commands

import (
	"fmt"

	"github.com/orphinet/ledger/foundation/ledger/state"
)

// Journal prints the journal records, optionally filtered to one account.
func Journal(args []string, st *state.State) error {
	var acct string
	if len(args) == 3 {
		acct = args[2]
	}

	for seq := uint64(1); seq <= st.LatestSeq(); seq++ {
		record, err := st.QueryRecord(seq)
		if err != nil {
			return err
		}

		if !filterRecord(record, acct) {
			continue
		}

		fmt.Printf("Seq: %d  Epoch: %d  Op: %s  Account: %s  Amount: %d  Time: %v\n",
			record.Seq, record.Epoch, record.Op, record.Account, record.Amount, record.Time)
	}

	return nil
}
