package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/voucher"
	"github.com/spf13/cobra"
)

var strategy string

// reactivateCmd represents the reactivate command
var reactivateCmd = &cobra.Command{
	Use:   "reactivate",
	Short: "Reactivate this wallet's capped account",
	Run:   reactivateRun,
}

func init() {
	rootCmd.AddCommand(reactivateCmd)
	reactivateCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	reactivateCmd.Flags().StringVarP(&strategy, "strategy", "s", "time-based", "Strategy: time-based, tiered, or upgrade-based.")
	reactivateCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Payment in cents.")
	reactivateCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Unique nonce for the payment voucher.")
}

func reactivateRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	sv, err := voucher.Voucher{
		Account: database.PublicKeyToAccountID(privateKey.PublicKey),
		Amount:  amount,
		Nonce:   nonce,
	}.Sign(privateKey)
	if err != nil {
		log.Fatal(err)
	}

	req := struct {
		Strategy string                `json:"strategy"`
		Payment  voucher.SignedVoucher `json:"payment"`
	}{
		Strategy: strategy,
		Payment:  sv,
	}

	post(fmt.Sprintf("%s/v1/reactivate", url), req)
}
