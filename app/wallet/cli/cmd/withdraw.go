package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/voucher"
	"github.com/spf13/cobra"
)

// withdrawCmd represents the withdraw command
var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw from this wallet's balance",
	Run:   withdrawRun,
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
	withdrawCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	withdrawCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to withdraw in cents.")
	withdrawCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Unique nonce for the authorization.")
}

func withdrawRun(cmd *cobra.Command, args []string) {
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

	post(fmt.Sprintf("%s/v1/withdraw", url), sv)
}
