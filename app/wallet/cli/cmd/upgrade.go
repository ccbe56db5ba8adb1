package cmd

import (
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/voucher"
	"github.com/spf13/cobra"
)

// upgradeCmd represents the upgrade command
var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade this wallet's account to a higher package tier",
	Run:   upgradeRun,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	upgradeCmd.Flags().Uint8VarP(&tier, "tier", "t", 2, "Package tier to purchase.")
	upgradeCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Payment in cents. Must match the tier price.")
	upgradeCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Unique nonce for the payment voucher.")
}

func upgradeRun(cmd *cobra.Command, args []string) {
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
		Tier    uint8                 `json:"tier"`
		Payment voucher.SignedVoucher `json:"payment"`
	}{
		Tier:    tier,
		Payment: sv,
	}

	post(fmt.Sprintf("%s/v1/upgrade", url), req)
}
