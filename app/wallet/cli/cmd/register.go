package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/voucher"
	"github.com/spf13/cobra"
)

var (
	url     string
	sponsor string
	tier    uint8
	amount  uint64
	nonce   uint64
)

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this wallet's account in the matrix",
	Run:   registerRun,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	registerCmd.Flags().StringVarP(&sponsor, "sponsor", "s", "", "Account of the sponsor.")
	registerCmd.Flags().Uint8VarP(&tier, "tier", "t", 1, "Package tier to purchase.")
	registerCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Payment in cents. Must match the tier price.")
	registerCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Unique nonce for the payment voucher.")
}

func registerRun(cmd *cobra.Command, args []string) {
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
		Sponsor string                `json:"sponsor"`
		Tier    uint8                 `json:"tier"`
		Payment voucher.SignedVoucher `json:"payment"`
	}{
		Sponsor: sponsor,
		Tier:    tier,
		Payment: sv,
	}

	post(fmt.Sprintf("%s/v1/register", url), req)
}

// post sends the request and prints the raw receipt.
func post(endpoint string, req any) {
	data, err := json.Marshal(req)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := http.Post(endpoint, "application/json", bytes.NewBuffer(data))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(body))
}
