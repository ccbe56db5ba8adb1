package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/spf13/cobra"
)

type info struct {
	Account       string `json:"account"`
	Name          string `json:"name"`
	Tier          uint8  `json:"tier"`
	Status        string `json:"status"`
	TotalInvested uint64 `json:"total_invested"`
	TotalEarnings uint64 `json:"total_earnings"`
	Withdrawable  uint64 `json:"withdrawable"`
	PaidOut       uint64 `json:"paid_out"`
	CapRoom       uint64 `json:"cap_room"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	accountID := database.PublicKeyToAccountID(privateKey.PublicKey)
	fmt.Println("For Account:", accountID)

	resp, err := http.Get(fmt.Sprintf("%s/v1/accounts/list/%s", url, accountID))
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	decoder := json.NewDecoder(resp.Body)
	var accounts []info
	if err := decoder.Decode(&accounts); err != nil {
		log.Fatal(err)
	}

	if len(accounts) > 0 {
		fmt.Println("Status:      ", accounts[0].Status)
		fmt.Println("Tier:        ", accounts[0].Tier)
		fmt.Println("Invested:    ", accounts[0].TotalInvested)
		fmt.Println("Earned:      ", accounts[0].TotalEarnings)
		fmt.Println("Withdrawable:", accounts[0].Withdrawable)
		fmt.Println("Paid out:    ", accounts[0].PaidOut)
		fmt.Println("Cap room:    ", accounts[0].CapRoom)
	}
}
