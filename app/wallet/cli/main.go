package main

import "github.com/orphinet/ledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
