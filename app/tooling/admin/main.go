// This program performs administrative tasks for the compensation ledger.
package main

import (
	"fmt"
	"os"

	"github.com/orphinet/ledger/app/tooling/admin/commands"
	"github.com/orphinet/ledger/foundation/ledger/database/storage/disk"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
	"github.com/orphinet/ledger/foundation/ledger/state"
	"github.com/orphinet/ledger/foundation/logger"
	"go.uber.org/zap"
)

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	gen, err := genesis.Load()
	if err != nil {
		return err
	}

	serializer, err := disk.New("zledger/journal/")
	if err != nil {
		return err
	}

	st, err := state.New(state.Config{
		Genesis:    gen,
		Serializer: serializer,
	})
	if err != nil {
		return err
	}
	defer st.Shutdown()

	return processCommands(os.Args, st)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args []string, st *state.State) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: admin [accounts|journal|pools]")
	}

	switch args[1] {
	case "accounts":
		if err := commands.Accounts(args, st); err != nil {
			return fmt.Errorf("getting accounts: %w", err)
		}
	case "journal":
		if err := commands.Journal(args, st); err != nil {
			return fmt.Errorf("getting journal: %w", err)
		}
	case "pools":
		if err := commands.Pools(args, st); err != nil {
			return fmt.Errorf("getting pools: %w", err)
		}
	}

	return nil
}
