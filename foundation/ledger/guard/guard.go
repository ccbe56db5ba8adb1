// Package guard implements the per-account mutation guard. One mutating
// call per account per epoch: a second call from the same account inside
// the same epoch is rejected before any engine runs.
//
// The guard only prevents same-epoch self-collision. It is not an ordering
// guarantee and does not prevent colluding accounts from interleaving calls
// across epochs.
package guard

import (
	"errors"
	"sync"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// ErrGuardActive indicates the account already mutated state in the current
// epoch.
var ErrGuardActive = errors.New("mutation guard active")

// Guard tracks the last mutation epoch per account.
type Guard struct {
	mu   sync.Mutex
	last map[database.AccountID]uint64
}

// New constructs a guard for use.
func New() *Guard {
	return &Guard{
		last: make(map[database.AccountID]uint64),
	}
}

// Check admits the account for the specified epoch, recording it as the
// account's last mutation epoch. The check and the update are a single
// atomic step.
func (g *Guard) Check(accountID database.AccountID, epoch uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, exists := g.last[accountID]; exists && last == epoch {
		return ErrGuardActive
	}

	g.last[accountID] = epoch
	return nil
}

// LastEpoch returns the last admitted epoch for the account.
func (g *Guard) LastEpoch(accountID database.AccountID) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	epoch, exists := g.last[accountID]
	return epoch, exists
}
