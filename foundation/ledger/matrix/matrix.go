// Package matrix implements binary tree placement for the referral matrix.
// Placement walks the matrix tree; commissions walk the sponsor chain. The
// two relations are deliberately kept separate.
package matrix

import (
	"errors"

	"github.com/orphinet/ledger/foundation/ledger/database"
)

// ErrNoOpenSlot indicates the placement search exhausted the subtree without
// finding an open child slot. With level-order spillover this only happens
// if the tree reader is inconsistent.
var ErrNoOpenSlot = errors.New("no open matrix slot found")

// Reader provides the matrix package read access to placed accounts.
type Reader interface {
	Account(accountID database.AccountID) (database.Account, error)
}

// Placement describes the slot chosen for a new account and the matrix
// ancestors whose team sizes grow by the placement.
type Placement struct {
	Parent    database.AccountID
	Side      string
	Ancestors []database.AccountID // Matrix chain from parent up to the root.
}

// Place finds the slot for a new account under the sponsor's node using
// breadth-first placement: the sponsor's left child, then right child, then
// level order through the sponsor's subtree until an open slot appears
// (spillover).
func Place(r Reader, sponsorID database.AccountID) (Placement, error) {
	queue := []database.AccountID{sponsorID}

	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		parent, err := r.Account(parentID)
		if err != nil {
			return Placement{}, err
		}

		if parent.LeftChild.IsZero() {
			return newPlacement(r, parentID, database.SideLeft)
		}
		if parent.RightChild.IsZero() {
			return newPlacement(r, parentID, database.SideRight)
		}

		queue = append(queue, parent.LeftChild, parent.RightChild)
	}

	return Placement{}, ErrNoOpenSlot
}

// newPlacement builds the placement value including the ancestor chain that
// receives the team size updates.
func newPlacement(r Reader, parentID database.AccountID, side string) (Placement, error) {
	ancestors, err := Ancestors(r, parentID)
	if err != nil {
		return Placement{}, err
	}

	return Placement{
		Parent:    parentID,
		Side:      side,
		Ancestors: append([]database.AccountID{parentID}, ancestors...),
	}, nil
}

// Ancestors walks the matrix-parent chain from the specified account up to
// the root, excluding the account itself.
func Ancestors(r Reader, accountID database.AccountID) ([]database.AccountID, error) {
	var chain []database.AccountID

	current := accountID
	for {
		account, err := r.Account(current)
		if err != nil {
			return nil, err
		}
		if account.MatrixParent.IsZero() {
			return chain, nil
		}
		chain = append(chain, account.MatrixParent)
		current = account.MatrixParent
	}
}

// SponsorChain walks the sponsor relation from the specified sponsor upward,
// returning at most max ancestors with the closest first. This chain, not
// the matrix tree, is what the level and upline bonuses pay into.
func SponsorChain(r Reader, sponsorID database.AccountID, max int) ([]database.AccountID, error) {
	chain := make([]database.AccountID, 0, max)

	current := sponsorID
	for len(chain) < max && !current.IsZero() {
		chain = append(chain, current)

		account, err := r.Account(current)
		if err != nil {
			return nil, err
		}
		current = account.Sponsor
	}

	return chain, nil
}
