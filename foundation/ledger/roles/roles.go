// Package roles maps governance operations to the accounts allowed to call
// them. A single capability table replaces scattered address-equality
// checks.
package roles

import (
	"errors"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/genesis"
)

// Role names recognized in the genesis file.
const (
	RoleAdmin     = "admin"
	RoleProposer  = "proposer"
	RoleSigner    = "signer"
	RoleEmergency = "emergency"
)

// ErrUnauthorized indicates the actor does not hold the role the operation
// requires.
var ErrUnauthorized = errors.New("unauthorized")

// opRoles maps every role-gated operation to its required role. Operations
// not listed here are open to any registered participant.
var opRoles = map[string]string{
	database.OpDistributePool:   RoleAdmin,
	database.OpProposeUpgrade:   RoleProposer,
	database.OpApproveUpgrade:   RoleSigner,
	database.OpCancelUpgrade:    RoleSigner,
	database.OpExecuteUpgrade:   RoleProposer,
	database.OpEmergencyUpgrade: RoleEmergency,
}

// Table holds the accounts granted each role.
type Table struct {
	grants map[string]map[database.AccountID]bool
}

// New constructs the capability table from the genesis role configuration.
func New(gen genesis.Genesis) *Table {
	grants := make(map[string]map[database.AccountID]bool, len(gen.Roles))
	for role, accounts := range gen.Roles {
		grants[role] = make(map[database.AccountID]bool, len(accounts))
		for _, account := range accounts {
			grants[role][database.AccountID(account)] = true
		}
	}

	return &Table{grants: grants}
}

// Check verifies the actor may invoke the operation. Operations without a
// role requirement always pass.
func (t *Table) Check(op string, actor database.AccountID) error {
	role, gated := opRoles[op]
	if !gated {
		return nil
	}

	if !t.grants[role][actor] {
		return ErrUnauthorized
	}
	return nil
}

// Holds reports whether the account has been granted the role.
func (t *Table) Holds(role string, account database.AccountID) bool {
	return t.grants[role][account]
}
