package matrix_test

import (
	"testing"

	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/matrix"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	root = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
	actA = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	actB = "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8"
	actC = "0x8e113078adf6888B7ba84967F299F29AeCe24c55"
)

// store is a map backed tree reader for placement tests.
type store map[database.AccountID]database.Account

func (s store) Account(accountID database.AccountID) (database.Account, error) {
	account, exists := s[accountID]
	if !exists {
		return database.Account{}, database.ErrAccountNotFound
	}
	return account, nil
}

func TestPlace(t *testing.T) {
	type table struct {
		name      string
		tree      store
		sponsor   database.AccountID
		parent    database.AccountID
		side      string
		ancestors []database.AccountID
	}

	tt := []table{
		{
			name: "left slot open",
			tree: store{
				root: {AccountID: root},
			},
			sponsor:   root,
			parent:    root,
			side:      database.SideLeft,
			ancestors: []database.AccountID{root},
		},
		{
			name: "right slot open",
			tree: store{
				root: {AccountID: root, LeftChild: actA},
				actA: {AccountID: actA, MatrixParent: root, MatrixSide: database.SideLeft},
			},
			sponsor:   root,
			parent:    root,
			side:      database.SideRight,
			ancestors: []database.AccountID{root},
		},
		{
			name: "spillover to next level",
			tree: store{
				root: {AccountID: root, LeftChild: actA, RightChild: actB},
				actA: {AccountID: actA, MatrixParent: root, MatrixSide: database.SideLeft},
				actB: {AccountID: actB, MatrixParent: root, MatrixSide: database.SideRight},
			},
			sponsor:   root,
			parent:    actA,
			side:      database.SideLeft,
			ancestors: []database.AccountID{actA, root},
		},
	}

	t.Log("Given the need to validate breadth first matrix placement.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen placing under sponsor %s.", testID, tst.sponsor)
			{
				f := func(t *testing.T) {
					placement, err := matrix.Place(tst.tree, tst.sponsor)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to find a slot: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to find a slot.", success, testID)

					if placement.Parent != tst.parent || placement.Side != tst.side {
						t.Errorf("\t%s\tTest %d:\tShould place at %s/%s, got %s/%s.",
							failed, testID, tst.parent, tst.side, placement.Parent, placement.Side)
					} else {
						t.Logf("\t%s\tTest %d:\tShould place at %s/%s.", success, testID, tst.parent, tst.side)
					}

					if len(placement.Ancestors) != len(tst.ancestors) {
						t.Fatalf("\t%s\tTest %d:\tShould have %d ancestors, got %d.", failed, testID, len(tst.ancestors), len(placement.Ancestors))
					}
					for i := range tst.ancestors {
						if placement.Ancestors[i] != tst.ancestors[i] {
							t.Errorf("\t%s\tTest %d:\tShould have ancestor %s at %d, got %s.", failed, testID, tst.ancestors[i], i, placement.Ancestors[i])
						}
					}
					t.Logf("\t%s\tTest %d:\tShould have the matrix ancestor chain.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func TestSponsorChain(t *testing.T) {
	t.Log("Given the need to validate the sponsor chain walk.")
	{
		t.Logf("\tTest 0:\tWhen walking a three deep sponsorship.")
		{
			tree := store{
				root: {AccountID: root},
				actA: {AccountID: actA, Sponsor: root},
				actB: {AccountID: actB, Sponsor: actA},
				actC: {AccountID: actC, Sponsor: actB},
			}

			chain, err := matrix.SponsorChain(tree, actB, 30)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to walk the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to walk the chain.", success)

			want := []database.AccountID{actB, actA, root}
			if len(chain) != len(want) {
				t.Fatalf("\t%s\tTest 0:\tShould have %d ancestors, got %d.", failed, len(want), len(chain))
			}
			for i := range want {
				if chain[i] != want[i] {
					t.Errorf("\t%s\tTest 0:\tShould have %s at level %d, got %s.", failed, want[i], i+1, chain[i])
				}
			}
			t.Logf("\t%s\tTest 0:\tShould list ancestors closest first.", success)

			capped, err := matrix.SponsorChain(tree, actC, 2)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to walk a capped chain: %v", failed, err)
			}
			if len(capped) != 2 || capped[0] != actC || capped[1] != actB {
				t.Errorf("\t%s\tTest 0:\tShould stop at the configured depth.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould stop at the configured depth.", success)
			}
		}
	}
}
