package guard_test

import (
	"errors"
	"testing"

	"github.com/orphinet/ledger/foundation/ledger/guard"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const acct = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"

func TestGuard(t *testing.T) {
	t.Log("Given the need to validate the one mutation per epoch guard.")
	{
		t.Logf("\tTest 0:\tWhen the same account mutates twice in one epoch.")
		{
			g := guard.New()

			if err := g.Check(acct, 100); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould admit the first call: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould admit the first call.", success)

			err := g.Check(acct, 100)
			if !errors.Is(err, guard.ErrGuardActive) {
				t.Errorf("\t%s\tTest 0:\tShould reject the second call in the same epoch: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould reject the second call in the same epoch.", success)
			}

			if err := g.Check(acct, 101); err != nil {
				t.Errorf("\t%s\tTest 0:\tShould admit a call in the next epoch: %v", failed, err)
			} else {
				t.Logf("\t%s\tTest 0:\tShould admit a call in the next epoch.", success)
			}

			epoch, exists := g.LastEpoch(acct)
			if !exists || epoch != 101 {
				t.Errorf("\t%s\tTest 0:\tShould report the last admitted epoch.", failed)
			} else {
				t.Logf("\t%s\tTest 0:\tShould report the last admitted epoch.", success)
			}
		}
	}
}
