package digest_test

import (
	"testing"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/digest"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Ordering(t *testing.T) {
	t.Log("Given the need for a total order over digests.")
	{
		tt := []struct {
			name string
			a    digest.Digest
			b    digest.Digest
			cmp  int
		}{
			{"equal values", digest.FromBytes([]byte{1, 2}), digest.FromBytes([]byte{1, 2}), 0},
			{"shorter first", digest.FromBytes([]byte{9}), digest.FromBytes([]byte{1, 2}), -1},
			{"lexicographic", digest.FromBytes([]byte{1, 2}), digest.FromBytes([]byte{1, 3}), -1},
			{"reverse", digest.FromBytes([]byte{2, 0}), digest.FromBytes([]byte{1, 9}), 1},
		}

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen comparing %s.", testID, tst.name)
			{
				if got := tst.a.Compare(tst.b); got != tst.cmp {
					t.Fatalf("\t%s\tTest %d:\tShould compare as %d, got %d.", failed, testID, tst.cmp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould compare as %d.", success, testID, tst.cmp)

				if got := tst.b.Compare(tst.a); got != -tst.cmp {
					t.Fatalf("\t%s\tTest %d:\tShould compare symmetrically.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould compare symmetrically.", success, testID)
			}
		}
	}
}

func Test_HashAndKeys(t *testing.T) {
	t.Log("Given the need to use digests as map keys.")
	{
		t.Logf("\tTest 0:\tWhen hashing the same and different content.")
		{
			a := digest.Hash([]byte("content"))
			b := digest.Hash([]byte("content"))
			c := digest.Hash([]byte("other"))

			if a != b {
				t.Fatalf("\t%s\tTest 0:\tShould produce equal digests for equal content.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce equal digests for equal content.", success)

			if a == c {
				t.Fatalf("\t%s\tTest 0:\tShould produce distinct digests for distinct content.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce distinct digests for distinct content.", success)

			m := map[digest.Digest]int{a: 1}
			if m[b] != 1 {
				t.Fatalf("\t%s\tTest 0:\tShould find entries under an equal key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould find entries under an equal key.", success)

			if a.IsZero() || !digest.FromBytes(nil).IsZero() {
				t.Fatalf("\t%s\tTest 0:\tShould report zero digests correctly.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report zero digests correctly.", success)
		}
	}
}
