package signature_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/scroogecoin/scroogecoin/foundation/ledger/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_SignVerify(t *testing.T) {
	t.Log("Given the need to verify signatures over arbitrary payloads.")
	{
		t.Logf("\tTest 0:\tWhen signing with a known private key.")
		{
			pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould parse the private key: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould parse the private key.", success)

			payload := []byte("pay alice 10.0 from output 0")

			sig, err := signature.Sign(payload, pk)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould sign the payload: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould sign the payload.", success)

			verifier := signature.NewECDSA()
			publicKey := signature.PublicKeyBytes(&pk.PublicKey)

			if !verifier.Verify(publicKey, payload, sig) {
				t.Fatalf("\t%s\tTest 0:\tShould verify the signature.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould verify the signature.", success)

			if verifier.Verify(publicKey, []byte("pay mallory 10.0"), sig) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a tampered payload.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a tampered payload.", success)

			other, err := crypto.GenerateKey()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould generate a second key: %v", failed, err)
			}

			if verifier.Verify(signature.PublicKeyBytes(&other.PublicKey), payload, sig) {
				t.Fatalf("\t%s\tTest 0:\tShould reject the wrong public key.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject the wrong public key.", success)

			if verifier.Verify(publicKey, payload, sig[:10]) {
				t.Fatalf("\t%s\tTest 0:\tShould reject a truncated signature.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould reject a truncated signature.", success)
		}
	}
}
