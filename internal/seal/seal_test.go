package seal

import "testing"

// TestSealRoundTrip pins the success half of Property 13: Verify
// succeeds when sig was produced by Sign for the same buf and
// passphrase. The failure cases are covered by the tests below.
func TestSealRoundTrip(t *testing.T) {
	buf := []byte("packed asset bytes, pretend this is a whole MHA file")
	sig, err := Sign(buf, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(buf, sig, "correct horse battery staple"); err != nil {
		t.Fatalf("Verify(matching): %v", err)
	}
}

func TestSealWrongPassphrase(t *testing.T) {
	buf := []byte("payload")
	sig, err := Sign(buf, "right")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(buf, sig, "wrong"); err == nil {
		t.Error("Verify with wrong passphrase succeeded")
	}
}

func TestSealBitFlipInBuffer(t *testing.T) {
	buf := []byte("payload bytes here")
	sig, err := Sign(buf, "pw")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	flipped := append([]byte(nil), buf...)
	flipped[0] ^= 0x01
	if err := Verify(flipped, sig, "pw"); err == nil {
		t.Error("Verify after bit flip in buffer succeeded")
	}
}

func TestSealBitFlipInSignature(t *testing.T) {
	buf := []byte("payload bytes here")
	sig, err := Sign(buf, "pw")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	flipped := append([]byte(nil), sig...)
	flipped[len(flipped)-1] ^= 0x01
	if err := Verify(buf, flipped, "pw"); err == nil {
		t.Error("Verify after bit flip in signature succeeded")
	}
}

func TestSealMalformedSignature(t *testing.T) {
	if err := Verify([]byte("x"), []byte("too short"), "pw"); err == nil {
		t.Error("Verify with malformed signature succeeded")
	}
}
