package peelcache

import (
	"errors"
	"testing"
)

// TestPeelTransparency pins Property 11: the returned value always
// equals decode(buf), regardless of cache tier state.
func TestPeelTransparency(t *testing.T) {
	c := New(t.TempDir())
	calls := 0
	decode := func(buf []byte) ([]byte, error) {
		calls++
		out := make([]byte, len(buf))
		for i, b := range buf {
			out[i] = b ^ 0xFF
		}
		return out, nil
	}

	buf := []byte("some peel input")
	first, err := c.Peel("ecd", buf, decode)
	if err != nil {
		t.Fatalf("Peel: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	second, err := c.Peel("ecd", buf, decode)
	if err != nil {
		t.Fatalf("Peel (cached): %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls after cached Peel = %d, want 1 (should not recompute)", calls)
	}
	if string(first) != string(second) {
		t.Fatalf("cached result %q != original %q", second, first)
	}
}

func TestPeelTransparentOnWriteFailure(t *testing.T) {
	c := New("/nonexistent/definitely/not/writable")
	decode := func(buf []byte) ([]byte, error) {
		return append([]byte(nil), buf...), nil
	}
	got, err := c.Peel("jpk", []byte("x"), decode)
	if err != nil {
		t.Fatalf("Peel: %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("got %q, want %q", got, "x")
	}
}

func TestPeelPropagatesDecodeError(t *testing.T) {
	c := New(t.TempDir())
	wantErr := errors.New("boom")
	_, err := c.Peel("ecd", []byte("y"), func([]byte) ([]byte, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestPeelDistinguishesKind(t *testing.T) {
	c := New(t.TempDir())
	buf := []byte("shared bytes")
	a, err := c.Peel("ecd", buf, func(b []byte) ([]byte, error) { return []byte("A"), nil })
	if err != nil {
		t.Fatalf("Peel ecd: %v", err)
	}
	b, err := c.Peel("jpk", buf, func(b []byte) ([]byte, error) { return []byte("B"), nil })
	if err != nil {
		t.Fatalf("Peel jpk: %v", err)
	}
	if string(a) == string(b) {
		t.Fatalf("distinct kinds collided: %q == %q", a, b)
	}
}
