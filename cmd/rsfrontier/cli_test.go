package main

import (
	"path/filepath"
	"testing"

	"github.com/Paxlord/Rsfrontier/internal/jpk"
)

func TestCompressionOption(t *testing.T) {
	cases := map[int]jpk.EncodeOption{
		0: jpk.EncodeRaw,
		2: jpk.EncodeHuffman,
		3: jpk.EncodeLz,
		4: jpk.EncodeHuffmanLz,
	}
	for n, want := range cases {
		got, err := compressionOption(n)
		if err != nil {
			t.Fatalf("compressionOption(%d): %v", n, err)
		}
		if got != want {
			t.Errorf("compressionOption(%d) = %v, want %v", n, got, want)
		}
	}

	if _, err := compressionOption(1); err == nil {
		t.Error("compressionOption(1) should reject a non-JPK comp_type")
	}
}

func TestLeafDestinationFlatLeaf(t *testing.T) {
	// Scenario A: a container whose only leaf has no nested path
	// component, so the sniffed extension fuses directly onto stem.
	got := leafDestination(filepath.Join("out", "x"), "x", "x.bin")
	want := filepath.Join("out", "x") + ".bin"
	if got != want {
		t.Errorf("leafDestination flat = %q, want %q", got, want)
	}
}

func TestLeafDestinationNestedLeaf(t *testing.T) {
	got := leafDestination(filepath.Join("out", "root"), "root", filepath.Join("root", "0000.bin"))
	want := filepath.Join("out", "root", "0000.bin")
	if got != want {
		t.Errorf("leafDestination nested = %q, want %q", got, want)
	}
}

func TestBatchDestinationDerivesExtensionFromContent(t *testing.T) {
	// "not a known magic" matches no magic or structural heuristic,
	// so SniffBuffer falls through to the "bin" default.
	got := batchDestination(filepath.Join("src", "asset.raw"), "", []byte("not a known magic"))
	want := filepath.Join("src", "asset.bin")
	if got != want {
		t.Errorf("batchDestination = %q, want %q", got, want)
	}
}

func TestRunPackRejectsMhaAndEmTogether(t *testing.T) {
	f := &packFlags{input: ".", mha: true, em: true}
	if err := runPack(f); err == nil {
		t.Error("expected a misuse error for --mha combined with --em")
	}
}

func TestRunPackRejectsIncompleteMha(t *testing.T) {
	f := &packFlags{input: ".", mha: true, capacity: 0, baseID: 0}
	if err := runPack(f); err == nil {
		t.Error("expected a misuse error for --mha without --capacity/--baseid")
	}
}
