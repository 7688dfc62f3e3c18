package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	rsfrontier "github.com/Paxlord/Rsfrontier"
	"github.com/Paxlord/Rsfrontier/internal/ecd"
	"github.com/Paxlord/Rsfrontier/internal/peelcache"
	"github.com/Paxlord/Rsfrontier/internal/seal"
)

type unpackFlags struct {
	input      string
	output     string
	decrypt    bool
	verifySign string
}

func newUnpackCmd() *cobra.Command {
	f := &unpackFlags{}

	cmd := &cobra.Command{
		Use:   "unpack",
		Short: "recursively unpack a packed asset file to a directory tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnpack(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.input, "input", "", "packed file to unpack (required)")
	flags.StringVar(&f.output, "output", "", "output directory (default: ./<input stem>)")
	flags.BoolVar(&f.decrypt, "decrypt", false, "ECD-decrypt only; skip all other layers")
	flags.StringVar(&f.verifySign, "verify-sign", "", "passphrase: verify <input>.sig before unpacking")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runUnpack(f *unpackFlags) error {
	start := time.Now()

	buf, err := readInputFile(f.input)
	if err != nil {
		return fmt.Errorf("io failure: %w", err)
	}

	if f.verifySign != "" {
		if err := verifySidecar(f.input, buf, f.verifySign); err != nil {
			return err
		}
	}

	if f.decrypt {
		if !ecd.IsECD(buf) {
			return fmt.Errorf("misuse: --decrypt given but %s is not ECD-encrypted", f.input)
		}
		plaintext, err := ecd.Decrypt(buf)
		if err != nil {
			return fmt.Errorf("malformed input: %w", err)
		}
		if err := writeOutputOrStdout(f.output, plaintext); err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
		fmt.Fprintln(os.Stdout, time.Since(start))
		return nil
	}

	stem := strings.TrimSuffix(filepath.Base(f.input), filepath.Ext(f.input))
	cache := peelcache.New(peelcache.DefaultDir())

	leaves, err := rsfrontier.UnpackBuffer(stem, buf, cache)
	if err != nil {
		return err
	}

	outputDir := f.output
	if outputDir == "" {
		outputDir = stem
	}
	if dirExists(outputDir) {
		outputDir = filepath.Join(outputDir, stem)
	}

	for _, leaf := range leaves {
		dest := leafDestination(outputDir, stem, leaf.Path)
		if err := writeOutputFile(dest, leaf.Data); err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
	}

	fmt.Fprintln(os.Stdout, time.Since(start))
	return nil
}

// leafDestination maps one UnpackBuffer leaf path back onto a
// filesystem path under outputDir. Nested leaves (produced by
// recursing into a container) carry stem as a genuine path segment,
// e.g. "stem/0000.bin"; a leaf that was never inside a container
// fuses its extension directly onto stem, e.g. "stem.bin" — in that
// case the extension is appended to outputDir itself rather than
// treating outputDir as a one-entry directory.
func leafDestination(outputDir, stem, leafPath string) string {
	rel := strings.TrimPrefix(leafPath, stem)
	if strings.HasPrefix(rel, string(filepath.Separator)) {
		return filepath.Join(outputDir, strings.TrimPrefix(rel, string(filepath.Separator)))
	}
	return outputDir + rel
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func verifySidecar(inputPath string, buf []byte, passphrase string) error {
	sig, err := os.ReadFile(inputPath + ".sig")
	if err != nil {
		return fmt.Errorf("io failure: reading signature sidecar: %w", err)
	}
	if err := seal.Verify(buf, sig, passphrase); err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
