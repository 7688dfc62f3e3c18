package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	rsfrontier "github.com/Paxlord/Rsfrontier"
	"github.com/Paxlord/Rsfrontier/internal/jpk"
	"github.com/Paxlord/Rsfrontier/internal/magic"
	"github.com/Paxlord/Rsfrontier/internal/seal"
)

type packFlags struct {
	input       string
	output      string
	compression int
	encrypt     bool
	mha         bool
	em          bool
	capacity    uint16
	baseID      uint16
	sign        string
	progress    bool
}

func newPackCmd() *cobra.Command {
	f := &packFlags{compression: -1}

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "pack a file or directory into one of the game's container formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.input, "input", "", "file, directory, or doublestar glob to pack (required)")
	flags.StringVar(&f.output, "output", env.Str("RSFRONTIER_OUTPUT_DIR", ""), "output file or directory (default: stdout for a single file)")
	flags.IntVar(&f.compression, "compression", -1, "JPK comp_type for a single-file input: 0, 2, 3, or 4")
	flags.BoolVar(&f.encrypt, "encrypt", false, "apply ECD encryption as a final step")
	flags.BoolVar(&f.mha, "mha", false, "pack a directory into an MHA archive")
	flags.BoolVar(&f.em, "em", false, "pack a directory in monster-archive mode (no outer Simple Archive wrap)")
	flags.Uint16Var(&f.capacity, "capacity", 0, "MHA capacity (required with --mha)")
	flags.Uint16Var(&f.baseID, "baseid", uint16(env.Int("RSFRONTIER_BASEID", 0)), "MHA base file ID (required with --mha)")
	flags.StringVar(&f.sign, "sign", "", "passphrase: write a detached <output>.sig sidecar")
	flags.BoolVar(&f.progress, "progress", false, "show a progress bar over a glob batch")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runPack(f *packFlags) error {
	if f.mha && f.em {
		return fmt.Errorf("misuse: --mha and --em are mutually exclusive")
	}
	if f.mha && (f.capacity == 0 || f.baseID == 0) {
		return fmt.Errorf("misuse: --mha requires --capacity and --baseid")
	}

	start := time.Now()

	if strings.Contains(f.input, "*") {
		if err := runPackGlob(f); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, time.Since(start))
		return nil
	}

	info, err := os.Stat(f.input)
	if err != nil {
		return fmt.Errorf("io failure: %w", err)
	}

	if info.IsDir() {
		if err := runPackDir(f); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, time.Since(start))
		return nil
	}

	if f.mha || f.em {
		return fmt.Errorf("misuse: --mha/--em require a directory input")
	}

	buf, err := readInputFile(f.input)
	if err != nil {
		return fmt.Errorf("io failure: %w", err)
	}
	out, err := packSingleBuffer(buf, f)
	if err != nil {
		return err
	}
	if err := writeOutputOrStdout(f.output, out); err != nil {
		return fmt.Errorf("io failure: %w", err)
	}
	if err := maybeSign(f.output, out, f.sign); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, time.Since(start))
	return nil
}

// packSingleBuffer applies the requested JPK compression (if any)
// followed by ECD encryption (if requested) to one in-memory buffer.
func packSingleBuffer(buf []byte, f *packFlags) ([]byte, error) {
	out := buf
	if f.compression >= 0 {
		opt, err := compressionOption(f.compression)
		if err != nil {
			return nil, err
		}
		out = rsfrontier.PackBuffer(out, rsfrontier.JpkOp(opt))
	}
	if f.encrypt {
		out = rsfrontier.PackBuffer(out, rsfrontier.EcdOp())
	}
	return out, nil
}

func compressionOption(n int) (jpk.EncodeOption, error) {
	switch jpk.CompType(n) {
	case jpk.Raw:
		return jpk.EncodeRaw, nil
	case jpk.HuffmanRaw:
		return jpk.EncodeHuffman, nil
	case jpk.Lz:
		return jpk.EncodeLz, nil
	case jpk.HuffmanLz:
		return jpk.EncodeHuffmanLz, nil
	default:
		return 0, fmt.Errorf("misuse: --compression must be 0, 2, 3, or 4 (got %d)", n)
	}
}

func runPackDir(f *packFlags) error {
	packType := rsfrontier.FolderSimple
	switch {
	case f.mha:
		packType = rsfrontier.FolderMHA
	case f.em:
		packType = rsfrontier.FolderEM
	}

	result, err := rsfrontier.PackDir(f.input, packType, f.baseID, f.capacity)
	if err != nil {
		return err
	}

	if result.Buffer != nil {
		if err := writeOutputOrStdout(f.output, result.Buffer); err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
		return maybeSign(f.output, result.Buffer, f.sign)
	}

	// FolderEM: no single buffer, write each top-level entry under
	// --output as its own file.
	if f.output == "" {
		return fmt.Errorf("misuse: --em requires --output (a directory)")
	}
	for _, entry := range result.Entries {
		path := filepath.Join(f.output, entry.Name)
		if err := writeOutputFile(path, entry.Data); err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
		if err := maybeSign(path, entry.Data, f.sign); err != nil {
			return err
		}
	}
	return nil
}

func runPackGlob(f *packFlags) error {
	matches, err := doublestar.FilepathGlob(f.input)
	if err != nil {
		return fmt.Errorf("misuse: bad glob %q: %w", f.input, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("misuse: glob %q matched no files", f.input)
	}
	if f.output != "" {
		if err := os.MkdirAll(f.output, 0o755); err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
	}

	var bar *progressbar.ProgressBar
	if f.progress {
		bar = progressbar.New(len(matches))
	}

	for _, match := range matches {
		buf, err := readInputFile(match)
		if err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
		out, err := packSingleBuffer(buf, f)
		if err != nil {
			return err
		}
		dest := batchDestination(match, f.output, out)
		if err := writeOutputFile(dest, out); err != nil {
			return fmt.Errorf("io failure: %w", err)
		}
		if err := maybeSign(dest, out, f.sign); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

func batchDestination(srcPath, outputDir string, packed []byte) string {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	name := stem + "." + magic.SniffBuffer(packed)
	if outputDir == "" {
		return filepath.Join(filepath.Dir(srcPath), name)
	}
	return filepath.Join(outputDir, name)
}

func maybeSign(outputPath string, buf []byte, passphrase string) error {
	if passphrase == "" {
		return nil
	}
	if outputPath == "" {
		return fmt.Errorf("misuse: --sign requires --output (stdout output has no sidecar path)")
	}
	sig, err := seal.Sign(buf, passphrase)
	if err != nil {
		return fmt.Errorf("io failure: signing %s: %w", outputPath, err)
	}
	if err := writeOutputFile(outputPath+".sig", sig); err != nil {
		return fmt.Errorf("io failure: %w", err)
	}
	return nil
}
