package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"

	rsfrontier "github.com/Paxlord/Rsfrontier"
	"github.com/Paxlord/Rsfrontier/internal/pathindex"
	"github.com/Paxlord/Rsfrontier/internal/peelcache"
)

type inspectFlags struct {
	input  string
	prefix string
}

func newInspectCmd() *cobra.Command {
	f := &inspectFlags{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "fully unpack a file in memory and list its leaf paths, without writing the unpacked files to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.input, "input", "", "packed file to inspect (required)")
	flags.StringVar(&f.prefix, "prefix", "", "only list paths with this prefix")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runInspect(f *inspectFlags) error {
	buf, err := readInputFile(f.input)
	if err != nil {
		return fmt.Errorf("io failure: %w", err)
	}

	cache := peelcache.New(peelcache.DefaultDir())
	leaves, err := rsfrontier.UnpackBuffer(f.input, buf, cache)
	if err != nil {
		return err
	}

	entries := make([]pathindex.Entry, len(leaves))
	for i, l := range leaves {
		entries[i] = pathindex.Entry{Path: l.Path, Data: l.Data}
	}
	idx := pathindex.Build(entries)

	matches := idx.Prefix(f.prefix)
	slices.SortFunc(matches, func(a, b pathindex.Entry) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})

	for _, m := range matches {
		fmt.Printf("%s\t%d\n", m.Path, len(m.Data))
	}
	return nil
}
