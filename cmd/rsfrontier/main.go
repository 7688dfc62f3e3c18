// Command rsfrontier packs and unpacks the game's nested asset
// containers (ECD, JPK, Simple Archive, MHA) from the command line.
// The heavy lifting lives in the root package and internal/*; this
// binary is only the flag-parsing and filesystem glue the core spec
// treats as an external collaborator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "rsfrontier",
		Short:         "pack and unpack nested game asset containers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPackCmd())
	root.AddCommand(newUnpackCmd())
	root.AddCommand(newInspectCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rsfrontier:", err)
		os.Exit(1)
	}
}
