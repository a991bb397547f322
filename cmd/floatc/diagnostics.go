package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"floatc/internal/diag"
)

// printDiagnostics writes the bag to stderr sorted and deduplicated, in the
// format chosen by --diagnostics-format.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	bag.Dedup()
	bag.Sort()
	format, err := cmd.Root().PersistentFlags().GetString("diagnostics-format")
	if err != nil {
		format = "pretty"
	}
	switch format {
	case "json":
		return diag.JSON(cmd.ErrOrStderr(), bag)
	case "pretty", "":
		return diag.Pretty(cmd.ErrOrStderr(), bag, diag.PrettyOpts{Color: useColor})
	}
	return fmt.Errorf("invalid --diagnostics-format %q (expected pretty|json)", format)
}

func maxDiagnostics(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return n, nil
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}
