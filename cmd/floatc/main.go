package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"floatc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "floatc",
	Short: "float32 expression compiler",
	Long:  `floatc lowers float32 expressions and variable assignments to IR and native object files`,
	// diagnostics are printed by the commands themselves
	SilenceUsage:       true,
	PersistentPreRunE:  setupRun,
	PersistentPostRunE: teardownRun,
}

// main registers the subcommands and persistent flags and executes the root
// command. A command error exits with status 1.
func main() {
	rootCmd.Version = version.Collect().Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(irCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(targetsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	rootCmd.PersistentFlags().String("diagnostics-format", "pretty", "diagnostics output format (pretty|json)")
	rootCmd.PersistentFlags().String("trace", "", "trace output path (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	err := rootCmd.Execute()
	// PostRun is skipped when RunE fails
	runCleanups()
	if err != nil {
		os.Exit(1)
	}
}

var cleanups []func()

func setupRun(cmd *cobra.Command, _ []string) error {
	if err := setupColor(cmd); err != nil {
		return err
	}
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopProf)
	stopTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopTrace)
	return nil
}

func teardownRun(*cobra.Command, []string) error {
	runCleanups()
	return nil
}

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
