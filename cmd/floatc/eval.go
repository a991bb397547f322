package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"floatc/internal/ir"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags]",
	Short: "Interpret a program and print its variables",
	Args:  cobra.NoArgs,
	RunE:  evalExecution,
}

func init() {
	addProgramFlags(evalCmd)
}

func evalExecution(cmd *cobra.Command, _ []string) error {
	_, res, err := compileProgram(cmd)
	if err != nil {
		return err
	}
	fn := res.Session.Func()
	frame, err := ir.Eval(fn)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", fn.Name, err)
	}
	out := cmd.OutOrStdout()
	syms := res.Session.Symbols()
	for _, name := range syms.Names() {
		slot, _ := syms.Lookup(name)
		v, ok := frame.Slot(slot)
		if !ok {
			fmt.Fprintf(out, "%s = <unset>\n", name)
			continue
		}
		fmt.Fprintf(out, "%s = %s\n", name, strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	return nil
}
