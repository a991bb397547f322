package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"floatc/internal/backend"
	"floatc/internal/buildpipeline"
	"floatc/internal/observ"
	"floatc/internal/target"
)

var irCmd = &cobra.Command{
	Use:   "ir [flags]",
	Short: "Verify a program and print its IR",
	Args:  cobra.NoArgs,
	RunE:  irExecution,
}

func init() {
	addProgramFlags(irCmd)
	irCmd.Flags().String("target", "", "attach this target triple to the module")
	irCmd.Flags().Bool("llvm", false, "print LLVM assembly instead of the IR dump")
}

// compileProgram loads the command's program and runs assembly and
// verification, printing diagnostics on the way.
func compileProgram(cmd *cobra.Command) (*programSource, buildpipeline.CompileResult, error) {
	src, err := loadProgram(cmd)
	if err != nil {
		return nil, buildpipeline.CompileResult{}, err
	}
	maxDiags, err := maxDiagnostics(cmd)
	if err != nil {
		return nil, buildpipeline.CompileResult{}, err
	}
	allow, err := cmd.Flags().GetBool("allow-errors")
	if err != nil {
		return nil, buildpipeline.CompileResult{}, err
	}

	timer := observ.NewTimer()
	res, err := buildpipeline.Compile(cmd.Context(), &buildpipeline.CompileRequest{
		Program:               src.Program,
		MaxDiagnostics:        maxDiags,
		AllowDiagnosticsError: allow,
	})
	if perr := printDiagnostics(cmd, res.Bag); perr != nil {
		return nil, res, perr
	}
	if timingsEnabled(cmd) {
		recordStageTimings(timer, "", res.Timings, "")
		printTimings(cmd.ErrOrStderr(), timer)
	}
	return src, res, err
}

func irExecution(cmd *cobra.Command, _ []string) error {
	src, res, err := compileProgram(cmd)
	if err != nil {
		return err
	}
	triple, err := stringFlagOr(cmd, "target", src.manifestBuild().Target)
	if err != nil {
		return err
	}
	if triple != "" {
		desc, err := target.Lookup(triple)
		if err != nil {
			return err
		}
		res.Module.SetTarget(desc.Name(), desc.DataLayout)
	}

	asLLVM, err := cmd.Flags().GetBool("llvm")
	if err != nil {
		return err
	}
	text := res.Module.String()
	if asLLVM {
		if text, err = backend.LLVMText(res.Module); err != nil {
			return err
		}
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), text)
	return err
}
