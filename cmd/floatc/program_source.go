package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"floatc/internal/ir"
	"floatc/internal/prog"
)

const noManifestMessage = "no " + prog.ManifestName + " found in this directory or its parents; use --program to pick a builtin"

// defaultProgram is compiled when neither --program nor a manifest is present.
const defaultProgram = "arith"

func addProgramFlags(cmd *cobra.Command) {
	cmd.Flags().String("program", "", "builtin program to compile (arith|vars|broken)")
	cmd.Flags().Bool("manifest", false, "require "+prog.ManifestName+" as the program source")
	cmd.Flags().String("linkage", "", "linkage of the generated function (internal|external)")
	cmd.Flags().String("function", "", "name of the generated function")
	cmd.Flags().Bool("allow-errors", false, "continue past assembly diagnostics")
}

// programSource is the resolved input of a command. Manifest is nil for
// builtin programs.
type programSource struct {
	Program  *prog.Program
	Manifest *prog.Manifest
}

// loadProgram picks the program from --program, the manifest, or the
// default builtin, then applies --linkage and --function.
func loadProgram(cmd *cobra.Command) (*programSource, error) {
	name, err := cmd.Flags().GetString("program")
	if err != nil {
		return nil, err
	}
	requireManifest, err := cmd.Flags().GetBool("manifest")
	if err != nil {
		return nil, err
	}
	if name != "" && requireManifest {
		return nil, fmt.Errorf("--program and --manifest are mutually exclusive")
	}

	var src programSource
	switch {
	case name != "":
		if src.Program, err = prog.Builtin(name); err != nil {
			return nil, err
		}
	default:
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		manifest, found, err := prog.LoadManifest(cwd)
		if err != nil {
			return nil, err
		}
		switch {
		case found:
			if src.Program, err = manifest.Program(); err != nil {
				return nil, err
			}
			src.Manifest = manifest
		case requireManifest:
			return nil, errors.New(noManifestMessage)
		default:
			src.Program, _ = prog.Builtin(defaultProgram)
		}
	}
	if err := applyProgramFlags(cmd, src.Program); err != nil {
		return nil, err
	}
	return &src, nil
}

func applyProgramFlags(cmd *cobra.Command, p *prog.Program) error {
	if cmd.Flags().Changed("linkage") {
		value, _ := cmd.Flags().GetString("linkage")
		linkage, err := ir.ParseLinkage(value)
		if err != nil {
			return err
		}
		p.Linkage = linkage
	}
	if cmd.Flags().Changed("function") {
		value, _ := cmd.Flags().GetString("function")
		if value == "" {
			return fmt.Errorf("--function must not be empty")
		}
		p.Function = value
	}
	return nil
}

// manifestBuild returns the [build] table or its zero value.
func (s *programSource) manifestBuild() prog.BuildConfig {
	if s.Manifest == nil {
		return prog.BuildConfig{}
	}
	return s.Manifest.Config.Build
}

// stringFlagOr returns the flag when set on the command line, otherwise
// fallback when non-empty, otherwise the flag default.
func stringFlagOr(cmd *cobra.Command, name, fallback string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}
	if !cmd.Flags().Changed(name) && fallback != "" {
		return fallback, nil
	}
	return value, nil
}
