// Package main implements the floatc CLI.
package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"floatc/internal/backend"
	"floatc/internal/buildpipeline"
	"floatc/internal/objcache"
	"floatc/internal/observ"
	"floatc/internal/prog"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags]",
	Short: "Compile a program to an object file",
	Long: `Compile a program to a relocatable object file.

The program comes from --program, from floatc.toml when one is found, or
defaults to the arith builtin. Flags override the manifest [build] table.`,
	Args: cobra.NoArgs,
	RunE: buildExecution,
}

func init() {
	addProgramFlags(buildCmd)
	buildCmd.Flags().StringP("output", "o", buildpipeline.DefaultOutput, "object file path (directory with --all)")
	buildCmd.Flags().String("target", "", "target triple (default: host)")
	buildCmd.Flags().String("backend", "auto", "code generator (auto|native|llvm)")
	buildCmd.Flags().Bool("emit-ir", false, "write the IR dump next to the object")
	buildCmd.Flags().Bool("emit-llvm", false, "write LLVM assembly next to the object")
	buildCmd.Flags().String("cache", "", "object cache directory (auto for the user cache dir)")
	buildCmd.Flags().Bool("all", false, "build every builtin program")
	buildCmd.Flags().Int("jobs", 0, "parallel builds with --all (0 = GOMAXPROCS)")
	buildCmd.Flags().Bool("print-commands", false, "print external tool invocations")
	buildCmd.Flags().String("ui", "auto", "user interface (auto|on|off)")
}

// buildOptions are the flag values shared by every program of one run.
type buildOptions struct {
	triple    string
	backend   backend.Kind
	output    string
	emitIR    bool
	emitLLVM  bool
	cache     *objcache.Cache
	commands  io.Writer
	maxDiags  int
	allowDiag bool
}

func buildExecution(cmd *cobra.Command, _ []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	liveUI, err := useLiveUI(uiValue, currentUIEnv(quiet(cmd)))
	if err != nil {
		return err
	}

	var src *programSource
	if all {
		if cmd.Flags().Changed("program") || cmd.Flags().Changed("manifest") {
			return fmt.Errorf("--all cannot be combined with --program or --manifest")
		}
		src = &programSource{}
	} else if src, err = loadProgram(cmd); err != nil {
		return err
	}
	opts, err := readBuildOptions(cmd, src)
	if err != nil {
		return err
	}

	timer := observ.NewTimer()
	var reqs []*buildpipeline.BuildRequest
	if all {
		for _, name := range prog.BuiltinNames() {
			p, _ := prog.Builtin(name)
			if err := applyProgramFlags(cmd, p); err != nil {
				return err
			}
			reqs = append(reqs, opts.request(p, filepath.Join(opts.output, name+".o")))
		}
	} else {
		reqs = append(reqs, opts.request(src.Program, opts.output))
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	idx := timer.Begin("build")
	var results []buildpipeline.BuildResult
	if liveUI {
		results, err = runBuildAllWithUI(cmd.Context(), "floatc build", reqs, jobs)
	} else {
		results, err = buildpipeline.BuildAll(cmd.Context(), reqs, jobs)
	}
	timer.End(idx, fmt.Sprintf("%d program(s)", len(reqs)))

	out := cmd.OutOrStdout()
	failed := 0
	for i, res := range results {
		name := reqs[i].Program.Name
		bag := res.Compile.Bag
		if perr := printDiagnostics(cmd, bag); perr != nil {
			return perr
		}
		if res.Err != nil {
			failed++
			continue
		}
		if timingsEnabled(cmd) {
			note := ""
			if res.Lower.Cached {
				note = "cached"
			}
			recordStageTimings(timer, name, res.Timings, note)
		}
		if !quiet(cmd) {
			fmt.Fprintf(out, "built %s (%s)\n", res.OutputPath, describeLowering(res.Lower))
		}
	}
	if timingsEnabled(cmd) {
		printTimings(cmd.ErrOrStderr(), timer)
	}
	if err != nil && len(reqs) > 1 {
		return fmt.Errorf("%d of %d builds failed: %w", failed, len(reqs), err)
	}
	return err
}

func describeLowering(l buildpipeline.LowerResult) string {
	parts := []string{l.Target.Name(), l.Machine.Name(), fmt.Sprintf("%d bytes", len(l.Object))}
	if l.Cached {
		parts = append(parts, "cached")
	}
	return strings.Join(parts, ", ")
}

func readBuildOptions(cmd *cobra.Command, src *programSource) (*buildOptions, error) {
	mb := src.manifestBuild()
	opts := &buildOptions{}
	var err error

	if opts.triple, err = stringFlagOr(cmd, "target", mb.Target); err != nil {
		return nil, err
	}
	backendValue, err := stringFlagOr(cmd, "backend", mb.Backend)
	if err != nil {
		return nil, err
	}
	if opts.backend, err = backend.ParseKind(backendValue); err != nil {
		return nil, err
	}

	manifestOut := ""
	if src.Manifest != nil {
		manifestOut = src.Manifest.OutputPath()
	}
	if opts.output, err = stringFlagOr(cmd, "output", manifestOut); err != nil {
		return nil, err
	}
	all, _ := cmd.Flags().GetBool("all")
	if all && !cmd.Flags().Changed("output") {
		opts.output = "."
	}

	if opts.emitIR, err = cmd.Flags().GetBool("emit-ir"); err != nil {
		return nil, err
	}
	if opts.emitLLVM, err = cmd.Flags().GetBool("emit-llvm"); err != nil {
		return nil, err
	}
	if opts.allowDiag, err = cmd.Flags().GetBool("allow-errors"); err != nil {
		return nil, err
	}
	if opts.maxDiags, err = maxDiagnostics(cmd); err != nil {
		return nil, err
	}

	cacheDir, err := stringFlagOr(cmd, "cache", mb.Cache)
	if err != nil {
		return nil, err
	}
	if cacheDir != "" {
		if cacheDir == "auto" {
			cacheDir = ""
		}
		if opts.cache, err = objcache.Open(cacheDir); err != nil {
			return nil, err
		}
	}

	printCommands, err := cmd.Flags().GetBool("print-commands")
	if err != nil {
		return nil, err
	}
	if printCommands {
		opts.commands = cmd.ErrOrStderr()
	}
	return opts, nil
}

func (o *buildOptions) request(p *prog.Program, output string) *buildpipeline.BuildRequest {
	return &buildpipeline.BuildRequest{
		CompileRequest: buildpipeline.CompileRequest{
			Program:               p,
			MaxDiagnostics:        o.maxDiags,
			AllowDiagnosticsError: o.allowDiag,
		},
		LowerRequest: buildpipeline.LowerRequest{
			Triple:   o.triple,
			Backend:  o.backend,
			Cache:    o.cache,
			Commands: o.commands,
		},
		OutputPath: output,
		EmitIR:     o.emitIR,
		EmitLLVM:   o.emitLLVM,
	}
}
