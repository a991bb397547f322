package llvm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrNoToolchain is returned when neither clang nor llc is on PATH.
var ErrNoToolchain = errors.New("clang and llc not found; install with: sudo apt-get install -y clang llvm")

// Toolchain locates the external LLVM tools.
type Toolchain struct {
	Clang string
	LLC   string
	// Commands, when set, receives every command line before it runs.
	Commands io.Writer
}

// FindToolchain looks up clang and llc on PATH. At least one is required.
func FindToolchain() (Toolchain, error) {
	var tc Toolchain
	if p, err := exec.LookPath("clang"); err == nil {
		tc.Clang = p
	}
	if p, err := exec.LookPath("llc"); err == nil {
		tc.LLC = p
	}
	if tc.Clang == "" && tc.LLC == "" {
		return tc, ErrNoToolchain
	}
	return tc, nil
}

// Compile turns the textual IR in llPath into an object at objPath, trying
// clang first and falling back to llc.
func (tc Toolchain) Compile(ctx context.Context, triple, llPath, objPath string) error {
	var clangErr error
	if tc.Clang != "" {
		args := []string{"-c", "-x", "ir", "-O0", "-Wno-override-module"}
		if triple != "" {
			args = append(args, "--target="+triple)
		}
		args = append(args, llPath, "-o", objPath)
		if clangErr = tc.run(ctx, tc.Clang, args...); clangErr == nil {
			return nil
		}
	}
	if tc.LLC == "" {
		if clangErr != nil {
			return clangErr
		}
		return ErrNoToolchain
	}
	args := []string{"-filetype=obj"}
	if triple != "" {
		args = append(args, "-mtriple="+triple)
	}
	args = append(args, llPath, "-o", objPath)
	if err := tc.run(ctx, tc.LLC, args...); err != nil {
		if clangErr != nil {
			return fmt.Errorf("clang and llc failed: %w", errors.Join(clangErr, err))
		}
		return err
	}
	if clangErr != nil && tc.Commands != nil {
		fmt.Fprintln(tc.Commands, "note: clang IR compile failed; fell back to llc")
	}
	return nil
}

func (tc Toolchain) run(ctx context.Context, name string, args ...string) error {
	if tc.Commands != nil {
		if _, err := fmt.Fprintf(tc.Commands, "%s %s\n", name, strings.Join(args, " ")); err != nil {
			return fmt.Errorf("failed to print command: %w", err)
		}
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s: %w", name, err)
		}
		return fmt.Errorf("%s: %s", name, msg)
	}
	return nil
}
