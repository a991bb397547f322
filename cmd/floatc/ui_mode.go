package main

import (
	"fmt"
	"os"
	"strings"
)

// uiEnv is what the live build view depends on besides the --ui flag.
type uiEnv struct {
	quiet    bool
	terminal bool
	term     string
}

func currentUIEnv(quiet bool) uiEnv {
	return uiEnv{quiet: quiet, terminal: isTerminal(os.Stdout), term: os.Getenv("TERM")}
}

// useLiveUI decides whether build progress is drawn with the terminal UI.
// --quiet always wins; "auto" needs a capable terminal on stdout.
func useLiveUI(value string, env uiEnv) (bool, error) {
	var live bool
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		live = env.terminal && env.term != "dumb"
	case "on":
		live = true
	case "off":
		live = false
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return live && !env.quiet, nil
}
