package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var useColor bool

func setupColor(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		useColor = isTerminal(os.Stderr) && os.Getenv("NO_COLOR") == ""
	case "on":
		useColor = true
	case "off":
		useColor = false
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
	color.NoColor = !useColor
	return nil
}
