package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"floatc/internal/backend/amd64"
	"floatc/internal/backend/llvm"
	"floatc/internal/target"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List known targets and their backends",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, tcErr := llvm.FindToolchain()
		rows, err := targetRows(target.HostTriple(), tcErr == nil)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), renderTargets(rows))
		if err != nil {
			return err
		}
		if tcErr != nil && !quiet(cmd) {
			fmt.Fprintf(cmd.ErrOrStderr(), "llvm backend unavailable: %v\n", tcErr)
		}
		return nil
	},
}

// targetRows lists the registry as arch, os, format and backend columns.
// The host row is marked.
func targetRows(host string, haveLLVM bool) ([][]string, error) {
	hostDesc, hostErr := target.Lookup(host)
	var rows [][]string
	for _, s := range target.All() {
		desc, err := target.Lookup(s.Arch + "-unknown-" + s.OS)
		if err != nil {
			return nil, err
		}
		backends := ""
		if amd64.Supports(desc) {
			backends = "native"
		}
		if haveLLVM {
			if backends != "" {
				backends += ","
			}
			backends += "llvm"
		}
		if backends == "" {
			backends = "-"
		}
		osName := s.OS
		if hostErr == nil && desc.Triple.Arch == hostDesc.Triple.Arch && desc.Triple.OS == hostDesc.Triple.OS {
			osName += " (host)"
		}
		rows = append(rows, []string{s.Arch, osName, s.Format.String(), backends})
	}
	return rows, nil
}

// lipgloss styles the header as row 0 and data rows from 1.
const headerRow = 0

func renderTargets(rows [][]string) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("ARCH", "OS", "FORMAT", "BACKENDS").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == headerRow {
				return header
			}
			return cell
		})
	return t.Render()
}
