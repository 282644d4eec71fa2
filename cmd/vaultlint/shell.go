package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vaultlint/internal/report"
	"github.com/dgallion1/vaultlint/internal/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive vault browser",
	Long: `Starts an interactive session rooted at the vault. Navigate with ls and
cd, open a race to run its consistency report, then inspect it with
property, content, links and city. Tab completes commands, folders and
race names when attached to a terminal.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, _ []string) error {
	v, err := openVault()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	styles := shell.NewStyles(cfg.Color && isTerminal(out))
	sh := shell.New(v, report.New(v, logger), styles, logger)

	fmt.Fprintln(out, "Type 'help' for the list of commands.")
	return sh.Run(cmd.InOrStdin(), out)
}
