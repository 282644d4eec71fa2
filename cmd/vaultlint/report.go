package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vaultlint/internal/report"
	"github.com/dgallion1/vaultlint/internal/vault"
	"github.com/dgallion1/vaultlint/internal/watch"
)

var (
	reportJSON   bool
	reportWatch  bool
	reportStrict bool
)

var reportCmd = &cobra.Command{
	Use:   "report <race>",
	Short: "Check one race for consistency issues",
	Long: `Runs the consistency checks for a race: heading parity across its
documents, its cities and capital in '02 - Lieux', and the magic notes
linked from its root document.

The race may be given as its folder name or any part of it.
With --watch the report is printed again whenever a note it reads changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output the report as JSON")
	reportCmd.Flags().BoolVarP(&reportWatch, "watch", "w", false, "re-run the report when the vault changes")
	reportCmd.Flags().BoolVar(&reportStrict, "strict", false, "exit with an error when issues are found")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	v, err := openVault()
	if err != nil {
		return err
	}
	race, err := v.LookupRace(args[0])
	if errors.Is(err, vault.ErrNotFound) {
		// Reported as a missing race directory.
		race = args[0]
	} else if err != nil {
		return fmt.Errorf("resolve race %q: %w", args[0], err)
	}

	engine := report.New(v, logger)
	out := cmd.OutOrStdout()

	rep := engine.ReportIssues(race)
	if err := writeReport(out, rep); err != nil {
		return err
	}
	if reportWatch {
		return watchReport(cmd.Context(), v, engine, race, out)
	}
	if reportStrict && len(rep.Findings) > 0 {
		return fmt.Errorf("%d issues found for race %q", len(rep.Findings), race)
	}
	return nil
}

func writeReport(w io.Writer, rep *report.Report) error {
	if !reportJSON {
		return rep.WriteText(w)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func watchReport(ctx context.Context, v *vault.Vault, engine *report.Engine, race string, out io.Writer) error {
	w, err := watch.New(v.ReportDirs(race), cfg.WatchDebounce, logger)
	if err != nil {
		return fmt.Errorf("watch race %q: %w", race, err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for changes", "race", race)
	err = w.Run(ctx, func(paths []string) {
		logger.Info("vault changed, re-running report", "race", race, "files", len(paths))
		if err := writeReport(out, engine.ReportIssues(race)); err != nil {
			logger.Error("write report", "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
