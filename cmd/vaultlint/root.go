package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgallion1/vaultlint/internal/config"
	"github.com/dgallion1/vaultlint/internal/vault"
)

var (
	vaultFlag  string
	configFlag string
	verbose    bool

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vaultlint",
	Short: "Browse a worldbuilding vault and check its consistency",
	Long: `vaultlint reads an Obsidian-style vault of Markdown notes and checks each
race against its documents, its cities in '02 - Lieux' and the magic
notes in '01 - Magies'.

Run without arguments to start the interactive shell.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runShell,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&vaultFlag, "vault", "", "vault root directory (overrides config)")
	pf.StringVar(&configFlag, "config", "", "TOML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup loads the configuration and builds the CLI logger. Flags win over
// the config file and environment.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if vaultFlag != "" {
		c.VaultPath = vaultFlag
	}
	if verbose {
		c.LogLevel = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level, _ := c.SlogLevel()

	cfg = c
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func openVault() (*vault.Vault, error) {
	v, err := vault.Open(cfg.VaultPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("vault opened", "root", v.Root())
	return v, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
