package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/vaultlint/internal/parser"
)

var (
	parsePlain    bool
	parseMarkdown bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse one Markdown note and print its structure",
	Long: `Parses a Markdown note into its properties, heading tree and embedded
links and prints the result as JSON. The file does not need to live in
the vault.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parsePlain, "plain", false, "strip inline Markdown from content lines")
	parseCmd.Flags().BoolVar(&parseMarkdown, "markdown", false, "print the document re-serialised as Markdown instead of JSON")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	name := args[0]
	doc, err := parser.ParseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	if parsePlain {
		doc = parser.PlainDocument(doc)
	}
	logger.Debug("document parsed", "file", name, "sections", len(doc.Sections), "links", len(doc.AllLinks()))

	out := cmd.OutOrStdout()
	if parseMarkdown {
		md, err := doc.Markdown()
		if err != nil {
			return fmt.Errorf("serialise %s: %w", name, err)
		}
		_, err = fmt.Fprint(out, md)
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
