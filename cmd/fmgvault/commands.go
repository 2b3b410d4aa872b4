package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fmgvault/internal/config"
	"fmgvault/internal/pipeline"
	"fmgvault/internal/store"
	"fmgvault/internal/vault"
	"fmgvault/internal/world"
)

var (
	validateJSON string
	validateMap  string

	historyOutput string
	historyConfig string
	historyLimit  int
	historyRun    string
	historyPath   string

	previewWidth int
	previewRaw   bool
)

// validateCmd loads an export without writing anything
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that an export can be converted",
	Long: `Decodes and validates a .json export or .map save and prints what a
conversion would produce. Nothing is written.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

// historyCmd lists ledger runs
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previous conversion runs of a vault",
	Long: `Lists the runs recorded in the vault's ledger, newest first.

With --run, lists every note of one run and its outcome. With --path, lists
the recorded writes of one note; the path is relative to the vault root.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

// previewCmd renders one note to the terminal
var previewCmd = &cobra.Command{
	Use:   "preview NOTE",
	Short: "Render a generated note in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func runValidate(cmd *cobra.Command, args []string) error {
	if validateJSON == "" && validateMap == "" {
		return errors.New("one of --json or --map is required")
	}
	ds, err := pipeline.LoadSources(pipeline.Sources{JSON: validateJSON, Map: validateMap})
	if err != nil {
		var verErr *world.VersionError
		var valErr *world.ValidationError
		switch {
		case errors.As(err, &verErr):
			logger.Error("Unsupported generator version", zap.String("version", verErr.Version))
		case errors.As(err, &valErr):
			logger.Error("Export failed validation", zap.Error(err))
		}
		return err
	}

	// Plan against a throwaway layout to count notes without touching disk.
	layout, err := vault.NewLayout(os.TempDir(), vault.DefaultDirs())
	if err != nil {
		return err
	}
	plan := pipeline.BuildPlan(world.NewAtlas(ds), layout, false)
	printValidation(cmd.OutOrStdout(), ds, plan)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.Resolve(historyConfig, historyOutput))
	if err != nil {
		return err
	}
	layout, err := vault.NewLayout(historyOutput, cfg.Vault)
	if err != nil {
		return err
	}
	path := cfg.LedgerPath(layout)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded for this vault.")
			return nil
		}
		return err
	}

	ledger, err := store.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	ctx := commandContext(cmd)
	switch {
	case historyRun != "":
		docs, err := ledger.Documents(ctx, historyRun)
		if err != nil {
			return err
		}
		printRunDocuments(cmd.OutOrStdout(), historyRun, docs)
	case historyPath != "":
		rel, err := vaultRelative(layout, historyPath)
		if err != nil {
			return err
		}
		docs, err := ledger.PathHistory(ctx, rel, historyLimit)
		if err != nil {
			return err
		}
		printPathHistory(cmd.OutOrStdout(), rel, docs)
	default:
		runs, err := ledger.ListRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), runs)
	}
	return nil
}

// vaultRelative turns p into the slash-separated form the ledger records.
// Absolute paths must lie inside the vault.
func vaultRelative(layout *vault.Layout, p string) (string, error) {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(layout.Root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%s is outside the vault %s", p, layout.Root)
		}
		p = rel
	}
	return filepath.ToSlash(filepath.Clean(p)), nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	text := string(data)
	if !previewRaw {
		text = previewBody(text)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(previewWidth),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(text)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", args[0], err)
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// previewBody drops the frontmatter and the custom-region markers, and turns
// wiki links into plain text, since a terminal cannot follow them.
func previewBody(text string) string {
	if strings.HasPrefix(text, "---\n") {
		if end := strings.Index(text[4:], "\n---\n"); end >= 0 {
			text = text[4+end+5:]
		}
	}
	text = strings.ReplaceAll(text, vault.CustomStart+"\n", "")
	text = strings.ReplaceAll(text, vault.CustomEnd, "")

	var sb strings.Builder
	for {
		open := strings.Index(text, "[[")
		if open < 0 {
			break
		}
		end := strings.Index(text[open:], "]]")
		if end < 0 {
			break
		}
		sb.WriteString(text[:open])
		link := text[open+2 : open+end]
		if i := strings.LastIndex(link, "|"); i >= 0 {
			link = link[i+1:]
		}
		sb.WriteString("**" + link + "**")
		text = text[open+end+2:]
	}
	sb.WriteString(text)
	return strings.TrimSpace(sb.String()) + "\n"
}
