package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fmgvault/internal/logging"
)

var (
	// Global flags
	verbose bool

	// Logger
	logger *zap.Logger

	// version is overridden at build time with -ldflags "-X main.version=...".
	version = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fmgvault",
	Short: "Turn a Fantasy Map Generator world into a linked Markdown vault",
	Long: `fmgvault converts a Fantasy Map Generator export (.json) or save (.map)
into a vault of cross-linked Markdown notes: one note per culture, burg,
state, province, religion, river, route, biome, name base and point of
interest, plus a homepage and dataview summaries.

Text between the CUSTOM-START and CUSTOM-END markers of a note is kept
when the vault is regenerated.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fmgvault version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fmgvault %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	addRunFlags(convertCmd)
	addRunFlags(watchCmd)
	validateCmd.Flags().StringVar(&validateJSON, "json", "", "FMG .json export")
	validateCmd.Flags().StringVar(&validateMap, "map", "", "FMG .map save")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "", "Vault directory (required)")
	historyCmd.Flags().StringVar(&historyConfig, "config", "", "Config file (default: <output>/fmgvault.yaml)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show (0 = all)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "List the notes of one run")
	historyCmd.Flags().StringVar(&historyPath, "path", "", "List the recorded writes of one note")
	historyCmd.MarkFlagsMutuallyExclusive("run", "path")
	_ = historyCmd.MarkFlagRequired("output")
	previewCmd.Flags().IntVar(&previewWidth, "width", 80, "Word wrap width")
	previewCmd.Flags().BoolVar(&previewRaw, "raw", false, "Keep frontmatter and custom markers")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
