package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fmgvault/internal/config"
	"fmgvault/internal/logging"
	"fmgvault/internal/pipeline"
	"fmgvault/internal/store"
	"fmgvault/internal/vault"
	"fmgvault/internal/watch"
)

// runFlags are shared by convert and watch.
type runFlags struct {
	json       string
	mapFile    string
	img        string
	output     string
	configPath string
	timeout    time.Duration
	workers    int
}

var flags runFlags

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flags.json, "json", "", "FMG .json export")
	cmd.Flags().StringVar(&flags.mapFile, "map", "", "FMG .map save")
	cmd.Flags().StringVar(&flags.img, "img", "", "Map image (.svg) to embed on the homepage (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Existing vault directory (required)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Config file (default: <output>/fmgvault.yaml)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Deadline for the whole run (0 = none)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent document writers (0 = config or one per CPU)")
	_ = cmd.MarkFlagRequired("img")
	_ = cmd.MarkFlagRequired("output")
}

// convertCmd runs one conversion
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Generate or refresh the vault from an FMG export",
	Long: `Reads a .json export (preferred) or a .map save and writes one note per
world entity into the output vault. Custom content inside existing notes is
preserved.

Validation problems abort before anything is written. Failures of single
notes are reported as warnings and do not change the exit status. A run in
which no note could be written at all exits non-zero, even though asset
copies or the run ledger may already have been written.

Example:
  fmgvault convert --json Tinyland.json --img Tinyland.svg --output ~/Vaults/Tinyland`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

// watchCmd reruns the conversion on input changes
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert, then convert again whenever the inputs change",
	Long: `Runs convert once and then watches the input files. A new export saved
over the old one triggers another run after the debounce window
(watch.debounce in fmgvault.yaml). Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// session is a resolved run: options for the pipeline plus the config that
// produced them.
type session struct {
	cfg    *config.Config
	opts   pipeline.Options
	layout *vault.Layout
}

func (f runFlags) sources() pipeline.Sources {
	return pipeline.Sources{JSON: f.json, Map: f.mapFile, Image: f.img}
}

// prepare validates flags and config. Nothing is written to the vault here
// beyond the diagnostic log directory when debug_mode is on.
func prepare(cmd *cobra.Command, f runFlags) (*session, error) {
	if f.json == "" && f.mapFile == "" {
		return nil, errors.New("one of --json or --map is required")
	}
	for _, p := range []string{f.json, f.mapFile, f.img} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("input: %w", err)
		}
	}
	info, err := os.Stat(f.output)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output %s is not a directory", f.output)
	}

	cfgPath := config.Resolve(f.configPath, f.output)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if cmd != nil && cmd.Flags().Changed("workers") {
		cfg.Generation.Workers = f.workers
	}
	if cmd != nil && cmd.Flags().Changed("timeout") {
		cfg.Generation.Timeout = f.timeout.String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}

	layout, err := vault.NewLayout(f.output, cfg.Vault)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(layout.LogsDir(), cfg.Logging.Options()); err != nil {
		logger.Warn("diagnostic logging disabled", zap.Error(err))
	}
	if logging.IsDebugMode() {
		logger.Debug("Diagnostic logs enabled", zap.String("dir", layout.LogsDir()))
	}
	if f.configPath != "" {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			logging.BootWarn("config %s not found, using defaults", cfgPath)
			logger.Warn("Config file not found, using defaults", zap.String("path", cfgPath))
		}
	}
	logging.Boot("config %s: workers=%d timeout=%s ledger=%t", cfgPath,
		cfg.Generation.Workers, cfg.Generation.Timeout, cfg.Ledger.Enabled)

	opts := pipeline.Options{
		Sources:        f.sources(),
		Output:         f.output,
		Dirs:           cfg.Vault,
		Workers:        cfg.Generation.Workers,
		Timeout:        cfg.GetTimeout(),
		IncludeRemoved: cfg.Generation.IncludeRemoved,
		SkipUnchanged:  cfg.Generation.SkipUnchanged,
	}
	if cfg.Ledger.Enabled {
		opts.Recorder = store.Deferred{Path: cfg.LedgerPath(layout)}
	}
	return &session{cfg: cfg, opts: opts, layout: layout}, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return convertOnce(ctx, cmd, s)
}

// convertOnce runs the pipeline and prints the report. Only a run that
// produced no document at all is an error.
func convertOnce(ctx context.Context, cmd *cobra.Command, s *session) error {
	logger.Info("Converting",
		zap.String("json", s.opts.Sources.JSON),
		zap.String("map", s.opts.Sources.Map),
		zap.String("output", s.opts.Output))

	report, err := pipeline.Run(ctx, s.opts)
	if err != nil {
		logger.Error("Conversion aborted", zap.Error(err))
		return err
	}

	printReport(cmd.OutOrStdout(), report)
	counts := report.Counts()
	logger.Info("Conversion finished",
		zap.String("run", report.RunID),
		zap.String("status", string(report.Status())),
		zap.Int("written", counts[pipeline.OutcomeWritten]),
		zap.Int("unchanged", counts[pipeline.OutcomeUnchanged]),
		zap.Int("failed", counts[pipeline.OutcomeFailed]),
		zap.Duration("duration", report.Duration()))

	if report.Status() == pipeline.StatusFailure {
		return fmt.Errorf("no documents were written (%d failures)", len(report.Failures()))
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd, flags)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := convertOnce(ctx, cmd, s); err != nil {
		logger.Warn("Initial conversion failed", zap.Error(err))
	}

	src := s.opts.Sources
	w, err := watch.New([]string{src.JSON, src.Map, src.Image}, s.cfg.GetDebounce(),
		func(ctx context.Context, changed []string) {
			logger.Info("Inputs changed", zap.Strings("files", changed))
			if err := convertOnce(ctx, cmd, s); err != nil {
				logger.Warn("Conversion failed", zap.Error(err))
			}
		})
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("Watching for changes. Press Ctrl+C to stop."))
	<-ctx.Done()
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
