// Package main provides the CLI entrypoint for pickwise.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/pickwise/internal/app"
	"github.com/verte-zerg/pickwise/internal/config"
	"github.com/verte-zerg/pickwise/internal/generator"
	"github.com/verte-zerg/pickwise/internal/logging"
	"github.com/verte-zerg/pickwise/internal/model"
	"github.com/verte-zerg/pickwise/internal/stats"
	"github.com/verte-zerg/pickwise/internal/store"
	"github.com/verte-zerg/pickwise/internal/tui"
)

const (
	defaultHistoryLast = 10
	defaultFormat      = "text"
)

var (
	flagLength      int
	flagWindow      int
	flagPicks       int
	flagMaxAttempts int
	flagVerbose     bool

	reportFormat string
	historyLast  int

	fileCfg config.FileConfig
	logger  = zap.NewNop()
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "pickwise",
		Short:             "Lottery draw analyzer and smart pick generator",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setup,
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: runTUICmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.IntVar(&flagLength, "length", model.DefaultLength, "digits per draw (3, 4, or 5)")
	flags.IntVar(&flagWindow, "window", model.DefaultWindow, "number of recent draws that count as seen")
	flags.IntVar(&flagPicks, "picks", model.DefaultPicks, "picks per generated batch")
	flags.IntVar(&flagMaxAttempts, "max-attempts", model.DefaultMaxAttempts, "candidate draws before falling back to unfiltered picks (0 = unbounded)")
	flags.BoolVar(&flagVerbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newPicksCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// setup loads the config file and builds the logger. The TUI logs to a file so
// the alternate screen stays clean.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	fileCfg = cfg

	level := logging.DefaultLevel
	if fileCfg.Log.Level != nil {
		level = *fileCfg.Log.Level
	}
	if flagVerbose {
		level = "debug"
	}
	logPath := ""
	if fileCfg.Log.File != nil {
		logPath = *fileCfg.Log.File
	}
	if logPath == "" && cmd == cmd.Root() {
		logPath = config.DefaultLogPath()
	}
	l, err := logging.New(level, logPath)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = l
	return nil
}

func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	applyIntConfig(cmd, "length", &flagLength, fileCfg.Analyzer.Length)
	applyIntConfig(cmd, "window", &flagWindow, fileCfg.Analyzer.Window)
	applyIntConfig(cmd, "picks", &flagPicks, fileCfg.Analyzer.Picks)
	applyIntConfig(cmd, "max-attempts", &flagMaxAttempts, fileCfg.Analyzer.MaxAttempts)

	cfg := model.Config{
		Length:      flagLength,
		Window:      flagWindow,
		Picks:       flagPicks,
		MaxAttempts: flagMaxAttempts,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// openApp opens the store and restores the saved history. An explicit
// --length overrides the saved length for subsequent uploads and picks.
func openApp(cmd *cobra.Command) (*app.App, func(), error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	storePath := config.DefaultDBPath()
	st, err := store.Open(storePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeStore := func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", zap.Error(cerr))
		}
	}

	a := app.New(cfg, st, generator.New(), logger)
	if err := a.Restore(cmd.Context()); err != nil {
		closeStore()
		return nil, nil, err
	}
	if cmd.Flags().Changed("length") {
		if err := a.SetLength(cfg.Length); err != nil {
			closeStore()
			return nil, nil, err
		}
	}
	return a, closeStore, nil
}

func runTUICmd(cmd *cobra.Command, _ []string) error {
	a, closeStore, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	program := tea.NewProgram(tui.NewModel(a), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file>",
		Short: "Load a draw history file (one draw per line)",
		Args:  cobra.ExactArgs(1),
		RunE:  runLoadCmd,
	}
}

func runLoadCmd(cmd *cobra.Command, args []string) error {
	a, closeStore, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := a.UploadFile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Loaded %d Pick %d draws, skipped %d lines.\n\n", res.Kept, a.State().Length, res.Dropped); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return stats.RenderSummary(out, res.Analysis)
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show statistics for the saved history",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportFormat, "format", defaultFormat, "output format: text, json, or yaml")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	a, closeStore, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if a.State().Analysis == nil {
		logger.Info("no saved history; load one with: pickwise load <file>")
	}
	return writeReport(cmd.OutOrStdout(), a.Analysis(), reportFormat)
}

func writeReport(w io.Writer, a model.Analysis, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		return stats.RenderAll(w, a, stats.TerminalWidth())
	case "json":
		data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(a, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("--format must be text, json, or yaml")
	}
}

func newPicksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "picks",
		Short: "Generate a batch of smart picks from the saved history",
		Args:  cobra.NoArgs,
		RunE:  runPicksCmd,
	}
}

func runPicksCmd(cmd *cobra.Command, _ []string) error {
	a, closeStore, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if len(a.State().History) == 0 {
		logger.Info("no saved history; every pair and sum counts as overdue")
	}
	picks, err := a.GeneratePicks(cmd.Context())
	if err != nil {
		return err
	}
	return stats.RenderPicks(cmd.OutOrStdout(), picks)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously generated pick batches",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "number of recent batches (0 = all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	a, closeStore, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	batches, err := a.PickHistory(cmd.Context(), historyLast)
	if err != nil {
		return err
	}
	return writeBatches(cmd.OutOrStdout(), batches)
}

func writeBatches(w io.Writer, batches []model.PickBatch) error {
	if len(batches) == 0 {
		_, err := fmt.Fprintln(w, "No picks generated yet.")
		return err
	}
	for _, batch := range batches {
		if _, err := fmt.Fprintf(w, "Batch %d  %s  Pick %d\n", batch.ID, batch.CreatedAt.Local().Format("2006-01-02 15:04"), batch.Length); err != nil {
			return err
		}
		if err := stats.RenderPicks(w, batch.Picks); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logger.Info("created config", zap.String("path", path))
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# pickwise configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyzer]
# length = %d             # Digits per draw (3, 4, or 5)
# window = %d            # Recent draws that count as seen
# picks = %d             # Picks per generated batch
# max-attempts = %d  # Candidate draws before unfiltered fallback (0 = unbounded)

[log]
# level = %q          # debug, info, warn, error
# file = ""               # Log file (default: stderr, TUI logs to %s)
`,
		model.DefaultLength,
		model.DefaultWindow,
		model.DefaultPicks,
		model.DefaultMaxAttempts,
		logging.DefaultLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if err := app.ValidateLength(cfg.Length); err != nil {
		return fmt.Errorf("--length: %w", err)
	}
	if cfg.Window < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	if cfg.Picks < 1 {
		return fmt.Errorf("--picks must be >= 1")
	}
	if cfg.MaxAttempts < 0 {
		return fmt.Errorf("--max-attempts must be >= 0")
	}
	return nil
}
