// Package main provides the CLI entrypoint for typer.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/typer/internal/config"
	"github.com/verte-zerg/typer/internal/generator"
	"github.com/verte-zerg/typer/internal/judge"
	"github.com/verte-zerg/typer/internal/layout"
	"github.com/verte-zerg/typer/internal/model"
	"github.com/verte-zerg/typer/internal/session"
	"github.com/verte-zerg/typer/internal/stats"
	"github.com/verte-zerg/typer/internal/store"
	"github.com/verte-zerg/typer/internal/tui"
)

const (
	defaultLayout      = "cyrillic" // every target is Cyrillic
	defaultObjects     = 30
	defaultIntervalMs  = 700
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultWeakWindow  = 20
	defaultCurveWindow = 5
)

var (
	playLayout     string
	playObjects    int
	playIntervalMs int
	playWindowMs   int
	playPreemptMs  int
	playFocusWeak  bool
	playWeakTop    int
	playWeakFactor float64
	playWeakWindow int
	playSeed       int64

	logLevel string
	logFile  string

	statsLayout      string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typer",
		Short:         "Timed key drill for Latin and Cyrillic layouts",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default: stderr, or the data dir while playing)")

	rootCmd.Flags().StringVar(&playLayout, "layout", defaultLayout, "keyboard layout: latin or cyrillic")
	rootCmd.Flags().IntVar(&playObjects, "objects", defaultObjects, "keys per session")
	rootCmd.Flags().IntVar(&playIntervalMs, "interval", defaultIntervalMs, "milliseconds between keys")
	rootCmd.Flags().IntVar(&playWindowMs, "window", int(judge.DefaultWindow.Milliseconds()), "timing window in milliseconds")
	rootCmd.Flags().IntVar(&playPreemptMs, "preempt", int(session.DefaultPreempt.Milliseconds()), "milliseconds before a key's time that input is accepted")
	rootCmd.Flags().BoolVar(&playFocusWeak, "focus-weak", false, "bias targets toward weak characters")
	rootCmd.Flags().IntVar(&playWeakTop, "weak-top", defaultWeakTop, "number of weak characters to focus on")
	rootCmd.Flags().Float64Var(&playWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak characters")
	rootCmd.Flags().IntVar(&playWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak chars")
	rootCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 uses the clock)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newKeysCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func newLogger(defaultOut io.Writer) (*slog.Logger, func(), error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, nil, fmt.Errorf("invalid --log-level value: %w", err)
	}
	out := defaultOut
	closeFn := func() {}
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closeFn = func() {
			if cerr := f.Close(); cerr != nil {
				logErrf("failed to close log file: %v\n", cerr)
			}
		}
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "layout", &playLayout, fileCfg.Play.Layout)
	applyIntConfig(cmd, "objects", &playObjects, fileCfg.Play.Objects)
	applyIntConfig(cmd, "interval", &playIntervalMs, fileCfg.Play.IntervalMs)
	applyIntConfig(cmd, "window", &playWindowMs, fileCfg.Play.WindowMs)
	applyIntConfig(cmd, "preempt", &playPreemptMs, fileCfg.Play.PreemptMs)
	applyBoolConfig(cmd, "focus-weak", &playFocusWeak, fileCfg.Play.FocusWeak)
	applyIntConfig(cmd, "weak-top", &playWeakTop, fileCfg.Play.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &playWeakFactor, fileCfg.Play.WeakFactor)
	applyIntConfig(cmd, "weak-window", &playWeakWindow, fileCfg.Play.WeakWindow)

	cfg := model.Config{
		Layout:     playLayout,
		Objects:    playObjects,
		Interval:   time.Duration(playIntervalMs) * time.Millisecond,
		Window:     time.Duration(playWindowMs) * time.Millisecond,
		Preempt:    time.Duration(playPreemptMs) * time.Millisecond,
		FocusWeak:  playFocusWeak,
		WeakTop:    playWeakTop,
		WeakFactor: playWeakFactor,
		WeakWindow: playWeakWindow,
		Seed:       playSeed,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}
	primary, err := layout.ParseLayout(cfg.Layout)
	if err != nil {
		return fmt.Errorf("invalid --layout value: %w", err)
	}
	cfg.Layout = primary.String()

	if logFile == "" {
		logFile = config.DefaultLogPath()
	}
	logger, closeLog, err := newLogger(io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	weakSet := map[rune]struct{}{}
	weakNoticePrinted := false
	if cfg.FocusWeak {
		aggs, err := st.GetWeakChars(context.Background(), cfg.WeakWindow, cfg.Layout)
		if err != nil {
			logErrf("failed to load weak chars: %v\n", err)
		} else {
			weakSet = stats.SelectWeakChars(aggs, cfg.WeakTop)
			if len(weakSet) == 0 {
				logErrln("no stats available for weak-char focus yet; using uniform targets")
				weakNoticePrinted = true
			}
		}
	}

	gen := generator.New()
	if cfg.Seed != 0 {
		gen = generator.NewWithSeed(cfg.Seed)
	}
	logger.Info("starting drill", "layout", cfg.Layout, "objects", cfg.Objects, "interval", cfg.Interval, "window", cfg.Window)
	drill := tui.NewModel(cfg, st, gen, logger, weakSet, weakNoticePrinted)
	program := tea.NewProgram(drill, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
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

func newKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Show which physical key each target uses",
		Args:  cobra.NoArgs,
		RunE:  runKeysCmd,
	}
}

func runKeysCmd(cmd *cobra.Command, _ []string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), renderKeyTable())
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func renderKeyTable() string {
	rows := make([][]string, 0, len(layout.Alphabet()))
	for _, c := range layout.Alphabet() {
		k := layout.ExpectedRawKey(c)
		latin, _ := layout.Latin.Rune(k)
		rows = append(rows, []string{c.Upper(), k.String(), string(latin)})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Target", "Key", "Latin").
		Rows(rows...).
		Render()
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLayout, "layout", "", "layout filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().IntVar(&statsTop, "top", 0, "only list the N most practised characters")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLayout != "" {
		l, err := layout.ParseLayout(statsLayout)
		if err != nil {
			return fmt.Errorf("invalid --layout value: %w", err)
		}
		statsLayout = l.String()
	}

	cfg := model.StatsConfig{
		Layout:      statsLayout,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), report, cfg.Layout)
}

func writeReport(w io.Writer, report stats.Report, layoutName string) error {
	title := "typer stats"
	if layoutName != "" {
		title += " · " + layoutName
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		title = titleStyle.Render(title)
	}
	if _, err := fmt.Fprintf(w, "%s\n\n", title); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.Render(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
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

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typer configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# layout = %q         # latin or cyrillic
# objects = %d              # Keys per session
# interval-ms = %d         # Milliseconds between keys
# window-ms = %d           # Timing window on either side of a key's time
# preempt-ms = %d         # How early a key starts accepting input
# focus-weak = false        # Bias targets toward weak characters
# weak-top = %d             # Number of weak characters to focus on
# weak-factor = %.1f        # Weight factor for weak characters
# weak-window = %d          # Number of recent sessions to compute weak chars
`,
		defaultLayout,
		defaultObjects,
		defaultIntervalMs,
		judge.DefaultWindow.Milliseconds(),
		session.DefaultPreempt.Milliseconds(),
		defaultWeakTop,
		defaultWeakFactor,
		defaultWeakWindow,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Objects <= 0 {
		return fmt.Errorf("--objects must be > 0")
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("--interval must be > 0")
	}
	if cfg.Window <= 0 {
		return fmt.Errorf("--window must be > 0")
	}
	if cfg.Preempt < cfg.Window {
		return fmt.Errorf("--preempt must be >= --window")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	if cfg.WeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
