package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/declutter/internal/config"
	"github.com/fenilsonani/declutter/internal/history"
	"github.com/fenilsonani/declutter/internal/logging"
	"github.com/fenilsonani/declutter/internal/organizer"
	"github.com/fenilsonani/declutter/internal/reporter"
	"github.com/fenilsonani/declutter/internal/scanner"
	"github.com/fenilsonani/declutter/internal/ui"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// exitError carries a process exit code up to main
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

type rootOptions struct {
	configPath  string
	dryRun      bool
	interactive bool
	keepOther   bool
	outputFmt   string
	outputFile  string
	logLevel    string
	logFormat   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

func exitCode(err error, w io.Writer) int {
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(w, "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(w, "Error:", err)
	return 1
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "declutter [flags] <dir>",
		Short: "Sort a messy folder into category subfolders",
		Long: `declutter walks a folder, sorts files into images, audio, video, documents
and archives folders, transliterates Cyrillic names into safe ASCII, unpacks
archives and removes the folders it emptied.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Please provide the folder to be scanned as an argument.")
				fmt.Fprint(out, cmd.UsageString())
				return &exitError{code: 1}
			}
			return runOrganize(cmd, opts, args[0], false)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file path (.yaml or .toml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&opts.outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	pf.StringVar(&opts.outputFile, "report-file", "", "save the report to a file instead of stdout")
	pf.BoolVar(&opts.keepOther, "keep-other", false, "leave unrecognized and extensionless files in place")

	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show what would be moved without touching anything")
	rootCmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "confirm the plan before moving files")

	rootCmd.AddCommand(newScanCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newHistoryCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Report what would be moved without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, opts, args[0], true)
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	var initFile bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Display the effective configuration",
		Long: `Prints the configuration in use as YAML. With --init the default
configuration is written to the config path if no file exists there yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfgPath, err := opts.resolveConfigPath()
			if err != nil {
				return err
			}

			if initFile {
				if _, err := os.Stat(cfgPath); err == nil {
					return fmt.Errorf("config file already exists: %s", cfgPath)
				}
				if err := config.Save(config.GetDefault(), cfgPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Config written to: %s\n", cfgPath)
				return nil
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Fprintf(out, "# Config file: %s\n", cfgPath)
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				fmt.Fprintln(out, "# File does not exist, showing defaults. Create it with: declutter config --init")
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg)
		},
	}
	cmd.Flags().BoolVar(&initFile, "init", false, "write the default configuration file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "declutter %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		},
	}
}

func runOrganize(cmd *cobra.Command, opts *rootOptions, dir string, scanOnly bool) error {
	out := cmd.OutOrStdout()

	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.applyFlags(cmd, cfg)
	if scanOnly {
		cfg.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	format, err := reporter.ParseFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	orgOpts := organizer.Options{
		Logger:    logger,
		SkipPaths: opts.statePaths(cfg),
	}
	if opts.interactive && !scanOnly {
		table, err := cfg.Table()
		if err != nil {
			return err
		}
		orgOpts.Confirm = func(result *scanner.ScanResult) (bool, error) {
			return ui.Confirm(ui.NewPlan(result, table, cfg.OtherFiles.Relocate))
		}
	}

	org, err := organizer.New(dir, cfg, orgOpts)
	if errors.Is(err, organizer.ErrInvalidRoot) {
		fmt.Fprintf(out, "'%s' is not a valid directory.\n", dir)
		return &exitError{code: 1}
	}
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	summary, err := org.Run(ctx)
	if summary != nil {
		recordRun(cfg, summary, logger)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if opts.outputFile != "" {
		if err := reporter.SaveToFile(summary, opts.outputFile, format); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(out, "Report saved to: %s\n", opts.outputFile)
	} else if err := reporter.New(out, format).Report(summary); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if summary.HasFailures() {
		return &exitError{code: 2}
	}
	return nil
}

// recordRun appends the run to the journal. Journal problems never fail a run.
func recordRun(cfg *config.Config, summary *organizer.Summary, logger *slog.Logger) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.NewStore(cfg.History.Dir)
	if err != nil {
		logger.Warn("history unavailable", "error", err)
		return
	}
	if err := store.Save(history.FromSummary(summary)); err != nil {
		logger.Warn("failed to record run", "error", err)
		return
	}
	if n, err := store.Prune(cfg.History.KeepDays); err != nil {
		logger.Warn("failed to prune history", "error", err)
	} else if n > 0 {
		logger.Debug("pruned history", "records", n)
	}
}

func (o *rootOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}
	if flags.Changed("keep-other") {
		cfg.OtherFiles.Relocate = !o.keepOther
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
}

// statePaths lists the files declutter itself owns, which a run must never
// move: the config file and the history journal.
func (o *rootOptions) statePaths(cfg *config.Config) []string {
	var paths []string
	if p, err := o.resolveConfigPath(); err == nil {
		paths = append(paths, p)
	}
	if cfg.History.Enabled {
		dir := cfg.History.Dir
		if dir == "" {
			dir, _ = history.DefaultDir()
		}
		paths = append(paths, dir)
	}
	return paths
}

func (o *rootOptions) resolveConfigPath() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.GetConfigPath()
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfgPath, err := o.resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.Load(cfgPath)
}
