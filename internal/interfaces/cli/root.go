// Package cli is the druglike command line: the server, one-shot filtering
// and annotation, the terminal dashboard and dataset management.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/druglike/internal/application/screening"
	"github.com/turtacn/druglike/internal/config"
	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/internal/infrastructure/storage/minio"
	"github.com/turtacn/druglike/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputTSV   = "tsv"
)

type cliContextKey struct{}

// RootOptions holds the global flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration
}

// CLIContext carries the initialised dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	Timeout      time.Duration

	deps Dependencies
}

// Dependencies overrides collaborators the commands would otherwise build
// from configuration.  Zero fields mean "build from config".
type Dependencies struct {
	Source   screening.Source
	Datasets minio.DatasetRepository
	Logger   logging.Logger
}

// Option configures the root command.
type Option func(*Dependencies)

// WithSource replaces the configured dataset source.
func WithSource(src screening.Source) Option {
	return func(d *Dependencies) { d.Source = src }
}

// WithDatasetRepository replaces the MinIO dataset repository.
func WithDatasetRepository(repo minio.DatasetRepository) Option {
	return func(d *Dependencies) { d.Datasets = repo }
}

// WithLogger replaces the logger built from configuration.
func WithLogger(l logging.Logger) Option {
	return func(d *Dependencies) { d.Logger = l }
}

// NewRootCommand creates the root command with its global flags and every
// subcommand.
func NewRootCommand(opts ...Option) *cobra.Command {
	ro := &RootOptions{}
	var deps Dependencies
	for _, o := range opts {
		o(&deps)
	}

	cmd := &cobra.Command{
		Use:   "druglike",
		Short: "Drug-likeness screening of approved drugs",
		Long: "druglike annotates a compound dataset with molecular weight, LogP, hydrogen bond\n" +
			"donors and acceptors and rotatable bonds, then filters it by Lipinski's Rule of\n" +
			"Five and the Rule of Three.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, ro, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&ro.ConfigPath, "config", "c", "", "config file path (default: ./druglike.yaml if present)")
	pf.StringVar(&ro.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.StringVarP(&ro.OutputFormat, "output", "o", OutputTable, "output format (table, json, tsv)")
	pf.BoolVarP(&ro.Verbose, "verbose", "v", false, "enable debug logging")
	pf.DurationVar(&ro.Timeout, "timeout", 2*time.Minute, "timeout for one-shot commands")

	cmd.AddCommand(
		newServeCmd(),
		newFilterCmd(),
		newAnnotateCmd(),
		newTUICmd(),
		newDatasetCmd(),
		newRemoteCmd(),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, ro *RootOptions, deps Dependencies) error {
	switch ro.OutputFormat {
	case OutputTable, OutputJSON, OutputTSV:
	default:
		return errors.New(errors.ErrCodeBadRequest, "invalid output format").
			WithDetail(fmt.Sprintf("output=%q expected table|json|tsv", ro.OutputFormat))
	}

	cfg, path, err := initConfig(ro)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger, err = initLogger(cfg, ro)
		if err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	}
	logging.SetDefault(logger)

	cc := &CLIContext{
		Config:       cfg,
		ConfigPath:   path,
		Logger:       logger,
		OutputFormat: ro.OutputFormat,
		Verbose:      ro.Verbose,
		Timeout:      ro.Timeout,
		deps:         deps,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cc))
	return nil
}

// configSearchPaths lists where a config file is looked for when --config
// is not given.
func configSearchPaths() []string {
	paths := []string{"./druglike.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".druglike", "config.yaml"))
	}
	return append(paths, "/etc/druglike/config.yaml")
}

// initConfig loads configuration with priority flags > env > file > defaults
// and returns the file it read, if any.
func initConfig(ro *RootOptions) (*config.Config, string, error) {
	if ro.ConfigPath != "" {
		cfg, err := config.Load(ro.ConfigPath)
		return cfg, ro.ConfigPath, err
	}
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}
	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// initLogger builds the logger.  Unless the config names outputs, logs go
// to stderr so stdout carries only command output.
func initLogger(cfg *config.Config, ro *RootOptions) (logging.Logger, error) {
	logCfg := cfg.Log
	if ro.LogLevel != "" {
		logCfg.Level = ro.LogLevel
	}
	if ro.Verbose {
		logCfg.Level = "debug"
	}
	if len(logCfg.OutputPaths) == 0 {
		logCfg.OutputPaths = []string{"stderr"}
	}
	return logging.NewLogger(logCfg)
}

// GetCLIContext extracts the CLIContext stored by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cc == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cc, nil
}

// Execute runs the CLI.  Errors are printed to stderr and returned so main
// can exit non-zero.
func Execute(ctx context.Context, opts ...Option) error {
	root := NewRootCommand(opts...)
	if err := root.ExecuteContext(ctx); err != nil {
		PrintError(root, err)
		return err
	}
	return nil
}

// PrintError writes err to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", strings.TrimSpace(err.Error()))
}
