// Package cli implements the metanetx command line: building snapshots and
// querying them.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/MetaNetX-Resolver/internal/config"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration

	newApp AppFactory
	app    *App
}

// App returns the wired application, building it on first use.
func (c *CLIContext) App(ctx context.Context) (*App, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := c.newApp(ctx, c.Config, c.Logger)
	if err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

// RootOption customizes NewRootCommand, mostly for tests.
type RootOption func(*rootSettings)

type rootSettings struct {
	newApp AppFactory
	cfg    *config.Config
	logger logging.Logger

	// cliCtx is set once the pre-run hook succeeds.
	cliCtx *CLIContext
}

// close releases the App of the finished invocation.  It runs whether or
// not the command failed.
func (s *rootSettings) close() error {
	c := s.cliCtx
	if c == nil {
		return nil
	}
	s.cliCtx = nil
	_ = c.Logger.Sync()
	if c.app == nil {
		return nil
	}
	return c.app.Close()
}

// WithAppFactory replaces NewApp.
func WithAppFactory(f AppFactory) RootOption { return func(s *rootSettings) { s.newApp = f } }

// WithConfig skips config file discovery.
func WithConfig(cfg *config.Config) RootOption { return func(s *rootSettings) { s.cfg = cfg } }

func WithLogger(l logging.Logger) RootOption { return func(s *rootSettings) { s.logger = l } }

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand(options ...RootOption) *cobra.Command {
	cmd, _ := newRootCommand(options...)
	return cmd
}

func newRootCommand(options ...RootOption) (*cobra.Command, *rootSettings) {
	opts := &RootOptions{}
	settings := &rootSettings{newApp: NewApp}
	for _, o := range options {
		o(settings)
	}

	cmd := &cobra.Command{
		Use:   "metanetx",
		Short: "MetaNetX cross-reference resolver",
		Long: "metanetx builds snapshots of the MetaNetX equivalence graph from the raw\n" +
			"property and cross-reference files, and resolves compound, reaction and\n" +
			"compartment identifiers and names against them.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, settings)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./metanetx.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "timeout for query and snapshot commands")

	cmd.AddCommand(
		NewBuildCmd(),
		NewResolveCmd(),
		NewSearchCmd(),
		NewXrefsCmd(),
		NewSnapshotsCmd(),
	)
	return cmd, settings
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, s *rootSettings) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.InvalidParam("output must be text, json or table").WithDetail(opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg := s.cfg
	if cfg == nil {
		var err error
		if cfg, err = initConfig(opts); err != nil {
			return fmt.Errorf("config initialization failed: %w", err)
		}
	}

	logger := s.logger
	if logger == nil {
		var err error
		if logger, err = initLogger(cfg, opts); err != nil {
			return fmt.Errorf("logger initialization failed: %w", err)
		}
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
		newApp:       s.newApp,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	s.cliCtx = cliCtx
	return nil
}

// initConfig loads configuration with priority: env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	return config.LoadOrEnv(findConfig(opts.ConfigPath))
}

// findConfig returns explicit, or the first existing default location, or
// "" when there is none.
func findConfig(explicit string) string {
	if explicit != "" {
		return explicit
	}
	searchPaths := []string{"./metanetx.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".metanetx", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/metanetx/config.yaml")

	for _, p := range searchPaths {
		if _, statErr := os.Stat(p); statErr == nil {
			return p
		}
	}
	return ""
}

// initLogger creates a console logger on stderr so that stdout carries only
// command output.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeValidation, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext applies the global timeout.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	return execute(newRootCommand())
}

func execute(rootCmd *cobra.Command, s *rootSettings) error {
	err := rootCmd.Execute()
	if cerr := s.close(); err == nil {
		err = cerr
	}
	if err != nil {
		PrintError(rootCmd, err)
	}
	return err
}

// tableProvider is implemented by results that render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}
	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprint(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.  AppError codes
// are shown so that scripts can match on them.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	prefix := color.New(color.FgRed, color.Bold).Sprint("Error:")
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s [%s] %s\n", prefix, code, err.Error())
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", prefix, err.Error())
}

// PrintSuccess writes a formatted success message to stderr.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("OK:"), msg)
}

// FormatTable renders headers and rows with tablewriter.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var sb strings.Builder
	table := tablewriter.NewWriter(&sb)
	table.Header(headers)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	return sb.String()
}

// truncateString shortens s to max runes with a trailing ellipsis.
func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max || max < 4 {
		return s
	}
	return string(r[:max-3]) + "..."
}

//Personal.AI order the ending
