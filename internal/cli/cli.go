package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/smartnodego/internal/app"
	"github.com/specialistvlad/smartnodego/internal/catalog"
	"github.com/specialistvlad/smartnodego/internal/report"
	"github.com/spf13/cobra"
)

// ConfigEnv names the environment variable read when run gets no
// configuration path. It may come from the env file.
const ConfigEnv = "SMARTNODE_CONFIG"

// DefaultEnvFile is loaded when present; naming another file makes it
// mandatory.
const DefaultEnvFile = ".env"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// options are the flags shared by every command.
type options struct {
	envFile         string
	configPath      string
	baseNamespace   string
	pacing          time.Duration
	logFormat       string
	logLevel        string
	healthcheckPort int
}

// Execute runs the command line in args. Logs go to stderr and reports to
// stdout. Every failure is returned as an *ExitError.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer, modules ...catalog.Module) error {
	cmd := NewRootCommand(stdout, stderr, modules...)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// NewRootCommand builds the smartnodego command tree.
func NewRootCommand(stdout, stderr io.Writer, modules ...catalog.Module) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "smartnodego",
		Short: "Boot a node of smart components from declarative configuration",
		Long: `smartnodego reads a component configuration (HCL, YAML or JSON), builds every
component through the units compiled into the binary, runs their init hooks and
schedules their recurring hooks. A component that fails to build is reported
and skipped; the node keeps going with the rest.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadDotEnv(opts.envFile, cmd.Flags().Changed("env-file"))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	flags := root.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", DefaultEnvFile, "Environment file loaded before anything else.")
	flags.StringVar(&opts.baseNamespace, "base-namespace", catalog.DefaultBase, "Namespace relative unit references ('.sensors.virtual') resolve against.")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	root.AddCommand(
		newRunCommand(opts, stdout, stderr, modules),
		newValidateCommand(opts, stdout, stderr, modules),
		newUnitsCommand(opts, stdout, stderr, modules),
	)
	return root
}

func newRunCommand(opts *options, stdout, stderr io.Writer, modules []catalog.Module) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [CONFIG]",
		Short: "Boot the node and serve until interrupted",
		Long: `Boot the node from CONFIG, a configuration file or a directory of them.
Without CONFIG the path is taken from --config or $` + ConfigEnv + `.`,
		Args: maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.configPath = args[0]
			}
			if opts.configPath == "" {
				opts.configPath = os.Getenv(ConfigEnv)
			}
			if opts.configPath == "" {
				return usageError("a configuration path is required: pass CONFIG, --config or set %s", ConfigEnv)
			}

			a, err := newApp(opts, stderr, modules)
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), stdout)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to the component configuration file or directory.")
	cmd.Flags().DurationVar(&opts.pacing, "pacing", app.DefaultPacing, "Pause between two components during boot.")
	cmd.Flags().IntVar(&opts.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	return cmd
}

func newValidateCommand(opts *options, stdout, stderr io.Writer, modules []catalog.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG",
		Short: "Check that every component names a known unit and symbol",
		Long: `Load CONFIG and resolve the unit and symbol of every component without
building anything. Exits with status 1 when a component would fail.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath = args[0]
			a, err := newApp(opts, stderr, modules)
			if err != nil {
				return err
			}

			outcomes, err := a.Validate(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.New(stdout).Check(outcomes); err != nil {
				return err
			}

			failed := 0
			for _, o := range outcomes {
				if o.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d components failed validation", failed, len(outcomes))}
			}
			return nil
		},
	}
}

func newUnitsCommand(opts *options, stdout, stderr io.Writer, modules []catalog.Module) *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "List the units compiled into the binary",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(opts, stderr, modules)
			if err != nil {
				return err
			}
			return report.New(stdout).Units(a.Units(cmd.Context()))
		},
	}
}

func newApp(opts *options, logW io.Writer, modules []catalog.Module) (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPath:      opts.configPath,
		EnvFile:         opts.envFile,
		BaseNamespace:   opts.baseNamespace,
		Pacing:          opts.pacing,
		LogFormat:       opts.logFormat,
		LogLevel:        opts.logLevel,
		HealthcheckPort: opts.healthcheckPort,
	})
	if err != nil {
		return nil, usageError("%v", err)
	}
	return app.NewApp(logW, cfg, modules...), nil
}

// loadDotEnv loads environment variables from path. A missing file is only an
// error when the user named it.
func loadDotEnv(path string, explicit bool) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return usageError("%v", err)
		}
		return nil
	}
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError("%v", err)
		}
		return nil
	}
}
