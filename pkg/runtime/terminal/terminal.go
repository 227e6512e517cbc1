package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/maritime-atlas/pkg/bootstrap"
	"github.com/de-tools/maritime-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/maritime-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/maritime-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	loader   commands.Loader
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	// Loader defaults to DefaultLoader.
	Loader commands.Loader
	Output io.Writer
	// LogOutput receives the structured log, stderr when nil.
	LogOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Loader == nil {
		opts.Loader = DefaultLoader(opts.LogOutput)
	}

	cli := &CLI{
		loader:   opts.Loader,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	if args != nil {
		cli.rootCmd.SetArgs(args)
	}
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "atlas",
		Short:         "Maritime report aggregation tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewReportCmd(cli.loader, cli.reporter))

	return cmd
}

// DefaultLoader wires the report pipeline from the configuration file.
func DefaultLoader(logOutput io.Writer) commands.Loader {
	return func(ctx context.Context, configPath string) (*commands.Session, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		logger := bootstrap.NewLogger(cfg, logOutput)
		ctx = logger.WithContext(ctx)

		app, err := bootstrap.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		sink, err := bootstrap.NewSink(ctx, cfg.Export)
		if err != nil {
			_ = app.Close()
			return nil, err
		}

		return &commands.Session{
			Assembler: app.Assembler,
			Sink:      sink,
			History:   app.History,
			Logger:    logger,
			Close:     app.Close,
		}, nil
	}
}
