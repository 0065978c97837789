package terminal

import (
	"io"
	"os"

	"github.com/de-tools/research-reports/pkg/runtime/terminal/commands"
	"github.com/de-tools/research-reports/pkg/runtime/terminal/export"
	"github.com/de-tools/research-reports/pkg/services/report"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	registry report.Registry
	connect  commands.Connector
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry report.Registry
	Connect  commands.Connector
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Registry == nil {
		opts.Registry = report.DefaultRegistry()
	}

	cli := &CLI{
		registry: opts.Registry,
		connect:  opts.Connect,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, mainly for tests
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reports",
		Short:         "Research data reporting tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewGenerateCmd(cli.registry, cli.connect, cli.reporter))
	cmd.AddCommand(commands.NewTypesCmd(cli.registry))

	return cmd
}
