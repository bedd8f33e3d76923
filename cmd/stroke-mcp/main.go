package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/stroke-tools-mcp/internal/config"
	"github.com/ironsheep/stroke-tools-mcp/internal/logging"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "stroke-mcp",
		Short: "MCP server that recognizes freehand strokes as lines, circles and parabolas",
		Long: `stroke-mcp turns freehand pen strokes into clean geometric shapes.

Run without a subcommand (or with "serve") it speaks the MCP protocol over
stdin/stdout; configure it in your MCP client. The other subcommands run the
same recognizer from the shell.

Environment variables:
  STROKE_MCP_LOG_LEVEL=debug    Log every estimator verdict to stderr
  STROKE_MCP_SENSITIVITY=70     Default sensitivity, 0 (strict) to 100 (loose)
  STROKE_MCP_SEED=42            Pin the random stream for repeatable results`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runServe,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		a.newServeCmd(),
		a.newRecognizeCmd(),
		a.newParamsCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and installs the stderr logger. stdout is
// reserved for MCP traffic and command output.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logging.SetLogger(logger)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
