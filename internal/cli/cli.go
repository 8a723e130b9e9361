// Package cli implements the terraces command-line interface.
//
// This package provides commands for analyzing phylogenetic terraces from
// a Newick supertree and a presence/absence data matrix, rendering the
// compressed tree-space DAG, serving the analysis over HTTP, and managing
// the result cache and run history. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - analyze: Count, enumerate, or detect the trees on a terrace
//   - render: Draw the compressed tree-space DAG as DOT, SVG, or PNG
//   - serve: Expose the analysis as an HTTP API
//   - cache: Manage the analysis result cache
//   - runs: Show and prune the analysis run history
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/RCBiczok/terraces/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/RCBiczok/terraces/pkg/buildinfo"
)

// Execute runs the terraces CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the terraces CLI under the given context.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree. The
// logger is attached to the context and accessible to all commands via
// loggerFromContext.
func ExecuteContext(ctx context.Context) error {
	var verbose bool
	var configPath string

	root := &cobra.Command{
		Use:          "terraces",
		Short:        "Terraces analyzes phylogenetic terraces",
		Long:         `Terraces counts, enumerates, and detects the rooted binary trees that induce the same per-partition subtrees as a given supertree, driven by the rooted-triple constraints the supertree implies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/terraces/config.toml)")

	root.AddCommand(newAnalyzeCmd(&configPath))
	root.AddCommand(newRenderCmd())
	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newCacheCmd())
	root.AddCommand(newRunsCmd(&configPath))

	return root.ExecuteContext(ctx)
}
