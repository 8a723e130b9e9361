package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/RCBiczok/terraces/pkg/pipeline"
)

// newRunsCmd creates the run history command.
func newRunsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show and prune the analysis run history",
	}

	cmd.AddCommand(newRunsListCmd(configPath))
	cmd.AddCommand(newRunsClearCmd(configPath))

	return cmd
}

// newRunsListCmd creates the "runs list" subcommand.
func newRunsListCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded analysis runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if store == nil {
				printInfo("run history is disabled")
				return nil
			}
			defer store.Close()

			runs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("no runs recorded")
				return nil
			}
			for _, run := range runs {
				printKeyValue(run.CreatedAt.Local().Format(time.DateTime),
					run.ID[:8]+"  size="+run.TerraceSize+"  "+flagNames(run.Flags))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show")
	return cmd
}

// newRunsClearCmd creates the "runs clear" subcommand.
func newRunsClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			if store == nil {
				printInfo("run history is disabled")
				return nil
			}
			defer store.Close()

			runs, err := store.List(ctx, 0)
			if err != nil {
				return err
			}
			for _, run := range runs {
				if err := store.Delete(ctx, run.ID); err != nil {
					return err
				}
			}
			printSuccess("Removed %d runs", len(runs))
			return nil
		},
	}
}

// flagNames renders the output mode flags of a run.
func flagNames(flags int) string {
	names := ""
	add := func(name string) {
		if names != "" {
			names += "+"
		}
		names += name
	}
	if flags&pipeline.FlagCount != 0 {
		add("count")
	}
	if flags&pipeline.FlagEnumerate != 0 {
		add("enumerate")
	}
	if flags&pipeline.FlagEnumerateCompressed != 0 {
		add("compress")
	}
	if flags&pipeline.FlagDetect != 0 {
		add("detect")
	}
	return names
}
