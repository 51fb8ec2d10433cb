package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/marquee/internal/app"
	"github.com/five82/marquee/internal/logging"
)

func newCacheCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the local film cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newCacheStatsCmd(flags))
	cmd.AddCommand(newCachePruneCmd(flags))
	cmd.AddCommand(newCacheClearCmd(flags))
	return cmd
}

func newCacheStatsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Open(flags.configPath, flags.verbose, logging.Console(flags.verbose))
			if err != nil {
				return err
			}
			defer svc.Close()

			stats, err := svc.Cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:           %s\n", svc.Config.CachePath)
			fmt.Fprintf(out, "films:          %d\n", stats.Films)
			fmt.Fprintf(out, "featured pages: %d\n", stats.FeaturedPages)
			if !stats.Oldest.IsZero() {
				fmt.Fprintf(out, "oldest entry:   %s\n", stats.Oldest.Format(time.DateTime))
			}
			return nil
		},
	}
}

func newCachePruneCmd(flags *rootFlags) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove entries older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Open(flags.configPath, flags.verbose, logging.Console(flags.verbose))
			if err != nil {
				return err
			}
			defer svc.Close()

			if olderThan <= 0 {
				olderThan = svc.Config.CacheMaxAge
			}
			removed, err := svc.Cache.Prune(cmd.Context(), olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries older than %s\n", removed, olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "age cutoff (default cache.max_age)")
	return cmd
}

func newCacheClearCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Open(flags.configPath, flags.verbose, logging.Console(flags.verbose))
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Cache.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	}
}
