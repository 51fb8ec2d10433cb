package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/marquee/internal/app"
	"github.com/five82/marquee/internal/logging"
	"github.com/five82/marquee/internal/repository"
)

func newFeaturedCmd(flags *rootFlags) *cobra.Command {
	var pages int
	var byRating bool
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "Print the featured film list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Open(flags.configPath, flags.verbose, logging.Console(flags.verbose))
			if err != nil {
				return err
			}
			defer svc.Close()

			if pages <= 0 {
				pages = svc.Config.FeaturedPages
			}
			list, err := svc.Repository.Featured(cmd.Context(), pages)
			if err != nil && len(list.Films) == 0 {
				return fmt.Errorf("featured: %w", err)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "catalogue unavailable, showing list cached %s: %v\n",
					list.FetchedAt.Format(time.DateTime), err)
			}
			if byRating {
				repository.SortByRating(list.Films)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tID\tTITLE\tYEAR\tRATING\tGENRES")
			for i, f := range list.Films {
				rating := "-"
				if v, ok := f.RatingValue(); ok {
					rating = fmt.Sprintf("%.1f", v)
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
					i+1, f.FilmID, f.Title(), f.Year, rating, strings.Join(f.GenreNames(), ", "))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 0, "pages to fetch (default from config)")
	cmd.Flags().BoolVar(&byRating, "by-rating", false, "sort by rating")
	return cmd
}
