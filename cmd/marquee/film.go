package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/five82/marquee/internal/app"
	"github.com/five82/marquee/internal/detail"
	"github.com/five82/marquee/internal/events"
	"github.com/five82/marquee/internal/kinopoisk"
	"github.com/five82/marquee/internal/logging"
)

const descriptionWidth = 78

func newFilmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "film <id>",
		Short: "Print details for one film",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid film id %q", args[0])
			}

			svc, err := app.Open(flags.configPath, flags.verbose, logging.Console(flags.verbose))
			if err != nil {
				return err
			}
			defer svc.Close()

			agg := events.NewAggregator(svc.Logger)
			controller := detail.NewController(svc.Repository, agg, svc.Logger)
			defer controller.Close()

			controller.Load(&id)
			st, err := waitForFilm(cmd.Context(), controller)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if st.Film == nil {
				return fmt.Errorf("film %d: %s", id, st.Error)
			}
			printFilm(out, *st.Film)
			if st.HasError() {
				for _, msg := range drainSnackbars(agg) {
					fmt.Fprintf(cmd.ErrOrStderr(), "note: %s\n", msg)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", st.Error)
			}
			return nil
		},
	}
}

// waitForFilm blocks until the controller settles on a film or an error.
func waitForFilm(ctx context.Context, c *detail.Controller) (detail.State, error) {
	for {
		st := c.State()
		if !st.Loading && (st.Film != nil || st.HasError()) {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-c.Changes():
		}
	}
}

func drainSnackbars(agg *events.Aggregator) []string {
	var msgs []string
	for {
		select {
		case ev := <-agg.UIEvents():
			if sb, ok := ev.(events.ShowSnackbar); ok {
				msgs = append(msgs, sb.Message)
			}
		default:
			return msgs
		}
	}
}

func printFilm(w io.Writer, f kinopoisk.Film) {
	fmt.Fprintln(w, f.Title())
	if orig := f.NameOriginal; orig != "" && orig != f.Title() {
		fmt.Fprintf(w, "  %s\n", orig)
	}

	var facts []string
	if f.Year > 0 {
		facts = append(facts, strconv.Itoa(f.Year))
	}
	if rt := f.Runtime(); rt != "" {
		facts = append(facts, rt)
	}
	if f.RatingKinopoisk > 0 {
		facts = append(facts, fmt.Sprintf("KP %.1f", f.RatingKinopoisk))
	}
	if f.RatingImdb > 0 {
		facts = append(facts, fmt.Sprintf("IMDb %.1f", f.RatingImdb))
	}
	if len(facts) > 0 {
		fmt.Fprintln(w, strings.Join(facts, " · "))
	}
	if genres := f.GenreNames(); len(genres) > 0 {
		fmt.Fprintf(w, "Genres:    %s\n", strings.Join(genres, ", "))
	}
	if countries := f.CountryNames(); len(countries) > 0 {
		fmt.Fprintf(w, "Countries: %s\n", strings.Join(countries, ", "))
	}
	if f.Slogan != "" {
		fmt.Fprintf(w, "«%s»\n", f.Slogan)
	}
	desc := f.Description
	if desc == "" {
		desc = f.ShortDescription
	}
	if desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, wordwrap.String(desc, descriptionWidth))
	}
	if f.WebURL != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, f.WebURL)
	}
}
