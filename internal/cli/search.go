package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	queryFlags
	Explain bool
	Count   bool
}

// NewSearchCommand crea el comando search.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search shows with typed filters",
		Long: `Search shows. Flags build one filter whose criteria are AND-ed;
--query-file adds filters that are OR-ed with it.

Example:
  hexaspec search --genre "Crime drama" --min-stars 4 --sort -name
  hexaspec search --keyword dead --keyword lawyer --explain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts)
		},
	}

	opts.register(cmd, true)
	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "print the native query instead of running it")
	cmd.Flags().BoolVar(&opts.Count, "count", false, "print only the number of matches")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *SearchOptions) error {
	queries, err := opts.queries(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, opts.cfg, opts.log, false)
	if err != nil {
		return err
	}
	defer app.Close()

	page := opts.page(opts.cfg.PageLimit, opts.cfg.MaxPageLimit)
	out := cmd.OutOrStdout()

	switch {
	case opts.Explain:
		native, err := app.Explain(queries.ToSpecification(), page, opts.sorts())
		if err != nil {
			return err
		}
		fmt.Fprintln(out, native)
		return nil

	case opts.Count:
		n, err := app.Service.CountShows(ctx, queries)
		if err != nil {
			return err
		}
		if opts.Format == "json" {
			return writeJSON(out, map[string]int64{"count": n})
		}
		fmt.Fprintln(out, n)
		return nil
	}

	shows, err := app.Service.SearchShows(ctx, queries, page, opts.sorts())
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		if shows == nil {
			shows = []*showDomain.TvShow{}
		}
		return writeJSON(out, shows)
	}
	for _, s := range shows {
		fmt.Fprintln(out, showLine(s))
	}
	return nil
}

// showLine resume una serie en una línea de texto.
func showLine(s *showDomain.TvShow) string {
	genre, release := "-", "-"
	if s.Genre != nil {
		genre = s.Genre.Name
	}
	if s.ReleaseDate != nil {
		release = *s.ReleaseDate
	}
	stars := make([]string, len(s.StarRatings))
	for i, r := range s.StarRatings {
		stars[i] = fmt.Sprint(r.Stars)
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t[%s]\t%.2f %s",
		s.ID, s.Name, genre, release, strings.Join(stars, ","), s.Price.Amount, s.Price.Currency)
}
