package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
)

// queryFlags son los filtros comunes a search y export. Los flags forman
// un único filtro; --query-file añade una lista de filtros que se combinan
// con OR.
type queryFlags struct {
	name        string
	netflix     bool
	keywords    []string
	releases    []string
	genre       string
	minStars    int
	maxPrice    float64
	queryFile   string
	sort        string
	limit       int
	offset      int
	withPaging  bool
}

func (f *queryFlags) register(cmd *cobra.Command, paging bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "exact show name")
	fs.BoolVar(&f.netflix, "netflix", false, "available on Netflix")
	fs.StringSliceVar(&f.keywords, "keyword", nil, "synopsis keyword, repeatable (any matches)")
	fs.StringSliceVar(&f.releases, "release-date", nil, "release year, repeatable")
	fs.StringVar(&f.genre, "genre", "", "genre name")
	fs.IntVar(&f.minStars, "min-stars", 0, "at least one rating with this many stars")
	fs.Float64Var(&f.maxPrice, "max-price", 0, "maximum price amount")
	fs.StringVar(&f.queryFile, "query-file", "", "YAML list of filters combined with OR")
	fs.StringVar(&f.sort, "sort", "", `sort fields, "-" for descending (e.g. "name,-price.amount")`)
	if paging {
		f.withPaging = true
		fs.IntVar(&f.limit, "limit", 0, "page size (0 uses the configured default)")
		fs.IntVar(&f.offset, "offset", 0, "rows to skip")
	}
}

// queries construye los filtros; sólo cuentan los flags indicados.
func (f *queryFlags) queries(cmd *cobra.Command) (showDomain.ShowQueries, error) {
	fs := cmd.Flags()

	var q showDomain.ShowQuery
	set := false
	if fs.Changed("name") {
		q.Name, set = &f.name, true
	}
	if fs.Changed("netflix") {
		q.AvailableOnNetflix, set = &f.netflix, true
	}
	if fs.Changed("genre") {
		q.Genre, set = &f.genre, true
	}
	if fs.Changed("min-stars") {
		q.MinStars, set = &f.minStars, true
	}
	if fs.Changed("max-price") {
		q.MaxPrice, set = &f.maxPrice, true
	}
	if len(f.keywords) > 0 {
		q.Keywords, set = f.keywords, true
	}
	if len(f.releases) > 0 {
		q.ReleaseDates, set = f.releases, true
	}

	var out showDomain.ShowQueries
	if f.queryFile != "" {
		data, err := os.ReadFile(f.queryFile)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.queryFile, err)
		}
	}
	if set {
		out = append(out, q)
	}
	return out, nil
}

func (f *queryFlags) page(def, max int) sharedQuery.OffsetPagination {
	if !f.withPaging {
		return sharedQuery.OffsetPagination{}
	}
	return sharedQuery.OffsetPagination{Limit: f.limit, Offset: f.offset}.Clamp(def, max)
}

func (f *queryFlags) sorts() []sharedQuery.Sort {
	return sharedQuery.ParseSort(f.sort)
}
