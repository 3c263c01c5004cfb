package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/filesystem"
)

// seedShow es el formato de los ficheros YAML de carga.
type seedShow struct {
	ID                 string  `yaml:"id"`
	Name               string  `yaml:"name"`
	Synopsis           string  `yaml:"synopsis"`
	Genre              string  `yaml:"genre"`
	AvailableOnNetflix bool    `yaml:"available_on_netflix"`
	ReleaseDate        *string `yaml:"release_date"`
	Stars              []int   `yaml:"stars"`
	Price              struct {
		Amount   float64 `yaml:"amount"`
		Currency string  `yaml:"currency"`
	} `yaml:"price"`
}

func (s seedShow) toShow() (*showDomain.TvShow, error) {
	show := &showDomain.TvShow{
		Name:               s.Name,
		Synopsis:           s.Synopsis,
		AvailableOnNetflix: s.AvailableOnNetflix,
		ReleaseDate:        s.ReleaseDate,
		Price:              showDomain.Price{Amount: s.Price.Amount, Currency: s.Price.Currency},
	}
	if s.ID != "" {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return nil, fmt.Errorf("show %q: invalid id: %w", s.Name, err)
		}
		show.ID = id
	}
	if s.Genre != "" {
		show.Genre = &showDomain.Genre{Name: s.Genre}
	}
	for _, stars := range s.Stars {
		show.StarRatings = append(show.StarRatings, showDomain.StarRating{Stars: stars})
	}
	return show, nil
}

// NewSeedCommand crea el comando seed.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load shows from a YAML, JSON or XLSX file",
		Long: `Load shows from a file. The format follows the extension:
  .yaml/.yml  list of shows (name, genre, stars, price, ...)
  .json       snapshot written by "hexaspec export"
  .xlsx       workbook written by "hexaspec export" or GET /shows/export

Shows whose id already exists are skipped, so seeding twice is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, rootOpts, args[0])
		},
	}
}

func runSeed(cmd *cobra.Command, opts *RootOptions, path string) error {
	shows, err := readShows(cmd, path)
	if err != nil {
		return err
	}

	app, err := NewApp(cmd.Context(), opts.cfg, opts.log, false)
	if err != nil {
		return err
	}
	defer app.Close()

	n, err := app.Service.ImportShows(cmd.Context(), shows)
	if err != nil {
		return err
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"read": len(shows), "created": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d of %d shows\n", n, len(shows))
	return nil
}

func readShows(cmd *cobra.Command, path string) ([]*showDomain.TvShow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var raw []seedShow
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		shows := make([]*showDomain.TvShow, 0, len(raw))
		for _, r := range raw {
			s, err := r.toShow()
			if err != nil {
				return nil, err
			}
			shows = append(shows, s)
		}
		return shows, nil

	case ".json":
		return filesystem.NewJSONShowStorage(path).GetAll(cmd.Context())

	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return filesystem.ReadWorkbook(f)
	}
	return nil, fmt.Errorf("unsupported seed file %q: use .yaml, .json or .xlsx", path)
}
