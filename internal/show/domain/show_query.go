package domain

import (
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
)

// ShowQuery es el filtro que llega desde la API: cada campo presente se
// combina con AND. Los slices vacíos se ignoran.
type ShowQuery struct {
	Name               *string  `json:"name,omitempty" yaml:"name"`
	AvailableOnNetflix *bool    `json:"available_on_netflix,omitempty" yaml:"available_on_netflix"`
	Keywords           []string `json:"keywords,omitempty" yaml:"keywords"`
	ReleaseDates       []string `json:"release_dates,omitempty" yaml:"release_dates"`
	Genre              *string  `json:"genre,omitempty" yaml:"genre"`
	MinStars           *int     `json:"min_stars,omitempty" yaml:"min_stars"`
	MaxPrice           *float64 `json:"max_price,omitempty" yaml:"max_price"`
}

func (q ShowQuery) ToSpecification() spec.Specification[TvShow] {
	return spec.And(
		HasName(q.Name),
		AvailableOnNetflix(q.AvailableOnNetflix),
		HasKeywordIn(nonEmpty(q.Keywords)),
		HasReleaseDateIn(nonEmpty(q.ReleaseDates)),
		HasGenreName(q.Genre),
		HasStarsAtLeast(q.MinStars),
		PricedAtMost(q.MaxPrice),
	)
}

// ShowQueries combina varios filtros con OR.
type ShowQueries []ShowQuery

func (qs ShowQueries) ToSpecification() spec.Specification[TvShow] {
	specs := make([]spec.Specification[TvShow], 0, len(qs))
	for _, q := range qs {
		specs = append(specs, q.ToSpecification())
	}
	return spec.Or(specs...)
}

func nonEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
