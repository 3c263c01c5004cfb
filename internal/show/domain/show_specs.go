package domain

import (
	"strings"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
)

// Especificaciones de uso común. Todas devuelven nil con un argumento nil
// para que And/Or las ignoren.

func HasName(name *string) spec.Specification[TvShow] {
	if name == nil {
		return nil
	}
	return spec.Equal(ShowName, *name)
}

func AvailableOnNetflix(available *bool) spec.Specification[TvShow] {
	if available == nil {
		return nil
	}
	return spec.Equal(ShowAvailableOnNetflix, *available)
}

func HasReleaseDateIn(dates []string) spec.Specification[TvShow] {
	if dates == nil {
		return nil
	}
	return spec.In(ShowReleaseDate, dates)
}

// HasKeyword busca keyword literal dentro de la sinopsis; '%' y '_' no
// actúan como comodines.
func HasKeyword(keyword *string) spec.Specification[TvShow] {
	if keyword == nil {
		return nil
	}
	return spec.Like(ShowSynopsis, "%"+EscapeLike(*keyword)+"%", spec.WithEscape('\\'))
}

// HasKeywordIn cumple si la sinopsis contiene alguna de las palabras.
func HasKeywordIn(keywords []string) spec.Specification[TvShow] {
	if keywords == nil {
		return nil
	}
	specs := make([]spec.Specification[TvShow], 0, len(keywords))
	for i := range keywords {
		specs = append(specs, HasKeyword(&keywords[i]))
	}
	return spec.Or(specs...)
}

func HasGenreName(name *string) spec.Specification[TvShow] {
	if name == nil {
		return nil
	}
	return spec.Equal(spec.Where(spec.ToJoin(ShowGenre), GenreName), *name)
}

// HasStarsAtLeast cumple si alguna valoración llega a min estrellas.
func HasStarsAtLeast(min *int) spec.Specification[TvShow] {
	if min == nil {
		return nil
	}
	return spec.Ge(spec.Where(spec.ToCollectionJoin(ShowStarRatings), StarRatingStars), *min, spec.Distinct())
}

func PricedAtMost(max *float64) spec.Specification[TvShow] {
	if max == nil {
		return nil
	}
	return spec.Le(spec.Where(spec.ToJoin(ShowPrice), PriceAmount), *max)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapa los comodines de LIKE con '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
