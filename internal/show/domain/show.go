package domain

import (
	"strings"
	"time"

	sharedBus "github.com/davicafu/hexaspec/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
)

// TvShow es el agregado del catálogo.
type TvShow struct {
	ID                 uuid.UUID    `json:"id"`
	Genre              *Genre       `json:"genre,omitempty"`
	Name               string       `json:"name"`
	Synopsis           string       `json:"synopsis"`
	AvailableOnNetflix bool         `json:"available_on_netflix"`
	ReleaseDate        *string      `json:"release_date,omitempty"` // año, "2013"
	StarRatings        []StarRating `json:"star_ratings"`
	Price              Price        `json:"price"`
	CreatedAt          time.Time    `json:"created_at"`
}

// Genre se comparte entre series; sus valoraciones son de la crítica.
type Genre struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	StarRatings []StarRating `json:"star_ratings,omitempty"`
}

type StarRating struct {
	ID    uuid.UUID `json:"id"`
	Stars int       `json:"stars"`
}

// Price es un objeto de valor embebido en la serie.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (s *TvShow) PartitionKey() string {
	return s.ID.String()
}

// Validate comprueba las reglas mínimas de una serie nueva.
func (s *TvShow) Validate() error {
	switch {
	case strings.TrimSpace(s.Name) == "":
		return invalid("name is required")
	case s.Price.Amount < 0:
		return invalid("price must not be negative")
	case s.Price.Amount > 0 && len(s.Price.Currency) != 3:
		return invalid("currency must be an ISO 4217 code")
	case s.Genre != nil && strings.TrimSpace(s.Genre.Name) == "":
		return invalid("genre name is required")
	}
	for _, r := range s.StarRatings {
		if r.Stars < 1 || r.Stars > 5 {
			return invalid("stars must be between 1 and 5")
		}
	}
	return nil
}

// AverageStars devuelve la media de valoraciones, 0 si no hay.
func (s *TvShow) AverageStars() float64 {
	if len(s.StarRatings) == 0 {
		return 0
	}
	total := 0
	for _, r := range s.StarRatings {
		total += r.Stars
	}
	return float64(total) / float64(len(s.StarRatings))
}

// Verificación estática para asegurar que TvShow implementa la interfaz
var _ sharedBus.Keyer = (*TvShow)(nil)
