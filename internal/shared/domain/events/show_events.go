package events

import (
	"time"

	"github.com/google/uuid"
)

// Contratos de integración del catálogo de series. Son planos a propósito:
// los consumidores no dependen del modelo de dominio.

type ShowCreated struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Genre              string    `json:"genre,omitempty"`
	AvailableOnNetflix bool      `json:"available_on_netflix"`
	ReleaseDate        *string   `json:"release_date,omitempty"`
	Stars              []int     `json:"stars,omitempty"`
	PriceAmount        float64   `json:"price_amount"`
	PriceCurrency      string    `json:"price_currency"`
	CreatedAt          time.Time `json:"created_at"`
}

type ShowDeleted struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
