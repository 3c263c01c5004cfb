package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/hexaspec/internal/shared/domain/events"
)

const (
	ShowCreated = "show.created"
	ShowDeleted = "show.deleted"
)

const ShowTopic = "show"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		ShowCreated: {
			Type:  reflect.TypeOf(sharedEvents.ShowCreated{}),
			Topic: ShowTopic,
		},
		ShowDeleted: {
			Type:  reflect.TypeOf(sharedEvents.ShowDeleted{}),
			Topic: ShowTopic,
		},
	}
}

// NewShowCreated construye el contrato público a partir del agregado.
func NewShowCreated(s *TvShow) sharedEvents.ShowCreated {
	evt := sharedEvents.ShowCreated{
		ID:                 s.ID,
		Name:               s.Name,
		AvailableOnNetflix: s.AvailableOnNetflix,
		ReleaseDate:        s.ReleaseDate,
		PriceAmount:        s.Price.Amount,
		PriceCurrency:      s.Price.Currency,
		CreatedAt:          s.CreatedAt,
	}
	if s.Genre != nil {
		evt.Genre = s.Genre.Name
	}
	for _, r := range s.StarRatings {
		evt.Stars = append(evt.Stars, r.Stars)
	}
	return evt
}

// FromShowCreated reconstruye la vista mínima de la serie que necesitan
// los consumidores.
func FromShowCreated(evt sharedEvents.ShowCreated) *TvShow {
	s := &TvShow{
		ID:                 evt.ID,
		Name:               evt.Name,
		AvailableOnNetflix: evt.AvailableOnNetflix,
		ReleaseDate:        evt.ReleaseDate,
		Price:              Price{Amount: evt.PriceAmount, Currency: evt.PriceCurrency},
		CreatedAt:          evt.CreatedAt,
	}
	if evt.Genre != "" {
		s.Genre = &Genre{Name: evt.Genre}
	}
	for _, stars := range evt.Stars {
		s.StarRatings = append(s.StarRatings, StarRating{Stars: stars})
	}
	return s
}
