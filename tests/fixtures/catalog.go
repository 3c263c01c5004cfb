// Package fixtures contiene un catálogo mínimo de series para probar los
// backends de criterios sin depender de un contexto de negocio concreto.
package fixtures

import (
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

type Show struct {
	ID          int64
	Genre       *Genre
	Name        string
	Netflix     bool
	ReleaseDate *string
	Ratings     []Rating
	Price       Price
}

type Genre struct {
	ID      int64
	Name    string
	Ratings []Rating
}

type Rating struct {
	ID    int64
	Stars int
}

type Price struct {
	Amount   float64
	Currency string
}

var (
	ShowID          = spec.NewAttr[Show, int64]("id")
	ShowName        = spec.NewAttr[Show, string]("name")
	ShowNetflix     = spec.NewAttr[Show, bool]("netflix")
	ShowReleaseDate = spec.NewAttr[Show, string]("releaseDate")
	ShowGenre       = spec.NewAttr[Show, Genre]("genre")
	ShowPrice       = spec.NewAttr[Show, Price]("price")
	ShowRatings     = spec.NewCollection[Show, Rating]("ratings")

	GenreID      = spec.NewAttr[Genre, int64]("id")
	GenreName    = spec.NewAttr[Genre, string]("name")
	GenreRatings = spec.NewCollection[Genre, Rating]("ratings")

	RatingID    = spec.NewAttr[Rating, int64]("id")
	RatingStars = spec.NewAttr[Rating, int]("stars")

	PriceAmount   = spec.NewAttr[Price, float64]("amount")
	PriceCurrency = spec.NewAttr[Price, string]("currency")
)

// Model mapea el catálogo a las tablas shows, genres y ratings y a la
// colección shows (géneros y valoraciones embebidos).
func Model() *meta.Model {
	return meta.NewModel(
		meta.NewEntity("Show", "shows",
			meta.NewScalar("id", "id", "ID").WithKey("_id"),
			meta.NewToOne("genre", "genre_id", "Genre", "Genre"),
			meta.NewScalar("name", "name", "Name"),
			meta.NewScalar("netflix", "netflix", "Netflix"),
			meta.NewScalar("releaseDate", "release_date", "ReleaseDate"),
			meta.NewToMany("ratings", "show_id", "Ratings", "Rating"),
			meta.NewEmbedded("price", "price_", "Price", "Price"),
		),
		meta.NewEntity("Genre", "genres",
			meta.NewScalar("id", "id", "ID").WithKey("_id"),
			meta.NewScalar("name", "name", "Name"),
			meta.NewToMany("ratings", "genre_id", "Ratings", "Rating"),
		),
		meta.NewEntity("Rating", "ratings",
			meta.NewScalar("id", "id", "ID").WithKey("_id"),
			meta.NewScalar("stars", "stars", "Stars"),
		),
		meta.NewEntity("Price", "",
			meta.NewScalar("amount", "amount", "Amount"),
			meta.NewScalar("currency", "currency", "Currency"),
		),
	)
}

func str(s string) *string { return &s }

// Shows devuelve tres series:
//
//	Hemlock Grove     netflix  2013  Horror        ratings 3,4
//	The Walking Dead  -        2010  sin género    sin ratings
//	Better Call Saul  -        NULL  Crime drama   ratings 5,5
func Shows() []Show {
	horror := &Genre{ID: 1, Name: "Horror", Ratings: []Rating{{ID: 5, Stars: 2}}}
	crime := &Genre{ID: 2, Name: "Crime drama", Ratings: []Rating{{ID: 6, Stars: 5}}}
	return []Show{
		{
			ID: 1, Genre: horror, Name: "Hemlock Grove", Netflix: true, ReleaseDate: str("2013"),
			Ratings: []Rating{{ID: 1, Stars: 3}, {ID: 2, Stars: 4}},
			Price:   Price{Amount: 9.99, Currency: "EUR"},
		},
		{
			ID: 2, Name: "The Walking Dead", Netflix: false, ReleaseDate: str("2010"),
			Price: Price{Amount: 4.5, Currency: "USD"},
		},
		{
			ID: 3, Genre: crime, Name: "Better Call Saul", Netflix: false,
			Ratings: []Rating{{ID: 3, Stars: 5}, {ID: 4, Stars: 5}},
			Price:   Price{Amount: 12, Currency: "EUR"},
		},
	}
}

// Names devuelve los nombres de las series en orden.
func Names(shows []Show) []string {
	out := make([]string, len(shows))
	for i, s := range shows {
		out[i] = s.Name
	}
	return out
}
