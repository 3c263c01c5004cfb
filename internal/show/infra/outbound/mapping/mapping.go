// Package mapping describe cómo se guarda el catálogo en cada backend.
package mapping

import (
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/meta"
)

// Nombres de entidad y tablas.
const (
	ShowEntity = "TvShow"

	ShowsTable       = "tv_shows"
	GenresTable      = "genres"
	StarRatingsTable = "star_ratings"
	ShowsCollection  = "tv_shows"
	ShowsLogTable    = "shows_log"
)

// Model mapea el agregado a tablas normalizadas y a un documento con
// género, valoraciones y precio embebidos.
func Model() *meta.Model {
	return meta.NewModel(
		meta.NewEntity(ShowEntity, ShowsTable,
			meta.NewScalar("id", "id", "ID").WithKey("_id"),
			meta.NewToOne("genre", "genre_id", "Genre", "Genre"),
			meta.NewScalar("name", "name", "Name"),
			meta.NewScalar("synopsis", "synopsis", "Synopsis"),
			meta.NewScalar("availableOnNetflix", "available_on_netflix", "AvailableOnNetflix"),
			meta.NewScalar("releaseDate", "release_date", "ReleaseDate"),
			meta.NewToMany("starRatings", "tv_show_id", "StarRatings", "StarRating"),
			meta.NewEmbedded("price", "price_", "Price", "Price"),
			meta.NewScalar("createdAt", "created_at", "CreatedAt"),
		).InCollection(ShowsCollection),
		meta.NewEntity("Genre", GenresTable,
			meta.NewScalar("id", "id", "ID").WithKey("_id"),
			meta.NewScalar("name", "name", "Name"),
			meta.NewToMany("starRatings", "genre_id", "StarRatings", "StarRating"),
		),
		meta.NewEntity("StarRating", StarRatingsTable,
			meta.NewScalar("id", "id", "ID").WithKey("_id"),
			meta.NewScalar("stars", "stars", "Stars"),
		),
		price(),
	)
}

// AnalyticsModel mapea la tabla plana de eventos. El género queda como
// columnas con prefijo y las valoraciones no se pueden consultar.
func AnalyticsModel() *meta.Model {
	return meta.NewModel(
		meta.NewEntity(ShowEntity, ShowsLogTable,
			meta.NewScalar("id", "show_id", "ID"),
			meta.NewEmbedded("genre", "genre_", "Genre", "Genre"),
			meta.NewScalar("name", "name", "Name"),
			meta.NewScalar("synopsis", "synopsis", "Synopsis"),
			meta.NewScalar("availableOnNetflix", "available_on_netflix", "AvailableOnNetflix"),
			meta.NewScalar("releaseDate", "release_date", "ReleaseDate"),
			meta.NewEmbedded("price", "price_", "Price", "Price"),
			meta.NewScalar("createdAt", "created_at", "CreatedAt"),
			meta.NewScalar(EventTypeAttr, "event_type", ""),
		),
		meta.NewEntity("Genre", "",
			meta.NewScalar("name", "name", "Name"),
		),
		price(),
	)
}

// EventTypeAttr sólo existe en la tabla de eventos.
const EventTypeAttr = "eventType"

func price() *meta.Entity {
	return meta.NewEntity("Price", "",
		meta.NewScalar("amount", "amount", "Amount"),
		meta.NewScalar("currency", "currency", "Currency"),
	)
}
