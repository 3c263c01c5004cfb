package domain

import (
	"time"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/google/uuid"
)

// Atributos tipados del catálogo. Los nombres coinciden con el mapeo de
// persistencia de cada adapter.
var (
	ShowID                 = spec.NewAttr[TvShow, uuid.UUID]("id")
	ShowGenre              = spec.NewAttr[TvShow, Genre]("genre")
	ShowName               = spec.NewAttr[TvShow, string]("name")
	ShowSynopsis           = spec.NewAttr[TvShow, string]("synopsis")
	ShowAvailableOnNetflix = spec.NewAttr[TvShow, bool]("availableOnNetflix")
	ShowReleaseDate        = spec.NewAttr[TvShow, string]("releaseDate")
	ShowStarRatings        = spec.NewCollection[TvShow, StarRating]("starRatings")
	ShowPrice              = spec.NewAttr[TvShow, Price]("price")
	ShowCreatedAt          = spec.NewAttr[TvShow, time.Time]("createdAt")

	GenreID          = spec.NewAttr[Genre, uuid.UUID]("id")
	GenreName        = spec.NewAttr[Genre, string]("name")
	GenreStarRatings = spec.NewCollection[Genre, StarRating]("starRatings")

	StarRatingID    = spec.NewAttr[StarRating, uuid.UUID]("id")
	StarRatingStars = spec.NewAttr[StarRating, int]("stars")

	PriceAmount   = spec.NewAttr[Price, float64]("amount")
	PriceCurrency = spec.NewAttr[Price, string]("currency")
)
