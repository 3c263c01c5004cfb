package fixtures

import (
	"fmt"
	"time"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/google/uuid"
)

// IDs estables para poder comparar entre backends.
var (
	HemlockGroveID   = uuid.MustParse("00000000-0000-4000-8000-000000000001")
	WalkingDeadID    = uuid.MustParse("00000000-0000-4000-8000-000000000002")
	BetterCallSaulID = uuid.MustParse("00000000-0000-4000-8000-000000000003")

	CrimeDramaID     = uuid.MustParse("00000000-0000-4000-8000-0000000000a1")
	HorrorThrillerID = uuid.MustParse("00000000-0000-4000-8000-0000000000a2")
)

func rating(n int, stars int) showDomain.StarRating {
	return showDomain.StarRating{ID: uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", 100+n)), Stars: stars}
}

// CrimeDrama y HorrorThriller llevan valoraciones propias de la crítica.
func CrimeDrama() *showDomain.Genre {
	return &showDomain.Genre{ID: CrimeDramaID, Name: "Crime drama", StarRatings: []showDomain.StarRating{rating(1, 1), rating(2, 2)}}
}

func HorrorThriller() *showDomain.Genre {
	return &showDomain.Genre{ID: HorrorThrillerID, Name: "Horror Thriller", StarRatings: []showDomain.StarRating{rating(3, 3), rating(4, 5)}}
}

// TvShows devuelve el catálogo de referencia:
//
//	Hemlock Grove     netflix  2013  Horror Thriller  sin valoraciones  10 EUR
//	The Walking Dead  -        2010  sin género       3, 4              5 EUR
//	Better Call Saul  -        NULL  Crime drama      4, 2              7 EUR
func TvShows() []*showDomain.TvShow {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return []*showDomain.TvShow{
		{
			ID:                 HemlockGroveID,
			Genre:              HorrorThriller(),
			Name:               "Hemlock Grove",
			AvailableOnNetflix: true,
			Synopsis:           "A teenage girl is brutally murdered, sparking a hunt for her killer. But in a town where everyone hides a secret, will they find the monster among them?",
			ReleaseDate:        str("2013"),
			Price:              showDomain.Price{Amount: 10, Currency: "EUR"},
			CreatedAt:          created,
		},
		{
			ID:                 WalkingDeadID,
			Name:               "The Walking Dead",
			AvailableOnNetflix: false,
			Synopsis:           "Sheriff Deputy Rick Grimes leads a group of survivors in a world overrun by the walking dead. Fighting the dead, fearing the living.",
			ReleaseDate:        str("2010"),
			StarRatings:        []showDomain.StarRating{rating(5, 3), rating(6, 4)},
			Price:              showDomain.Price{Amount: 5, Currency: "EUR"},
			CreatedAt:          created.Add(time.Minute),
		},
		{
			ID:                 BetterCallSaulID,
			Genre:              CrimeDrama(),
			Name:               "Better Call Saul",
			AvailableOnNetflix: false,
			Synopsis:           "The trials and tribulations of criminal lawyer, Jimmy McGill, in the time leading up to establishing his strip-mall law office in Albuquerque, New Mexico.",
			StarRatings:        []showDomain.StarRating{rating(7, 4), rating(8, 2)},
			Price:              showDomain.Price{Amount: 7, Currency: "EUR"},
			CreatedAt:          created.Add(2 * time.Minute),
		},
	}
}

// ShowNames devuelve los nombres en orden.
func ShowNames(shows []*showDomain.TvShow) []string {
	out := make([]string, len(shows))
	for i, s := range shows {
		out[i] = s.Name
	}
	return out
}
