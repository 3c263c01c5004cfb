// Package contracts reúne las pruebas de contrato que comparten los
// adapters: HTTP, consumidores y repositorios de series.
package contracts

import (
	"context"
	"slices"
	"testing"

	sharedDomain "github.com/davicafu/hexaspec/internal/shared/domain"
	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/tests/fixtures"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type showSpec = spec.Specification[showDomain.TvShow]

func ptr[T any](v T) *T { return &v }

// SeedShows guarda el catálogo de referencia en repo.
func SeedShows(t *testing.T, repo showDomain.ShowRepository) []*showDomain.TvShow {
	t.Helper()
	shows := fixtures.TvShows()
	for _, s := range shows {
		evt := sharedDomain.NewOutboxEvent("show", s.ID.String(), showDomain.ShowCreated, showDomain.NewShowCreated(s))
		require.NoError(t, repo.Create(context.Background(), s, evt))
	}
	return shows
}

// ShowRepositoryCases son los escenarios de búsqueda que todo backend debe
// cumplir. El resultado se compara como conjunto de nombres.
func ShowRepositoryCases(shows []*showDomain.TvShow) []struct {
	Name string
	Spec showSpec
	Want []string
} {
	hemlock, walking, saul := shows[0], shows[1], shows[2]
	return []struct {
		Name string
		Spec showSpec
		Want []string
	}{
		{"id equal", spec.Equal(showDomain.ShowID, walking.ID), []string{walking.Name}},
		{"name notEqual", spec.NotEqual(showDomain.ShowName, walking.Name), []string{saul.Name, hemlock.Name}},
		{"id in", spec.In(showDomain.ShowID, []uuid.UUID{hemlock.ID, walking.ID}), []string{hemlock.Name, walking.Name}},
		{"empty id in", spec.In(showDomain.ShowID, nil), nil},
		{"empty id notIn", spec.NotIn(showDomain.ShowID, nil), []string{hemlock.Name, walking.Name, saul.Name}},
		{"name lessThan", spec.LessThan(showDomain.ShowName, "C"), []string{saul.Name}},
		{"name lessThanOrEqualTo", spec.LessThanOrEqualTo(showDomain.ShowName, "Hemlock Grove"), []string{saul.Name, hemlock.Name}},
		{"name greaterThan", spec.GreaterThan(showDomain.ShowName, "Hemlock Grove"), []string{walking.Name}},
		{"name greaterThanOrEqualTo", spec.GreaterThanOrEqualTo(showDomain.ShowName, "Hemlock Grove"), []string{hemlock.Name, walking.Name}},
		{"name between", spec.Between(showDomain.ShowName, "A", "H"), []string{saul.Name}},
		{"netflix isTrue", spec.IsTrue(showDomain.ShowAvailableOnNetflix), []string{hemlock.Name}},
		{"netflix isFalse", spec.IsFalse(showDomain.ShowAvailableOnNetflix), []string{saul.Name, walking.Name}},
		{"releaseDate isNull", spec.IsNull(showDomain.ShowReleaseDate), []string{saul.Name}},
		{"releaseDate isNotNull", spec.IsNotNull(showDomain.ShowReleaseDate), []string{hemlock.Name, walking.Name}},
		{"ratings isEmpty", spec.IsEmpty(showDomain.ShowStarRatings), []string{hemlock.Name}},
		{"ratings isNotEmpty", spec.IsNotEmpty(showDomain.ShowStarRatings), []string{saul.Name, walking.Name}},
		{"ratings isMember", spec.IsMember(showDomain.ShowStarRatings, walking.StarRatings[0]), []string{walking.Name}},
		{"ratings isNotMember", spec.IsNotMember(showDomain.ShowStarRatings, saul.StarRatings[0]), []string{walking.Name, hemlock.Name}},
		{"name like", spec.Like(showDomain.ShowName, "The%"), []string{walking.Name}},
		{"synopsis like with escape", spec.Like(showDomain.ShowSynopsis, `%them\?`, spec.WithEscape('\\')), []string{hemlock.Name}},
		{"name notLike", spec.NotLike(showDomain.ShowName, "The %"), []string{saul.Name, hemlock.Name}},
		{"synopsis notLike with escape", spec.NotLike(showDomain.ShowSynopsis, `%\.`, spec.WithEscape('\\')), []string{hemlock.Name}},
		{"name iLike", spec.ILike(showDomain.ShowName, "%call%"), []string{saul.Name}},
		{"and", spec.And(spec.IsFalse(showDomain.ShowAvailableOnNetflix), spec.Equal(showDomain.ShowReleaseDate, "2010")), []string{walking.Name}},
		{"or", spec.Or(spec.IsTrue(showDomain.ShowAvailableOnNetflix), spec.Equal(showDomain.ShowReleaseDate, "2010")), []string{hemlock.Name, walking.Name}},
		{"not", spec.Not(spec.Equal(showDomain.ShowReleaseDate, "2010")), []string{hemlock.Name, saul.Name}},
		{"join", spec.Equal(spec.Where(spec.ToJoin(showDomain.ShowGenre), showDomain.GenreName), "Crime drama"), []string{saul.Name}},
		{
			"left join",
			spec.Or(
				spec.Equal(spec.Where(spec.ToLeftJoin(showDomain.ShowGenre), showDomain.GenreName), "Crime drama"),
				spec.IsNull(spec.Where(spec.ToLeftJoin(showDomain.ShowGenre), showDomain.GenreID)),
			),
			[]string{saul.Name, walking.Name},
		},
		{"collection join", spec.Equal(spec.Where(spec.ToCollectionJoin(showDomain.ShowStarRatings), showDomain.StarRatingStars), 2), []string{saul.Name}},
		{
			"collection left join",
			spec.Or(
				spec.NotIn(spec.Where(spec.ToCollectionLeftJoin(showDomain.ShowStarRatings), showDomain.StarRatingStars), []int{2, 4}),
				spec.IsNull(spec.Where(spec.ToCollectionLeftJoin(showDomain.ShowStarRatings), showDomain.StarRatingID)),
			),
			[]string{walking.Name, hemlock.Name},
		},
		{
			"double join",
			spec.Equal(spec.Where(spec.JoinCollection(spec.ToJoin(showDomain.ShowGenre), showDomain.GenreStarRatings), showDomain.StarRatingStars), 1),
			[]string{saul.Name},
		},
		{"embedded", spec.LessThanOrEqualTo(spec.Where(spec.ToJoin(showDomain.ShowPrice), showDomain.PriceAmount), 7.0), []string{saul.Name, walking.Name}},
		{"query DTO", showDomain.ShowQuery{AvailableOnNetflix: ptr(false), Keywords: []string{"Rick", "Jimmy"}}.ToSpecification(), []string{saul.Name, walking.Name}},
		{"empty query DTO", showDomain.ShowQuery{}.ToSpecification(), []string{saul.Name, hemlock.Name, walking.Name}},
		{
			"multiple query DTOs",
			showDomain.ShowQueries{
				{AvailableOnNetflix: ptr(false), Keywords: []string{"Jimmy"}},
				{AvailableOnNetflix: ptr(true), Keywords: []string{"killer", "monster"}, ReleaseDates: []string{"2010", "2013"}},
			}.ToSpecification(),
			[]string{saul.Name, hemlock.Name},
		},
		{"empty query DTO list", showDomain.ShowQueries{}.ToSpecification(), []string{saul.Name, hemlock.Name, walking.Name}},
		{"nil specification", nil, []string{saul.Name, hemlock.Name, walking.Name}},
	}
}

// RunShowRepositoryContract siembra el catálogo en un repo vacío y
// comprueba búsquedas, paginación, recuentos y escrituras. skip lista los
// escenarios que el backend no soporta, con el motivo.
func RunShowRepositoryContract(t *testing.T, repo showDomain.ShowRepository, skip map[string]string) {
	ctx := context.Background()
	shows := SeedShows(t, repo)
	hemlock, walking, saul := shows[0], shows[1], shows[2]

	for _, tc := range ShowRepositoryCases(shows) {
		t.Run(tc.Name, func(t *testing.T) {
			if reason, ok := skip[tc.Name]; ok {
				t.Skip(reason)
			}
			got, err := repo.FindAll(ctx, tc.Spec, sharedQuery.OffsetPagination{}, nil)
			require.NoError(t, err)
			assert.ElementsMatch(t, unique(tc.Want), unique(fixtures.ShowNames(got)))
		})
	}

	t.Run("distinct", func(t *testing.T) {
		s := spec.GreaterThanOrEqualTo(spec.Where(spec.ToCollectionJoin(showDomain.ShowStarRatings), showDomain.StarRatingStars), 1, spec.Distinct())
		got, err := repo.FindAll(ctx, s, sharedQuery.OffsetPagination{Limit: 50}, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{saul.Name, walking.Name}, fixtures.ShowNames(got))

		n, err := repo.Count(ctx, s)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("get by id hydrates associations", func(t *testing.T) {
		got, err := repo.GetByID(ctx, hemlock.ID)
		require.NoError(t, err)
		assert.Equal(t, hemlock.Name, got.Name)
		require.NotNil(t, got.Genre)
		assert.Equal(t, "Horror Thriller", got.Genre.Name)
		assert.ElementsMatch(t, []int{3, 5}, stars(got.Genre.StarRatings))
		assert.Equal(t, "2013", *got.ReleaseDate)
		assert.InDelta(t, 10.0, got.Price.Amount, 1e-9)
		assert.Equal(t, "EUR", got.Price.Currency)

		got, err = repo.GetByID(ctx, saul.ID)
		require.NoError(t, err)
		assert.Nil(t, got.ReleaseDate)
		assert.ElementsMatch(t, []int{4, 2}, stars(got.StarRatings))
	})

	t.Run("find one", func(t *testing.T) {
		got, err := repo.FindOne(ctx, spec.Equal(showDomain.ShowName, walking.Name))
		require.NoError(t, err)
		assert.Equal(t, walking.ID, got.ID)

		_, err = repo.FindOne(ctx, spec.IsFalse(showDomain.ShowAvailableOnNetflix))
		assert.ErrorIs(t, err, showDomain.ErrShowNotUnique)

		_, err = repo.FindOne(ctx, spec.Equal(showDomain.ShowName, "Dark"))
		assert.ErrorIs(t, err, showDomain.ErrShowNotFound)
	})

	t.Run("sort and paginate", func(t *testing.T) {
		got, err := repo.FindAll(ctx, nil, sharedQuery.OffsetPagination{Limit: 2, Offset: 1}, []sharedQuery.Sort{{Field: "name"}})
		require.NoError(t, err)
		assert.Equal(t, []string{hemlock.Name, walking.Name}, fixtures.ShowNames(got))

		got, err = repo.FindAll(ctx, nil, sharedQuery.OffsetPagination{}, []sharedQuery.Sort{{Field: "price.amount", Desc: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{hemlock.Name, saul.Name, walking.Name}, fixtures.ShowNames(got))

		_, err = repo.FindAll(ctx, nil, sharedQuery.OffsetPagination{}, []sharedQuery.Sort{{Field: "starRatings"}})
		assert.Error(t, err)
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.Count(ctx, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		n, err = repo.Count(ctx, spec.IsFalse(showDomain.ShowAvailableOnNetflix))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
	})

	t.Run("unknown attribute", func(t *testing.T) {
		bogus := spec.Equal(spec.NewAttr[showDomain.TvShow, string]("director"), "Vince Gilligan")
		_, err := repo.FindAll(ctx, bogus, sharedQuery.OffsetPagination{}, nil)
		assert.ErrorIs(t, err, spec.ErrUnknownAttribute)
	})

	t.Run("writes", func(t *testing.T) {
		dup := fixtures.TvShows()[0]
		err := repo.Create(ctx, dup, sharedDomain.NewOutboxEvent("show", dup.ID.String(), showDomain.ShowCreated, showDomain.NewShowCreated(dup)))
		assert.ErrorIs(t, err, showDomain.ErrShowAlreadyExists)

		// un género existente se reutiliza
		sequel := &showDomain.TvShow{
			ID: uuid.New(), Name: "El Camino", Genre: fixtures.CrimeDrama(),
			Price: showDomain.Price{Amount: 3, Currency: "EUR"}, CreatedAt: saul.CreatedAt.Add(1),
		}
		require.NoError(t, repo.Create(ctx, sequel, sharedDomain.NewOutboxEvent("show", sequel.ID.String(), showDomain.ShowCreated, showDomain.NewShowCreated(sequel))))
		got, err := repo.FindAll(ctx, showDomain.HasGenreName(ptr("Crime drama")), sharedQuery.OffsetPagination{}, nil)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{saul.Name, "El Camino"}, fixtures.ShowNames(got))

		deleted := sharedDomain.NewOutboxEvent("show", sequel.ID.String(), showDomain.ShowDeleted, map[string]string{"id": sequel.ID.String()})
		require.NoError(t, repo.DeleteByID(ctx, sequel.ID, deleted))
		_, err = repo.GetByID(ctx, sequel.ID)
		assert.ErrorIs(t, err, showDomain.ErrShowNotFound)

		err = repo.DeleteByID(ctx, sequel.ID, deleted)
		assert.ErrorIs(t, err, showDomain.ErrShowNotFound)
	})
}

func unique(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}

func stars(rs []showDomain.StarRating) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.Stars
	}
	return out
}
