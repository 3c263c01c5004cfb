package spec_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperators_Render(t *testing.T) {
	cases := []struct {
		name string
		s    spec.Specification[show]
		want string
	}{
		{"equal", spec.Equal(showName, "Hemlock Grove"), "root.name = Hemlock Grove"},
		{"notEqual", spec.NotEqual(showName, "x"), "root.name <> x"},
		{"in", spec.In(showID, []int64{1, 2}), "root.id IN (1, 2)"},
		{"lt", spec.Lt(showID, int64(3)), "root.id < 3"},
		{"le", spec.Le(showID, int64(3)), "root.id <= 3"},
		{"gt", spec.Gt(showID, int64(3)), "root.id > 3"},
		{"ge", spec.Ge(showID, int64(3)), "root.id >= 3"},
		{"lessThan", spec.LessThan(showName, "C"), "root.name < C"},
		{"lessThanOrEqualTo", spec.LessThanOrEqualTo(showName, "C"), "root.name <= C"},
		{"greaterThan", spec.GreaterThan(showName, "C"), "root.name > C"},
		{"greaterThanOrEqualTo", spec.GreaterThanOrEqualTo(showName, "C"), "root.name >= C"},
		{"between", spec.Between(showName, "A", "H"), "root.name BETWEEN A AND H"},
		{"isTrue", spec.IsTrue(showNetflix), "root.netflix IS TRUE"},
		{"isFalse", spec.IsFalse(showNetflix), "root.netflix IS FALSE"},
		{"isNull", spec.IsNull(showReleaseDate), "root.releaseDate IS NULL"},
		{"isNotNull", spec.IsNotNull(showReleaseDate), "root.releaseDate IS NOT NULL"},
		{"isEmpty", spec.IsEmpty(showRatings), "root.starRatings IS EMPTY"},
		{"isNotEmpty", spec.IsNotEmpty(showRatings), "root.starRatings IS NOT EMPTY"},
		{"isMember", spec.IsMember(showRatings, rating{ID: 7}), "rating#7 MEMBER OF root.starRatings"},
		{"isNotMember", spec.IsNotMember(showRatings, rating{ID: 7}), "rating#7 NOT MEMBER OF root.starRatings"},
		{"like", spec.Like(showName, "%Grove"), "root.name LIKE '%Grove'"},
		{"likeEscape", spec.Like(showName, `100\%`, spec.WithEscape('\\')), `root.name LIKE '100\%' ESCAPE '\'`},
		{"notLike", spec.NotLike(showName, "The%"), "root.name NOT LIKE 'The%'"},
		{"likeLower", spec.LikeLower(showName, "%GROVE"), "lower(root.name) LIKE '%grove'"},
		{"iLike", spec.ILike(showName, "%Saul"), "lower(root.name) LIKE '%saul'"},
		{"notILike", spec.NotILike(showName, "%Saul"), "lower(root.name) NOT LIKE '%saul'"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, joins, err := render(tc.s)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Empty(t, joins)
		})
	}
}

func TestOrdered_AcceptsTime(t *testing.T) {
	created := spec.NewAttr[show, time.Time]("id")
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	got, _, err := render(spec.GreaterThanOrEqualTo(created, ts))

	require.NoError(t, err)
	assert.Contains(t, got, "root.id >= 2020-01-01")
}

func TestIn_EmptySetMatchesNothing(t *testing.T) {
	// Act
	in, _, err := render(spec.In(showName, nil))
	require.NoError(t, err)
	notIn, _, err := render(spec.NotIn(showName, []string{}))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "FALSE", in)
	assert.Equal(t, "TRUE", notIn)
}

func TestNotIn_IsNegationOfIn(t *testing.T) {
	for _, values := range [][]string{nil, {"a"}, {"a", "b"}} {
		direct, _, err := render(spec.NotIn(showName, values))
		require.NoError(t, err)
		negated, _, err := render(spec.Not(spec.In(showName, values)))
		require.NoError(t, err)

		assert.Equal(t, negated, direct)
	}
}

func TestAnd_SkipsAbsentEntries(t *testing.T) {
	s := spec.Equal(showName, "x")

	for _, combined := range []spec.Specification[show]{
		spec.And[show](s, nil),
		spec.And[show](nil, s, spec.None[show]()),
		spec.Or(spec.None[show](), s),
	} {
		got, _, err := render(combined)
		require.NoError(t, err)
		assert.Equal(t, "root.name = x", got)
	}
}

func TestFold_EmptyMatchesEverything(t *testing.T) {
	for _, s := range []spec.Specification[show]{
		spec.And[show](),
		spec.Or[show](),
		spec.And[show](nil, nil),
		spec.Or[show](nil, spec.None[show]()),
	} {
		assert.True(t, spec.IsNone(s))
		got, _, err := render(s)
		require.NoError(t, err)
		assert.Equal(t, "TRUE", got)
	}
}

func TestFold_LeftToRightInSequenceOrder(t *testing.T) {
	a := spec.Equal(showID, int64(1))
	b := spec.Equal(showID, int64(2))
	c := spec.Equal(showID, int64(3))

	and, _, err := render(spec.And(a, b, c))
	require.NoError(t, err)
	or, _, err := render(spec.Or[show](a, nil, b, c))
	require.NoError(t, err)

	assert.Equal(t, "((root.id = 1 AND root.id = 2) AND root.id = 3)", and)
	assert.Equal(t, "((root.id = 1 OR root.id = 2) OR root.id = 3)", or)
}

func TestFold_KeepsExplicitConstants(t *testing.T) {
	got, _, err := render(spec.Or(spec.In(showName, nil), spec.IsTrue(showNetflix)))

	require.NoError(t, err)
	assert.Equal(t, "(FALSE OR root.netflix IS TRUE)", got)
}

func TestNot_DoubleNegation(t *testing.T) {
	s := spec.And(spec.IsTrue(showNetflix), spec.Equal(showReleaseDate, "2010"))

	twice := spec.Not(spec.Not(s))

	want, _, err := render(s)
	require.NoError(t, err)
	got, _, err := render(twice)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, s.String(), twice.String())
}

func TestNot_AbsentMatchesNothing(t *testing.T) {
	for _, s := range []spec.Specification[show]{
		spec.Not[show](nil),
		spec.Not(spec.None[show]()),
		spec.Not(spec.And[show]()),
	} {
		got, _, err := render(s)
		require.NoError(t, err)
		assert.Equal(t, "FALSE", got)
	}
}

func TestNot_Renders(t *testing.T) {
	got, _, err := render(spec.Not(spec.Equal(showReleaseDate, "2010")))

	require.NoError(t, err)
	assert.Equal(t, "NOT (root.releaseDate = 2010)", got)
}

func TestDistinct_PropagatesToOutermost(t *testing.T) {
	plain := spec.Equal(showName, "x")
	distinct := spec.IsNotEmpty(showRatings, spec.Distinct())

	assert.False(t, plain.Distinct())
	assert.True(t, distinct.Distinct())
	assert.True(t, spec.And(plain, distinct).Distinct())
	assert.True(t, spec.Or(distinct, plain).Distinct())
	assert.True(t, spec.Not(spec.And(plain, distinct)).Distinct())
	assert.True(t, spec.In(showName, nil, spec.Distinct()).Distinct())
	assert.False(t, spec.And(plain, plain).Distinct())
}

func TestJoin_ToOne(t *testing.T) {
	s := spec.Equal(spec.Where(spec.ToJoin(showGenre), genreName), "Crime drama")

	got, joins, err := render(s)

	require.NoError(t, err)
	assert.Equal(t, "j0.name = Crime drama", got)
	assert.Equal(t, []string{"INNER root.genre AS j0"}, joins)
	assert.Equal(t, `genre.name = "Crime drama"`, s.String())
}

func TestJoin_LeftAndChained(t *testing.T) {
	stars := spec.Where(spec.JoinCollection(spec.ToLeftJoin(showGenre), genreRatings), ratingStars)

	got, joins, err := render(spec.Ge(stars, 3, spec.Distinct()))

	require.NoError(t, err)
	assert.Equal(t, "j1.stars >= 3", got)
	assert.Equal(t, []string{"LEFT root.genre AS j0", "INNER j0.starRatings AS j1"}, joins)
	assert.Equal(t, "genre.starRatings.stars", stars.String())
}

func TestJoin_CollectionShortcuts(t *testing.T) {
	inner := spec.Where(spec.ToCollectionJoin(showRatings), ratingStars)
	left := spec.Where(spec.ToCollectionLeftJoin(showRatings), ratingStars)
	viaRoot := spec.Where(spec.LeftJoinCollection(spec.Root[show](), showRatings), ratingStars)

	_, innerJoins, err := render(spec.Equal(inner, 5))
	require.NoError(t, err)
	_, leftJoins, err := render(spec.Equal(left, 5))
	require.NoError(t, err)
	_, rootJoins, err := render(spec.Equal(viaRoot, 5))
	require.NoError(t, err)

	assert.Equal(t, []string{"INNER root.starRatings AS j0"}, innerJoins)
	assert.Equal(t, []string{"LEFT root.starRatings AS j0"}, leftJoins)
	assert.Equal(t, leftJoins, rootJoins)
}

func TestJoin_RepeatedCallsAreIndependent(t *testing.T) {
	name := spec.Where(spec.ToJoin(showGenre), genreName)

	got, joins, err := render(spec.Or(spec.Equal(name, "a"), spec.Equal(name, "b")))

	require.NoError(t, err)
	assert.Equal(t, "(j0.name = a OR j1.name = b)", got)
	assert.Len(t, joins, 2)
}

func TestJoin_DoesNotAliasBuilders(t *testing.T) {
	base := spec.ToLeftJoin(showGenre)
	first := spec.JoinCollection(base, genreRatings)
	second := spec.LeftJoinCollection(base, genreRatings)

	assert.Equal(t, "genre(LEFT).starRatings(INNER)", first.String())
	assert.Equal(t, "genre(LEFT).starRatings(LEFT)", second.String())
	assert.Equal(t, "genre(LEFT)", base.String())
}

func TestWhereCollection_ResolvesThroughJoin(t *testing.T) {
	ratings := spec.WhereCollection(spec.ToJoin(showGenre), genreRatings)

	got, joins, err := render(spec.IsEmpty(ratings))

	require.NoError(t, err)
	assert.Equal(t, "j0.starRatings IS EMPTY", got)
	assert.Len(t, joins, 1)
}

func TestResolve_UnknownAttribute(t *testing.T) {
	bogus := spec.NewAttr[show, string]("bogus")

	_, _, err := render(spec.And(spec.IsTrue(showNetflix), spec.Equal(bogus, "x")))

	assert.ErrorIs(t, err, spec.ErrUnknownAttribute)
	assert.Contains(t, err.Error(), "bogus")
}

func TestResolve_NotTraversable(t *testing.T) {
	asJoin := spec.NewAttr[show, genre]("name")
	asColl := spec.NewCollection[show, rating]("name")
	asScalar := spec.NewAttr[show, int]("starRatings")

	_, _, err := render(spec.Equal(spec.Where(spec.ToJoin(asJoin), genreName), "x"))
	assert.ErrorIs(t, err, spec.ErrNotTraversable)

	_, _, err = render(spec.IsEmpty(asColl))
	assert.ErrorIs(t, err, spec.ErrNotTraversable)

	_, _, err = render(spec.Equal(asScalar, 1))
	assert.ErrorIs(t, err, spec.ErrNotTraversable)
}

func TestNewAttr_RejectsInvalidNames(t *testing.T) {
	assert.Panics(t, func() { spec.NewAttr[show, string]("") })
	assert.Panics(t, func() { spec.NewAttr[show, string]("genre.name") })
	assert.Panics(t, func() { spec.NewCollection[show, rating](" ") })
}

func TestSpec_CustomPredicate(t *testing.T) {
	custom := spec.Spec[show](true, "custom", func(q spec.Query, cb spec.Builder) (spec.Predicate, error) {
		p, err := q.Root().Get("name")
		if err != nil {
			return nil, err
		}
		return cb.IsNotNull(p), nil
	})

	got, _, err := render(spec.And(custom, spec.IsTrue(showNetflix)))

	require.NoError(t, err)
	assert.Equal(t, "(root.name IS NOT NULL AND root.netflix IS TRUE)", got)
	assert.True(t, custom.Distinct())
	assert.Equal(t, "(custom and netflix is true)", spec.And(custom, spec.IsTrue(showNetflix)).String())
}

func TestSpecification_IsPure(t *testing.T) {
	s := spec.Or(spec.Equal(spec.Where(spec.ToJoin(showGenre), genreName), "a"), spec.IsNull(showReleaseDate))

	first, firstJoins, err := render(s)
	require.NoError(t, err)
	second, secondJoins, err := render(s)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstJoins, secondJoins)
}

func TestSpecification_IsBoundToEntity(t *testing.T) {
	// Arrange
	showSpec := reflect.TypeOf((*spec.Specification[show])(nil)).Elem()
	genreSpecs := []spec.Specification[genre]{
		spec.Equal(genreName, "Crime drama"),
		spec.None[genre](),
		spec.MatchAll[genre](),
		spec.And(spec.Equal(genreName, "a"), spec.IsNull(genreName)),
		spec.Not(spec.Equal(genreName, "a")),
	}

	// Act & Assert: ningún nodo de genre sirve como filtro de show
	for _, s := range genreSpecs {
		assert.False(t, reflect.TypeOf(s).Implements(showSpec), "%T", s)
	}
	assert.True(t, reflect.TypeOf(spec.Equal(showName, "x")).Implements(showSpec))
}

func TestCombinators_InferEntity(t *testing.T) {
	// Act: sin argumentos de tipo explícitos
	s := spec.And(spec.Not(spec.In(showID, []int64{1, 2})), spec.IsTrue(showNetflix))
	got, _, err := render(s)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "(NOT (root.id IN (1, 2)) AND root.netflix IS TRUE)", got)
	assert.False(t, spec.IsNone(s))
}
