package sqlcrit_test

import (
	"fmt"
	"testing"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"
	fx "github.com/davicafu/hexaspec/tests/fixtures"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "name"}

func compiler(t *testing.T, d sqlcrit.Dialect) *sqlcrit.Compiler {
	t.Helper()
	c, err := sqlcrit.NewCompiler(fx.Model(), d, "Show")
	require.NoError(t, err)
	return c
}

func TestSelect_Golden(t *testing.T) {
	genreName := spec.Where(spec.ToJoin(fx.ShowGenre), fx.GenreName)

	cases := []struct {
		name string
		s    spec.Specification[fx.Show]
		opts sqlcrit.Options
	}{
		{name: "equal", s: spec.Equal(fx.ShowName, "Hemlock Grove")},
		{name: "none", s: spec.And[fx.Show]()},
		{name: "in_empty", s: spec.In(fx.ShowID, nil)},
		{name: "not_in_empty", s: spec.NotIn(fx.ShowID, nil)},
		{name: "not_in", s: spec.NotIn(fx.ShowID, []int64{1, 2})},
		{name: "and_or", s: spec.And(
			spec.IsFalse(fx.ShowNetflix),
			spec.Or(spec.Equal(fx.ShowReleaseDate, "2010"), spec.IsNull(fx.ShowReleaseDate)),
		)},
		{name: "between", s: spec.Between(fx.ShowName, "A", "H")},
		{name: "like_escape", s: spec.Like(fx.ShowName, `100\%`, spec.WithEscape('\\'))},
		{name: "like_lower", s: spec.LikeLower(fx.ShowName, "%SAUL%")},
		{name: "not_equal_negated", s: spec.Not(spec.Equal(fx.ShowReleaseDate, "2010"))},
		{name: "join_genre", s: spec.Equal(genreName, "Crime drama")},
		{name: "left_join_or_null", s: spec.Or(
			spec.Equal(spec.Where(spec.ToLeftJoin(fx.ShowGenre), fx.GenreName), "Crime drama"),
			spec.IsNull(fx.ShowGenre),
		)},
		{name: "collection_join_distinct", s: spec.Ge(spec.Where(spec.ToCollectionJoin(fx.ShowRatings), fx.RatingStars), 4, spec.Distinct())},
		{name: "double_join", s: spec.Ge(spec.Where(spec.JoinCollection(spec.ToJoin(fx.ShowGenre), fx.GenreRatings), fx.RatingStars), 5)},
		{name: "is_empty", s: spec.IsEmpty(fx.ShowRatings)},
		{name: "is_member", s: spec.IsMember(fx.ShowRatings, fx.Rating{ID: 3, Stars: 5})},
		{name: "embedded", s: spec.Gt(spec.Where(spec.ToJoin(fx.ShowPrice), fx.PriceAmount), 5.0)},
		{name: "equal_entity", s: spec.Equal(fx.ShowGenre, fx.Genre{ID: 2})},
		{
			name: "sorted_paged",
			s:    spec.IsTrue(fx.ShowNetflix),
			opts: sqlcrit.Options{
				Sort:  []sqlcrit.Sort{{Field: "price.amount", Desc: true}, {Field: "name"}},
				Limit: 10, Offset: 20,
			},
		},
	}

	c := compiler(t, sqlcrit.SQLite)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.opts
			opts.Columns = columns

			stmt, err := c.Select(tc.s, opts)

			require.NoError(t, err)
			g.Assert(t, tc.name, []byte(fmt.Sprintf("%s\n%v\n", stmt.SQL, stmt.Args)))
		})
	}
}

func TestSelect_PostgresNumbersPlaceholdersInTextOrder(t *testing.T) {
	c := compiler(t, sqlcrit.Postgres)
	s := spec.And(
		spec.In(fx.ShowID, []int64{1, 2, 3}),
		spec.Not(spec.Like(fx.ShowName, "The%")),
		spec.IsMember(fx.ShowRatings, fx.Rating{ID: 4}),
	)

	stmt, err := c.Select(s, sqlcrit.Options{Columns: columns, Limit: 5, Offset: 10})

	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t0.id, t0.name FROM shows t0 WHERE "+
			"((t0.id IN ($1, $2, $3) AND (t0.name LIKE $4) IS NOT TRUE) AND "+
			"EXISTS (SELECT 1 FROM ratings t1 WHERE t1.show_id = t0.id AND t1.id = $5)) "+
			"LIMIT $6 OFFSET $7",
		stmt.SQL)
	assert.Equal(t, []any{int64(1), int64(2), int64(3), "The%", int64(4), 5, 10}, stmt.Args)
}

func TestSelect_ClickHouseNegationAndEscape(t *testing.T) {
	c := compiler(t, sqlcrit.ClickHouse)
	s := spec.Not(spec.Like(fx.ShowName, "50!%%", spec.WithEscape('!')))

	stmt, err := c.Select(s, sqlcrit.Options{Columns: columns})

	require.NoError(t, err)
	assert.Equal(t, "SELECT t0.id, t0.name FROM shows t0 WHERE NOT ifNull(t0.name LIKE ?, 0)", stmt.SQL)
	assert.Equal(t, []any{`50\%%`}, stmt.Args)
}

func TestSelect_ClickHouseLiteralBackslash(t *testing.T) {
	c := compiler(t, sqlcrit.ClickHouse)
	cases := []struct {
		name string
		s    spec.Specification[fx.Show]
		want string
	}{
		// sin escape la '\' no escapa nada en el resto de motores
		{"noEscape", spec.Like(fx.ShowName, `C:\%`), `C:\\%`},
		{"bangEscape", spec.Like(fx.ShowName, `C:\!%`, spec.WithEscape('!')), `C:\\\%`},
		{"backslashEscape", spec.Like(fx.ShowName, `C:\\%`, spec.WithEscape('\\')), `C:\\%`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stmt, err := c.Select(tc.s, sqlcrit.Options{Columns: columns})

			require.NoError(t, err)
			assert.Equal(t, []any{tc.want}, stmt.Args)
		})
	}
}

func TestCount(t *testing.T) {
	c := compiler(t, sqlcrit.SQLite)
	stars := spec.Where(spec.ToCollectionJoin(fx.ShowRatings), fx.RatingStars)

	plain, err := c.Count(spec.IsTrue(fx.ShowNetflix))
	require.NoError(t, err)
	distinct, err := c.Count(spec.Ge(stars, 4, spec.Distinct()))
	require.NoError(t, err)
	all, err := c.Count(nil)
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM shows t0 WHERE t0.netflix = TRUE", plain.SQL)
	assert.Equal(t, "SELECT COUNT(DISTINCT t0.id) FROM shows t0 INNER JOIN ratings t1 ON t1.show_id = t0.id WHERE t1.stars >= ?", distinct.SQL)
	assert.Equal(t, "SELECT COUNT(*) FROM shows t0", all.SQL)
}

func TestSelect_ResolutionErrors(t *testing.T) {
	c := compiler(t, sqlcrit.SQLite)

	_, err := c.Select(spec.Equal(spec.NewAttr[fx.Show, string]("title"), "x"), sqlcrit.Options{})
	assert.ErrorIs(t, err, spec.ErrUnknownAttribute)

	// colección usada como escalar
	_, err = c.Select(spec.IsNull(spec.NewAttr[fx.Show, int]("ratings")), sqlcrit.Options{})
	assert.ErrorIs(t, err, spec.ErrNotTraversable)

	// escalar recorrido como join
	_, err = c.Select(spec.Equal(spec.Where(spec.ToJoin(spec.NewAttr[fx.Show, fx.Genre]("name")), fx.GenreName), "x"), sqlcrit.Options{})
	assert.ErrorIs(t, err, spec.ErrNotTraversable)

	// to-one usado como colección
	_, err = c.Select(spec.IsEmpty(spec.NewCollection[fx.Show, fx.Genre]("genre")), sqlcrit.Options{})
	assert.ErrorIs(t, err, spec.ErrNotTraversable)
}

func TestSelect_SortWhitelist(t *testing.T) {
	c := compiler(t, sqlcrit.SQLite)

	_, err := c.Select(nil, sqlcrit.Options{Sort: []sqlcrit.Sort{{Field: "name; DROP TABLE shows"}}})
	assert.ErrorIs(t, err, spec.ErrUnknownAttribute)

	_, err = c.Select(nil, sqlcrit.Options{Sort: []sqlcrit.Sort{{Field: "genre.name"}}})
	assert.ErrorIs(t, err, spec.ErrNotTraversable)
}

func TestNewCompiler_RejectsEmbeddable(t *testing.T) {
	_, err := sqlcrit.NewCompiler(fx.Model(), sqlcrit.SQLite, "Price")
	assert.ErrorIs(t, err, spec.ErrUnsupported)

	_, err = sqlcrit.NewCompiler(fx.Model(), sqlcrit.SQLite, "Movie")
	assert.Error(t, err)
}

func TestDialectByName(t *testing.T) {
	d, err := sqlcrit.DialectByName("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "$3", d.Placeholder(3))

	_, err = sqlcrit.DialectByName("oracle")
	assert.Error(t, err)
}
