package domain_test

import (
	"testing"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/memcrit"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/mapping"
	"github.com/davicafu/hexaspec/tests/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func find(t *testing.T, s spec.Specification[showDomain.TvShow]) []string {
	t.Helper()
	e, err := memcrit.NewEvaluator(mapping.Model(), mapping.ShowEntity)
	require.NoError(t, err)
	got, err := memcrit.Filter(e, fixtures.TvShows(), s)
	require.NoError(t, err)
	return fixtures.ShowNames(got)
}

func TestShowSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec spec.Specification[showDomain.TvShow]
		want []string
	}{
		{"HasName", showDomain.HasName(ptr("Hemlock Grove")), []string{"Hemlock Grove"}},
		{"AvailableOnNetflix", showDomain.AvailableOnNetflix(ptr(false)), []string{"The Walking Dead", "Better Call Saul"}},
		{"HasReleaseDateIn", showDomain.HasReleaseDateIn([]string{"2010", "2013"}), []string{"Hemlock Grove", "The Walking Dead"}},
		{"HasKeyword", showDomain.HasKeyword(ptr("Rick")), []string{"The Walking Dead"}},
		{"HasKeyword literal", showDomain.HasKeyword(ptr("%")), []string{}},
		{"HasKeywordIn", showDomain.HasKeywordIn([]string{"killer", "Jimmy"}), []string{"Hemlock Grove", "Better Call Saul"}},
		{"HasGenreName", showDomain.HasGenreName(ptr("Crime drama")), []string{"Better Call Saul"}},
		{"HasStarsAtLeast", showDomain.HasStarsAtLeast(ptr(3)), []string{"The Walking Dead", "Better Call Saul"}},
		{"PricedAtMost", showDomain.PricedAtMost(ptr(7.0)), []string{"The Walking Dead", "Better Call Saul"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, find(t, tt.spec))
		})
	}
}

func TestShowSpecs_NilInputIsIgnored(t *testing.T) {
	assert.Nil(t, showDomain.HasName(nil))
	assert.Nil(t, showDomain.AvailableOnNetflix(nil))
	assert.Nil(t, showDomain.HasReleaseDateIn(nil))
	assert.Nil(t, showDomain.HasKeyword(nil))
	assert.Nil(t, showDomain.HasKeywordIn(nil))
	assert.Nil(t, showDomain.HasGenreName(nil))
	assert.Nil(t, showDomain.HasStarsAtLeast(nil))
	assert.Nil(t, showDomain.PricedAtMost(nil))

	all := find(t, spec.And(showDomain.HasName(nil), showDomain.AvailableOnNetflix(ptr(true))))
	assert.Equal(t, []string{"Hemlock Grove"}, all)
}

func TestShowQuery_ToSpecification(t *testing.T) {
	t.Run("AND de los criterios", func(t *testing.T) {
		q := showDomain.ShowQuery{AvailableOnNetflix: ptr(false), Keywords: []string{"Rick", "Jimmy"}}
		assert.ElementsMatch(t, []string{"Better Call Saul", "The Walking Dead"}, find(t, q.ToSpecification()))
	})

	t.Run("consulta vacía devuelve todo", func(t *testing.T) {
		q := showDomain.ShowQuery{Keywords: []string{}, ReleaseDates: []string{}}
		assert.True(t, spec.IsNone(q.ToSpecification()))
		assert.Len(t, find(t, q.ToSpecification()), 3)
	})

	t.Run("criterios añadidos", func(t *testing.T) {
		q := showDomain.ShowQuery{Genre: ptr("Horror Thriller"), MaxPrice: ptr(10.0)}
		assert.Equal(t, []string{"Hemlock Grove"}, find(t, q.ToSpecification()))
	})
}

func TestShowQueries_ToSpecification(t *testing.T) {
	t.Run("OR de las consultas", func(t *testing.T) {
		qs := showDomain.ShowQueries{
			{AvailableOnNetflix: ptr(false), Keywords: []string{"Jimmy"}},
			{AvailableOnNetflix: ptr(true), Keywords: []string{"killer", "monster"}, ReleaseDates: []string{"2010", "2013"}},
		}
		assert.ElementsMatch(t, []string{"Better Call Saul", "Hemlock Grove"}, find(t, qs.ToSpecification()))
	})

	t.Run("lista vacía devuelve todo", func(t *testing.T) {
		assert.Len(t, find(t, showDomain.ShowQueries{}.ToSpecification()), 3)
	})
}

func TestShowSpecs_InlinedComposition(t *testing.T) {
	s := spec.Or(
		spec.And(showDomain.AvailableOnNetflix(ptr(false)), showDomain.HasKeywordIn([]string{"Jimmy"})),
		spec.And(
			showDomain.AvailableOnNetflix(ptr(true)),
			spec.Or(showDomain.HasKeyword(ptr("killer")), showDomain.HasKeyword(ptr("monster"))),
		),
	)
	assert.ElementsMatch(t, []string{"Better Call Saul", "Hemlock Grove"}, find(t, s))
}

func TestShowSpecs_DistinctCollectionJoin(t *testing.T) {
	s := showDomain.HasStarsAtLeast(ptr(1))
	assert.True(t, s.Distinct())
	// cada serie una vez aunque tenga dos valoraciones
	assert.Equal(t, []string{"The Walking Dead", "Better Call Saul"}, find(t, s))
}
