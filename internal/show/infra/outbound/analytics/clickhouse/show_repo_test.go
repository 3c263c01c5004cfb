package clickhouse

import (
	"testing"
	"time"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestCountStatement(t *testing.T) {
	repo, err := newShowAnalyticsRepo(nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		spec     spec.Specification[showDomain.TvShow]
		event    string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "sólo tipo de evento",
			event:    showDomain.ShowCreated,
			wantSQL:  "SELECT COUNT(*) FROM shows_log t0 WHERE t0.event_type = ?",
			wantArgs: []any{"show.created"},
		},
		{
			name:     "género embebido",
			spec:     showDomain.HasGenreName(ptr("Crime drama")),
			event:    showDomain.ShowCreated,
			wantSQL:  "SELECT COUNT(*) FROM shows_log t0 WHERE (t0.event_type = ? AND t0.genre_name = ?)",
			wantArgs: []any{"show.created", "Crime drama"},
		},
		{
			name:     "sin género",
			spec:     spec.IsNull(spec.Where(spec.ToJoin(showDomain.ShowGenre), showDomain.GenreName)),
			event:    showDomain.ShowCreated,
			wantSQL:  "SELECT COUNT(*) FROM shows_log t0 WHERE (t0.event_type = ? AND t0.genre_name IS NULL)",
			wantArgs: []any{"show.created"},
		},
		{
			name:     "sin tipo de evento",
			spec:     showDomain.PricedAtMost(ptr(7.0)),
			wantSQL:  "SELECT COUNT(*) FROM shows_log t0 WHERE t0.price_amount <= ?",
			wantArgs: []any{7.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := repo.countStatement(tt.spec, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, stmt.SQL)
			assert.Equal(t, tt.wantArgs, stmt.Args)
		})
	}
}

func TestCountStatement_RatingsAreNotQueryable(t *testing.T) {
	repo, err := newShowAnalyticsRepo(nil)
	require.NoError(t, err)

	_, err = repo.countStatement(showDomain.HasStarsAtLeast(ptr(3)), showDomain.ShowCreated)
	assert.ErrorIs(t, err, spec.ErrUnknownAttribute)
}

func TestLogRow_GenreName(t *testing.T) {
	// Arrange
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	withGenre := &showDomain.TvShow{Name: "Hemlock Grove", Genre: &showDomain.Genre{Name: "Crime drama"}}
	withoutGenre := &showDomain.TvShow{Name: "Huérfana"}

	// Act
	row := logRow(withGenre, showDomain.ShowCreated, at)
	orphan := logRow(withoutGenre, showDomain.ShowCreated, at)

	// Assert: la columna es Nullable y la ausencia no se confunde con ""
	require.Len(t, row, 12)
	assert.Equal(t, ptr("Crime drama"), row[3])
	assert.Equal(t, (*string)(nil), orphan[3])
	assert.Equal(t, []uint8{}, orphan[6])
	assert.Equal(t, at, orphan[11])
}
