package sqldb

import (
	"context"
	"testing"

	"github.com/davicafu/hexaspec/internal/shared/domain/spec"
	"github.com/davicafu/hexaspec/internal/shared/infra/platform/criteria/sqlcrit"
	sharedSQL "github.com/davicafu/hexaspec/internal/shared/infra/platform/db/sqldb"
	sharedQuery "github.com/davicafu/hexaspec/internal/shared/infra/platform/query"
	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/tests/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) (*ShowRepoSQL, *sharedSQL.OutboxRepo) {
	t.Helper()
	db, err := sharedSQL.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewShowRepoSQL(db, sqlcrit.SQLite)
	require.NoError(t, err)
	require.NoError(t, repo.InitSchema(context.Background()))
	return repo, sharedSQL.NewOutboxRepo(db, sqlcrit.SQLite)
}

func TestShowRepoSQL_SQLiteContract(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	contracts.RunShowRepositoryContract(t, repo, nil)
}

func TestShowRepoSQL_InitSchemaIsIdempotent(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	assert.NoError(t, repo.InitSchema(context.Background()))
}

func TestShowRepoSQL_WritesOutboxInSameTransaction(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, outbox := newSQLiteRepo(t)

	// Act
	shows := contracts.SeedShows(t, repo)
	pending, err := outbox.FetchPendingOutbox(ctx, 10)

	// Assert
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, showDomain.ShowCreated, pending[0].EventType)
	assert.Equal(t, shows[0].ID.String(), pending[0].AggregateID)
	payload := pending[0].Payload.(map[string]interface{})
	assert.Equal(t, "Hemlock Grove", payload["name"])
}

func TestShowRepoSQL_FailedCreateLeavesNoOutboxEvent(t *testing.T) {
	ctx := context.Background()
	repo, outbox := newSQLiteRepo(t)
	shows := contracts.SeedShows(t, repo)

	before, err := outbox.FetchPendingOutbox(ctx, 10)
	require.NoError(t, err)
	_ = repo.Create(ctx, shows[0], before[0])

	after, err := outbox.FetchPendingOutbox(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestShowRepoSQL_WithoutDistinctRepeatsRows(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSQLiteRepo(t)
	contracts.SeedShows(t, repo)

	s := spec.GreaterThanOrEqualTo(spec.Where(spec.ToCollectionJoin(showDomain.ShowStarRatings), showDomain.StarRatingStars), 1)
	got, err := repo.FindAll(ctx, s, sharedQuery.OffsetPagination{}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	n, err := repo.Count(ctx, s)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestShowRepoSQL_PostgresStatement(t *testing.T) {
	repo, err := NewShowRepoSQL(nil, sqlcrit.Postgres)
	require.NoError(t, err)

	stmt, err := repo.Compiler().Select(showDomain.HasGenreName(ptr("Crime drama")), sqlcrit.Options{Columns: []string{"id"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT t0.id FROM tv_shows t0 INNER JOIN genres t1 ON t1.id = t0.genre_id WHERE t1.name = $1", stmt.SQL)
	assert.Equal(t, []any{"Crime drama"}, stmt.Args)
}

func ptr[T any](v T) *T { return &v }
