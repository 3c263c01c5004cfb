package memory

import (
	"context"
	"testing"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/tests/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowRepoMemory_Contract(t *testing.T) {
	repo, err := NewShowRepoMemory()
	require.NoError(t, err)
	contracts.RunShowRepositoryContract(t, repo, nil)
}

func TestShowRepoMemory_Outbox(t *testing.T) {
	// Arrange
	ctx := context.Background()
	repo, err := NewShowRepoMemory()
	require.NoError(t, err)
	shows := contracts.SeedShows(t, repo)

	// Act
	pending, err := repo.FetchPendingOutbox(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, repo.MarkOutboxProcessed(ctx, pending[0].ID))
	rest, err := repo.FetchPendingOutbox(ctx, 10)
	require.NoError(t, err)

	// Assert
	assert.Len(t, pending, 2)
	assert.Equal(t, showDomain.ShowCreated, pending[0].EventType)
	assert.Equal(t, shows[0].ID.String(), pending[0].AggregateID)
	assert.Len(t, rest, 2)
	assert.Len(t, repo.Outbox(), 3)
	assert.Error(t, repo.MarkOutboxProcessed(ctx, shows[0].ID))
}

func TestShowRepoMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo, err := NewShowRepoMemory()
	require.NoError(t, err)
	shows := contracts.SeedShows(t, repo)

	got, err := repo.GetByID(ctx, shows[0].ID)
	require.NoError(t, err)
	got.Name = "changed"
	got.Genre.Name = "changed"

	again, err := repo.GetByID(ctx, shows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Hemlock Grove", again.Name)
	assert.Equal(t, "Horror Thriller", again.Genre.Name)
}

func TestShowRepoMemory_SnapshotRestore(t *testing.T) {
	// Arrange
	source, err := NewShowRepoMemory()
	require.NoError(t, err)
	shows := contracts.SeedShows(t, source)
	target, err := NewShowRepoMemory()
	require.NoError(t, err)

	// Act
	target.Restore(source.Snapshot())

	// Assert
	assert.Equal(t, shows, target.Snapshot())
	assert.Empty(t, target.Outbox())
	n, err := target.Count(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
