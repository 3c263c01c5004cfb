package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/analytics/clickhouse"
	"github.com/davicafu/hexaspec/tests/fixtures"
)

func ptr[T any](v T) *T { return &v }

func TestShowClickHouseIntegration_LogAndCount(t *testing.T) {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		t.Skip("CLICKHOUSE_ADDR not set")
	}
	ctx := context.Background()

	repo, err := clickhouse.NewShowAnalyticsRepo(addr, "default")
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.InitSchema(ctx))

	// El histórico es acumulativo: medimos la diferencia
	crime := showDomain.HasGenreName(ptr("Crime drama"))
	before, err := repo.CountMatching(ctx, crime, showDomain.ShowCreated)
	require.NoError(t, err)

	require.NoError(t, repo.LogBatch(ctx, fixtures.TvShows(), showDomain.ShowCreated))

	after, err := repo.CountMatching(ctx, crime, showDomain.ShowCreated)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
