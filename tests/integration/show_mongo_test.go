package integration

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	sharedMongo "github.com/davicafu/hexaspec/internal/shared/infra/platform/db/mongodb"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/db/mongodb"
	"github.com/davicafu/hexaspec/tests/contracts"
)

func TestShowMongoIntegration_Contract(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := sharedMongo.Connect(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("hexaspec_test")
	require.NoError(t, db.Drop(ctx))

	repo, err := mongodb.NewShowRepoMongoDB(ctx, client, db.Name())
	require.NoError(t, err)
	require.NoError(t, repo.InitSchema(ctx))

	contracts.RunShowRepositoryContract(t, repo, map[string]string{
		"collection left join": "arrays are matched element-wise, NOT IN over an embedded array excludes the whole document",
	})
}
