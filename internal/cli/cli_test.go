package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	showDomain "github.com/davicafu/hexaspec/internal/show/domain"
	"github.com/davicafu/hexaspec/internal/show/infra/outbound/filesystem"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "hexaspec", cmd.Use)

	for _, name := range []string{"serve", "seed", "search", "export"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
	assert.NotNil(t, cmd.PersistentFlags().ShorthandLookup("c"))
}

// env prepara un directorio de trabajo vacío y devuelve la ruta absoluta
// de testdata.
func env(t *testing.T, backend string) string {
	t.Helper()
	testdata, err := filepath.Abs("testdata")
	require.NoError(t, err)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DB_BACKEND", backend)
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "hexaspec.db"))
	t.Setenv("MEMORY_SNAPSHOT", filepath.Join(dir, "snapshot.json"))
	t.Setenv("CLICKHOUSE_ADDR", "")
	t.Setenv("LOG_LEVEL", "error")
	return testdata
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSeedSearchExport_Memory(t *testing.T) {
	testdata := env(t, "memory")
	seedFile := filepath.Join(testdata, "shows.yaml")

	// seed es idempotente gracias a la instantánea
	out, err := run(t, "seed", seedFile)
	require.NoError(t, err)
	assert.Equal(t, "created 3 of 3 shows\n", out)
	out, err = run(t, "seed", seedFile)
	require.NoError(t, err)
	assert.Equal(t, "created 0 of 3 shows\n", out)

	t.Run("search json", func(t *testing.T) {
		out, err := run(t, "search", "--genre", "Crime drama", "--format", "json")
		require.NoError(t, err)
		var shows []*showDomain.TvShow
		require.NoError(t, json.Unmarshal([]byte(out), &shows))
		require.Len(t, shows, 1)
		assert.Equal(t, "Better Call Saul", shows[0].Name)
		assert.Len(t, shows[0].StarRatings, 2)
	})

	t.Run("search text", func(t *testing.T) {
		out, err := run(t, "search", "--keyword", "dead", "--keyword", "lawyer", "--sort", "name")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "Better Call Saul\tCrime drama\t-\t[4,2]\t7.00 EUR")
		assert.Contains(t, lines[1], "The Walking Dead")
	})

	t.Run("query file is or-ed", func(t *testing.T) {
		queries := filepath.Join(t.TempDir(), "queries.yaml")
		require.NoError(t, os.WriteFile(queries, []byte("- available_on_netflix: true\n- release_dates: [\"2010\"]\n"), 0o644))
		out, err := run(t, "search", "--query-file", queries, "--count")
		require.NoError(t, err)
		assert.Equal(t, "2\n", out)
	})

	t.Run("count and paging", func(t *testing.T) {
		out, err := run(t, "search", "--count", "--netflix=false")
		require.NoError(t, err)
		assert.Equal(t, "2\n", out)

		out, err = run(t, "search", "--sort", "name", "--limit", "1", "--offset", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "The Walking Dead")
		assert.NotContains(t, out, "Hemlock Grove")
	})

	t.Run("explain is not available", func(t *testing.T) {
		_, err := run(t, "search", "--explain")
		assert.Error(t, err)
	})

	t.Run("export and reseed", func(t *testing.T) {
		xlsx := filepath.Join(t.TempDir(), "shows.xlsx")
		out, err := run(t, "export", xlsx, "--max-price", "7", "--sort", "name")
		require.NoError(t, err)
		assert.Contains(t, out, "exported 2 shows")

		f, err := os.Open(xlsx)
		require.NoError(t, err)
		defer f.Close()
		shows, err := filesystem.ReadWorkbook(f)
		require.NoError(t, err)
		assert.Equal(t, "Better Call Saul", shows[0].Name)
		assert.Equal(t, "The Walking Dead", shows[1].Name)

		out, err = run(t, "seed", xlsx, "--format", "json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"read": 2, "created": 0}`, out)
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := run(t, "seed", "shows.csv")
		assert.ErrorContains(t, err, "unsupported seed file")
		_, err = run(t, "search", "--sort", "unknown")
		assert.Error(t, err)
		_, err = run(t, "search", "--format", "xml")
		assert.ErrorContains(t, err, "invalid format")
	})
}

func TestSearchExplain_SQLite(t *testing.T) {
	testdata := env(t, "sqlite")

	out, err := run(t, "search", "--genre", "Crime drama", "--min-stars", "4", "--sort", "-name", "--limit", "5", "--explain")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join(testdata, "golden")),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explain_sqlite", []byte(out))
}

func TestSeedSearch_SQLite(t *testing.T) {
	testdata := env(t, "sqlite")

	out, err := run(t, "seed", filepath.Join(testdata, "shows.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "created 3 of 3 shows\n", out)

	out, err = run(t, "search", "--min-stars", "4", "--sort", "name")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Better Call Saul")
	assert.Contains(t, lines[1], "The Walking Dead")
}
