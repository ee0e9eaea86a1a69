package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/fastmks/engine"
	"github.com/viant/fastmks/vector"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"fastmks", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "mks.db")
	metricsPath := filepath.Join(dir, "mks.prom")

	out, err := run(t, "--db", dbPath, "generate", "--name", "refs", "--dim", "3", "--size", "200", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "stored refs: 200 dense points of dimension 3")

	out, err = run(t, "--db", dbPath, "generate", "--name", "q", "--distribution", "uniform", "--dim", "3", "--size", "20", "--seed", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "stored q: 20 dense points")

	out, err = run(t, "--db", dbPath, "search", "--reference", "refs", "--queries", "q", "--k", "3",
		"--kernel", "polynomial", "--degree", "2", "--offset", "1", "--save", "--print", "2", "--metrics-file", metricsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "FastMKS(mode=dual")
	assert.Contains(t, out, "query 1:")
	assert.NotContains(t, out, "query 2:")
	match := regexp.MustCompile(`run ([0-9a-f-]{36})`).FindStringSubmatch(out)
	require.Len(t, match, 2)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `fastmks_searches_total{mode="dual"} 1`)

	out, err = run(t, "--db", dbPath, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "refs: 200 dense points, dim 3")
	assert.Contains(t, out, match[1])

	out, err = run(t, "--db", dbPath, "show", "--run", match[1])
	require.NoError(t, err)
	assert.Contains(t, out, "q vs refs")
	assert.Contains(t, out, "query 19:")

	for _, mode := range []string{"naive", "single"} {
		out, err = run(t, "--db", dbPath, "search", "--reference", "refs", "--k", "2", "--mode", mode, "--parallel", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "FastMKS(mode="+mode)
	}
}

func TestImportCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "mks.db")
	db, err := engine.Open(dbPath)
	require.NoError(t, err)
	_, err = db.ExecContext(context.Background(), `CREATE TABLE docs(id TEXT PRIMARY KEY, embedding BLOB)`)
	require.NoError(t, err)
	for i, emb := range [][]float32{{1, 2}, {3, 4}, {0, 1}} {
		blob, err := vector.EncodeEmbedding(emb)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO docs(id, embedding) VALUES(?, ?)`, string(rune('a'+i)), blob)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	out, err := run(t, "--db", dbPath, "import", "--name", "docs", "--table", "docs", "--normalize")
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 embeddings from docs.embedding into docs")

	out, err = run(t, "--db", dbPath, "search", "--reference", "docs", "--k", "1", "--kernel", "cosine")
	require.NoError(t, err)
	assert.Contains(t, out, "query 0: 0(1)")
}

func TestCommandErrors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "mks.db")
	_, err := run(t, "--db", dbPath, "search", "--reference", "missing")
	assert.Error(t, err)
	_, err = run(t, "--db", dbPath, "generate", "--name", "x", "--distribution", "poisson")
	assert.Error(t, err)
	_, err = run(t, "--db", dbPath, "--log-level", "loud", "show")
	assert.Error(t, err)
	_, err = run(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "show")
	assert.Error(t, err)

	_, err = run(t, "--db", dbPath, "generate", "--name", "r", "--size", "10", "--seed", "1")
	require.NoError(t, err)
	_, err = run(t, "--db", dbPath, "search", "--reference", "r", "--k", "11")
	assert.Error(t, err)
	_, err = run(t, "--db", dbPath, "search", "--reference", "r", "--mode", "quad")
	assert.Error(t, err)
}
