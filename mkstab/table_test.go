package mkstab

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/engine"
	"github.com/viant/fastmks/fastmks"
	"github.com/viant/fastmks/index/bruteforce"
	"github.com/viant/fastmks/index/cover"
	"github.com/viant/fastmks/internal/metrics"
	"github.com/viant/fastmks/kernel"
)

func openDB(t *testing.T, source Source, opts ...Option) *sql.DB {
	t.Helper()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Register(db, source, opts...))
	return db
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, mode string) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, vec.WithLabelValues(mode).Write(m))
	return m.GetCounter().GetValue()
}

type row struct {
	query, rank, ref int
	score            float64
}

func scanRows(t *testing.T, rows *sql.Rows) []row {
	t.Helper()
	defer rows.Close()
	var out []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.query, &r.rank, &r.ref, &r.score))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestTable_SelfSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(41))
	refs := dataset.Randn(rng, 3, 60)
	db := openDB(t, Datasets{"refs": refs})

	_, err := db.Exec(`CREATE VIRTUAL TABLE knn USING mks_knn(kernel=polynomial, degree=2, offset=1, mode=dual, k=4)`)
	require.NoError(t, err)

	rows, err := db.Query(`SELECT query, rank, ref, score FROM knn WHERE dataset MATCH 'refs'`)
	require.NoError(t, err)
	got := scanRows(t, rows)
	require.Len(t, got, 60*4)

	brute, err := bruteforce.New(refs, kernel.NewPolynomial(2, 1))
	require.NoError(t, err)
	expected, err := brute.Search(refs, 4)
	require.NoError(t, err)
	for _, r := range got {
		assert.Equal(t, expected.Index(r.rank, r.query), r.ref)
		assert.InEpsilon(t, expected.Value(r.rank, r.query), r.score, 1e-9)
	}

	rows, err = db.Query(`SELECT query, rank, ref, score FROM knn WHERE dataset MATCH 'refs' AND query = 7`)
	require.NoError(t, err)
	got = scanRows(t, rows)
	require.Len(t, got, 4)
	for i, r := range got {
		assert.Equal(t, 7, r.query)
		assert.Equal(t, i, r.rank)
		assert.Equal(t, expected.Index(i, 7), r.ref)
	}
}

func TestTable_QueryConstraintSearchesOnePoint(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	refs := dataset.Randn(rng, 3, 60)
	queries := dataset.Randn(rng, 3, 8)
	collector := metrics.NewCollector()
	db := openDB(t, Datasets{"refs": refs, "q": queries}, WithMetrics(collector))

	_, err := db.Exec(`CREATE VIRTUAL TABLE knn USING mks_knn(mode=naive, k=3, queries=q)`)
	require.NoError(t, err)
	rows, err := db.Query(`SELECT query, rank, ref, score FROM knn WHERE dataset MATCH 'refs' AND query = 5`)
	require.NoError(t, err)
	got := scanRows(t, rows)
	require.Len(t, got, 3)

	// one query against every reference, not the whole query set
	assert.Equal(t, 1.0, counterValue(t, collector.Searches, "naive"))
	assert.Equal(t, 60.0, counterValue(t, collector.Evaluations, "naive"))

	brute, err := bruteforce.New(refs, kernel.Linear{})
	require.NoError(t, err)
	expected, err := brute.Search(queries, 3)
	require.NoError(t, err)
	for i, r := range got {
		assert.Equal(t, 5, r.query)
		assert.Equal(t, i, r.rank)
		assert.Equal(t, expected.Index(i, 5), r.ref)
		assert.InEpsilon(t, expected.Value(i, 5), r.score, 1e-9)
	}

	for _, query := range []int{-1, 8} {
		rows, err = db.Query(`SELECT query, rank, ref, score FROM knn WHERE dataset MATCH 'refs' AND query = ?`, query)
		require.NoError(t, err)
		assert.Empty(t, scanRows(t, rows))
	}
	assert.Equal(t, 1.0, counterValue(t, collector.Searches, "naive"))
}

func TestTable_Queries(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	refs := dataset.Randn(rng, 2, 30)
	queries := dataset.Randn(rng, 2, 5)
	db := openDB(t, Datasets{"refs": refs, "q": queries})

	_, err := db.Exec(`CREATE VIRTUAL TABLE knn_q USING mks_knn(kernel=gaussian, bandwidth=0.7, mode=single, k=50, queries=q)`)
	require.NoError(t, err)
	rows, err := db.Query(`SELECT query, rank, ref, score FROM knn_q WHERE dataset = 'refs'`)
	require.NoError(t, err)
	got := scanRows(t, rows)
	// k is capped by the reference set size
	require.Len(t, got, 5*30)

	brute, err := bruteforce.New(refs, kernel.Gaussian{Bandwidth: 0.7})
	require.NoError(t, err)
	expected, err := brute.Search(queries, 30)
	require.NoError(t, err)
	for _, r := range got {
		assert.Equal(t, expected.Index(r.rank, r.query), r.ref)
	}
}

func TestTable_Errors(t *testing.T) {
	db := openDB(t, Datasets{"refs": dataset.Randn(rand.New(rand.NewSource(43)), 2, 5)})

	_, err := db.Exec(`CREATE VIRTUAL TABLE bad_kernel USING mks_knn(kernel=sigmoidal)`)
	assert.Error(t, err)
	_, err = db.Exec(`CREATE VIRTUAL TABLE bad_k USING mks_knn(k=zero)`)
	assert.Error(t, err)

	_, err = db.Exec(`CREATE VIRTUAL TABLE knn USING mks_knn(mode=naive, k=2)`)
	require.NoError(t, err)
	var n int
	assert.Error(t, db.QueryRow(`SELECT COUNT(*) FROM knn`).Scan(&n))
	assert.Error(t, db.QueryRow(`SELECT COUNT(*) FROM knn WHERE dataset MATCH 'missing'`).Scan(&n))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM knn WHERE dataset MATCH 'refs'`).Scan(&n))
	assert.Equal(t, 10, n)
}

func TestParseTableOptions(t *testing.T) {
	testCases := []struct {
		description string
		args        []string
		expect      tableOptions
		expectErr   bool
	}{
		{
			description: "defaults",
			expect:      tableOptions{kernel: kernel.Config{Name: "linear"}, k: defaultK},
		},
		{
			description: "full",
			args:        []string{"kernel=polynomial", " degree = 3", "offset=0.5", "mode=single", "k=7", "base=2", "bound=level", "parallel=4", "queries=q", "positional"},
			expect: tableOptions{
				kernel:      kernel.Config{Name: "polynomial", Degree: 3, Offset: 0.5},
				mode:        fastmks.Single,
				k:           7,
				base:        2,
				bound:       cover.BoundLevel,
				parallelism: 4,
				queries:     "q",
			},
		},
		{description: "unknown key", args: []string{"colour=red"}, expectErr: true},
		{description: "bad mode", args: []string{"mode=quad"}, expectErr: true},
		{description: "negative k", args: []string{"k=-1"}, expectErr: true},
		{description: "bad degree", args: []string{"degree=x"}, expectErr: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			actual, err := parseTableOptions(testCase.args)
			if testCase.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expect, actual)
		})
	}
}
