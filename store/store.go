package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/viant/vec/search"
	"go.uber.org/zap"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/index"
	"github.com/viant/fastmks/vector"
)

// ErrNotFound is returned when a dataset or run does not exist.
var ErrNotFound = errors.New("not found")

// Store reads and writes datasets and search results.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over db, ensuring the schema exists.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, err
	}
	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DB returns the underlying database.
func (s *Store) DB() *sql.DB { return s.db }

// DatasetInfo describes a stored dataset.
type DatasetInfo struct {
	Name string
	Dim  int
	Size int
	Kind string
}

// SaveDataset stores ds under name, replacing any dataset with that name.
func (s *Store) SaveDataset(ctx context.Context, name string, ds dataset.Dataset) error {
	if name == "" {
		return fmt.Errorf("store: dataset name is empty")
	}
	if ds == nil {
		return fmt.Errorf("store: dataset %s is nil", name)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteDataset(ctx, tx, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO mks_datasets(name, dim, size, kind) VALUES(?, ?, ?, ?)`,
		name, ds.Dim(), ds.Len(), dataset.Kind(ds)); err != nil {
		return fmt.Errorf("store: insert dataset %s: %w", name, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO mks_points(dataset, idx, vec) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < ds.Len(); i++ {
		blob, err := vector.Marshal(ds.At(i))
		if err != nil {
			return fmt.Errorf("store: dataset %s point %d: %w", name, i, err)
		}
		if _, err := stmt.ExecContext(ctx, name, i, blob); err != nil {
			return fmt.Errorf("store: dataset %s point %d: %w", name, i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("dataset saved", zap.String("dataset", name), zap.Int("size", ds.Len()), zap.Int("dim", ds.Dim()))
	return nil
}

// Dataset returns the description of a stored dataset.
func (s *Store) Dataset(ctx context.Context, name string) (*DatasetInfo, error) {
	info := &DatasetInfo{}
	err := s.db.QueryRowContext(ctx, `SELECT name, dim, size, kind FROM mks_datasets WHERE name = ?`, name).
		Scan(&info.Name, &info.Dim, &info.Size, &info.Kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: dataset %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}

// LoadDataset reads a stored dataset in its saved representation.
func (s *Store) LoadDataset(ctx context.Context, name string) (dataset.Dataset, error) {
	info, err := s.Dataset(ctx, name)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT idx, vec FROM mks_points WHERE dataset = ? ORDER BY idx`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]vector.Vector, 0, info.Size)
	for rows.Next() {
		var (
			idx  int
			blob []byte
		)
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, err
		}
		if idx != len(points) {
			return nil, fmt.Errorf("store: dataset %s: missing point %d", name, len(points))
		}
		v, err := vector.Unmarshal(blob)
		if err != nil {
			return nil, fmt.Errorf("store: dataset %s point %d: %w", name, idx, err)
		}
		if v.Dim() != info.Dim {
			return nil, fmt.Errorf("store: dataset %s point %d: dim %d != %d", name, idx, v.Dim(), info.Dim)
		}
		points = append(points, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(points) != info.Size {
		return nil, fmt.Errorf("store: dataset %s: holds %d points, want %d", name, len(points), info.Size)
	}
	if len(points) == 0 {
		if info.Kind == "sparse" {
			return dataset.NewSparse(info.Dim, 0), nil
		}
		return dataset.NewDense(info.Dim, 0), nil
	}
	return dataset.FromVectors(points)
}

// Datasets lists stored datasets by name.
func (s *Store) Datasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, dim, size, kind FROM mks_datasets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		if err := rows.Scan(&info.Name, &info.Dim, &info.Size, &info.Kind); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteDataset removes a dataset and its points.
func (s *Store) DeleteDataset(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := deleteDataset(ctx, tx, name); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteDataset(ctx context.Context, tx *sql.Tx, name string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM mks_points WHERE dataset = ?`, name); err != nil {
		return fmt.Errorf("store: delete points of %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM mks_datasets WHERE name = ?`, name); err != nil {
		return fmt.Errorf("store: delete dataset %s: %w", name, err)
	}
	return nil
}

// ImportSpec locates a table of float32 embedding BLOBs.
type ImportSpec struct {
	Table  string
	Column string
	// Normalize scales every embedding to unit L2 norm.
	Normalize bool
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ImportEmbeddings reads spec.Column of spec.Table in rowid order and stores
// the embeddings as a dense dataset called name. NULL embeddings are
// skipped. It returns the number of imported points.
func (s *Store) ImportEmbeddings(ctx context.Context, spec ImportSpec, name string) (int, error) {
	if !identifier.MatchString(spec.Table) || !identifier.MatchString(spec.Column) {
		return 0, fmt.Errorf("store: invalid table or column name %q.%q", spec.Table, spec.Column)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY rowid`, spec.Column, spec.Table))
	if err != nil {
		return 0, fmt.Errorf("store: import %s.%s: %w", spec.Table, spec.Column, err)
	}
	var (
		cols    [][]float64
		dim     = -1
		skipped int
	)
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			rows.Close()
			return 0, err
		}
		if blob == nil {
			skipped++
			continue
		}
		emb, err := vector.DecodeEmbedding(blob)
		if err != nil {
			rows.Close()
			return 0, fmt.Errorf("store: import %s.%s row %d: %w", spec.Table, spec.Column, len(cols)+skipped, err)
		}
		if dim == -1 {
			dim = len(emb)
		}
		if len(emb) != dim {
			rows.Close()
			return 0, fmt.Errorf("store: import %s.%s: inconsistent dims %d vs %d", spec.Table, spec.Column, len(emb), dim)
		}
		cols = append(cols, toFloat64(emb, spec.Normalize))
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("store: import %s.%s: no embeddings", spec.Table, spec.Column)
	}
	ds, err := dataset.FromColumns(cols...)
	if err != nil {
		return 0, err
	}
	if err := s.SaveDataset(ctx, name, ds); err != nil {
		return 0, err
	}
	s.logger.Info("embeddings imported",
		zap.String("dataset", name),
		zap.String("table", spec.Table),
		zap.Int("points", len(cols)),
		zap.Int("skipped", skipped),
		zap.Bool("normalized", spec.Normalize),
	)
	return len(cols), nil
}

func toFloat64(emb []float32, normalize bool) []float64 {
	scale := float64(1)
	if normalize {
		if m := search.Float32s(emb).Magnitude(); m > 0 {
			scale = 1 / float64(m)
		}
	}
	out := make([]float64, len(emb))
	for i, x := range emb {
		out[i] = float64(x) * scale
	}
	return out
}

// Run describes a persisted search.
type Run struct {
	ID          string
	Reference   string
	Queries     string
	Kernel      string
	Mode        string
	K           int
	Evaluations uint64
	Prunes      uint64
	CreatedAt   time.Time
}

// SaveResult stores result under run, assigning run.ID and run.CreatedAt
// when unset. It returns the run id.
func (s *Store) SaveResult(ctx context.Context, run Run, result *index.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("store: result is nil")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO mks_runs(run, reference, queries, kernel, mode, k, evaluations, prunes, created_at) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Reference, run.Queries, run.Kernel, run.Mode, result.K,
		int64(result.Stats.Evaluations), int64(result.Stats.Prunes), run.CreatedAt.UnixMilli()); err != nil {
		return "", fmt.Errorf("store: insert run %s: %w", run.ID, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO mks_results(run, query, rank, ref, value) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for q := 0; q < result.Queries; q++ {
		for r := 0; r < result.K; r++ {
			if _, err := stmt.ExecContext(ctx, run.ID, q, r, result.Index(r, q), result.Value(r, q)); err != nil {
				return "", fmt.Errorf("store: insert result %s/%d/%d: %w", run.ID, q, r, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return run.ID, nil
}

// LoadRun returns the description of a stored run.
func (s *Store) LoadRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{}
	var (
		evaluations, prunes int64
		created             int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run, reference, queries, kernel, mode, k, evaluations, prunes, created_at FROM mks_runs WHERE run = ?`, id).
		Scan(&run.ID, &run.Reference, &run.Queries, &run.Kernel, &run.Mode, &run.K, &evaluations, &prunes, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store: run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	run.Evaluations, run.Prunes = uint64(evaluations), uint64(prunes)
	run.CreatedAt = time.UnixMilli(created)
	return run, nil
}

// LoadResult reads the result matrices of a stored run.
func (s *Store) LoadResult(ctx context.Context, id string) (*index.Result, error) {
	run, err := s.LoadRun(ctx, id)
	if err != nil {
		return nil, err
	}
	var queries int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(query) + 1, 0) FROM mks_results WHERE run = ?`, id).Scan(&queries); err != nil {
		return nil, err
	}
	result := index.NewResult(run.K, queries)
	result.Stats = index.Stats{Evaluations: run.Evaluations, Prunes: run.Prunes}
	rows, err := s.db.QueryContext(ctx, `SELECT query, rank, ref, value FROM mks_results WHERE run = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			q, rank, ref int
			value        float64
		)
		if err := rows.Scan(&q, &rank, &ref, &value); err != nil {
			return nil, err
		}
		if rank < 0 || rank >= run.K {
			return nil, fmt.Errorf("store: run %s: rank %d out of range", id, rank)
		}
		result.Indices[q*run.K+rank] = ref
		result.Values[q*run.K+rank] = value
	}
	return result, rows.Err()
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run, reference, queries, kernel, mode, k, evaluations, prunes, created_at FROM mks_runs ORDER BY created_at DESC, run`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			run                          Run
			evaluations, prunes, created int64
		)
		if err := rows.Scan(&run.ID, &run.Reference, &run.Queries, &run.Kernel, &run.Mode, &run.K, &evaluations, &prunes, &created); err != nil {
			return nil, err
		}
		run.Evaluations, run.Prunes = uint64(evaluations), uint64(prunes)
		run.CreatedAt = time.UnixMilli(created)
		out = append(out, run)
	}
	return out, rows.Err()
}
