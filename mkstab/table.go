package mkstab

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"modernc.org/sqlite/vtab"

	"github.com/viant/fastmks/dataset"
	"github.com/viant/fastmks/fastmks"
	"github.com/viant/fastmks/internal/metrics"
	"github.com/viant/fastmks/kernel"
	"github.com/viant/fastmks/vector"
)

// Source resolves datasets by name.
type Source interface {
	LoadDataset(ctx context.Context, name string) (dataset.Dataset, error)
}

// Datasets is an in-memory Source.
type Datasets map[string]dataset.Dataset

// LoadDataset returns the named dataset.
func (d Datasets) LoadDataset(_ context.Context, name string) (dataset.Dataset, error) {
	if ds, ok := d[name]; ok {
		return ds, nil
	}
	return nil, fmt.Errorf("mks_knn: dataset %q not found", name)
}

// Module implements vtab.Module for mks_knn tables.
type Module struct {
	source  Source
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures the module.
type Option func(*Module)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics records every search run by a table.
func WithMetrics(c *metrics.Collector) Option { return func(m *Module) { m.metrics = c } }

// Register registers the mks_knn module with db. Datasets are resolved
// through source, which must not share db's only connection.
func Register(db *sql.DB, source Source, opts ...Option) error {
	if source == nil {
		return fmt.Errorf("mks_knn: source is nil")
	}
	m := &Module{source: source, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if err := vtab.RegisterModule(db, "mks_knn", m); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

const (
	colDataset = iota
	colQuery
	colRank
	colRef
	colScore
)

const (
	planDataset = 1 << iota
	planQuery
)

// Create declares a new table.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) { return m.connect(ctx, args) }

// Connect attaches to an existing table.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) { return m.connect(ctx, args) }

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("mks_knn: expects at least 3 args, got %d", len(args))
	}
	opts, err := parseTableOptions(args[3:])
	if err != nil {
		return nil, err
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("mks_knn: EnableConstraintSupport failed: %w", err)
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(dataset TEXT, query INTEGER, rank INTEGER, ref INTEGER, score REAL)", args[2])); err != nil {
		return nil, err
	}
	return &Table{module: m, name: args[2], options: opts}, nil
}

// Table is one mks_knn table instance.
type Table struct {
	module  *Module
	name    string
	options tableOptions
}

// BestIndex consumes dataset MATCH (or =) and an optional query = constraint.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var datasetConstraint, queryConstraint *vtab.Constraint
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == colDataset && (c.Op == vtab.OpMATCH || c.Op == vtab.OpEQ):
			datasetConstraint = c
		case c.Column == colQuery && c.Op == vtab.OpEQ:
			queryConstraint = c
		}
	}
	info.IdxNum = 0
	if datasetConstraint == nil {
		return nil
	}
	next := 0
	datasetConstraint.ArgIndex = next
	datasetConstraint.Omit = true
	next++
	info.IdxNum = planDataset
	if queryConstraint != nil {
		queryConstraint.ArgIndex = next
		queryConstraint.Omit = true
		info.IdxNum |= planQuery
	}
	return nil
}

// Open allocates a cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect releases nothing.
func (t *Table) Disconnect() error { return nil }

// Destroy releases nothing; datasets live in the source.
func (t *Table) Destroy() error { return nil }

// search runs the configured search over the named reference dataset. A
// non-negative query restricts the search to that single query point.
func (t *Table) search(ctx context.Context, name string, query int) (*rowSet, error) {
	source := t.module.source
	refs, err := source.LoadDataset(ctx, name)
	if err != nil {
		return nil, err
	}
	queries := refs
	if t.options.queries != "" {
		if queries, err = source.LoadDataset(ctx, t.options.queries); err != nil {
			return nil, err
		}
	}
	k, err := kernel.New(t.options.kernel)
	if err != nil {
		return nil, err
	}
	n := t.options.k
	if n > refs.Len() {
		n = refs.Len()
	}
	opts := append(t.options.fastmksOptions(),
		fastmks.WithLogger(t.module.logger),
		fastmks.WithMetrics(t.module.metrics),
	)
	if query >= 0 {
		return t.searchOne(refs, queries, k, n, name, query, opts)
	}
	if t.options.queries != "" {
		opts = append(opts, fastmks.WithQueries(queries))
	}
	mks, err := fastmks.New(refs, k, opts...)
	if err != nil {
		return nil, err
	}
	result, err := mks.Search(n)
	if err != nil {
		return nil, err
	}
	return &rowSet{dataset: name, k: n, indices: result.Indices, values: result.Values}, nil
}

// searchOne answers a single query point; out-of-range queries yield no rows.
func (t *Table) searchOne(refs, queries dataset.Dataset, k kernel.Kernel, n int, name string, query int, opts []fastmks.Option) (*rowSet, error) {
	if query >= queries.Len() {
		return &rowSet{dataset: name, k: n, first: query}, nil
	}
	point, err := dataset.FromVectors([]vector.Vector{queries.At(query)})
	if err != nil {
		return nil, err
	}
	mks, err := fastmks.New(refs, k, opts...)
	if err != nil {
		return nil, err
	}
	result, err := mks.SearchQueries(point, n)
	if err != nil {
		return nil, err
	}
	return &rowSet{dataset: name, k: n, first: query, indices: result.Indices, values: result.Values}, nil
}
