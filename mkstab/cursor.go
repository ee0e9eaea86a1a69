package mkstab

import (
	"context"
	"fmt"

	"modernc.org/sqlite/vtab"
)

// rowSet is a search result flattened column-major: row i is query
// first+i/k at rank i%k.
type rowSet struct {
	dataset string
	k       int
	first   int
	indices []int
	values  []float64
}

// Cursor iterates the rows of one search.
type Cursor struct {
	table *Table
	rows  *rowSet
	pos   int
	end   int
}

// Filter runs the search for the constrained dataset. A query constraint
// searches only that query point.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows, c.pos, c.end = nil, 0, 0
	if idxNum&planDataset == 0 || len(vals) == 0 || vals[0] == nil {
		return fmt.Errorf("mks_knn: a dataset MATCH constraint is required")
	}
	name, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("mks_knn: MATCH expects a dataset name as TEXT, got %T", vals[0])
	}
	query := -1
	if idxNum&planQuery != 0 {
		if len(vals) < 2 {
			return fmt.Errorf("mks_knn: missing query argument")
		}
		q, err := asInt(vals[1])
		if err != nil {
			return err
		}
		if q < 0 {
			return nil
		}
		query = q
	}
	rows, err := c.table.search(context.Background(), name, query)
	if err != nil {
		return err
	}
	c.rows, c.end = rows, len(rows.indices)
	return nil
}

func asInt(v vtab.Value) (int, error) {
	switch t := v.(type) {
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	default:
		return 0, fmt.Errorf("mks_knn: query must be INTEGER, got %T", v)
	}
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < c.end {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= c.end }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.rows == nil || c.pos >= c.end {
		return nil, fmt.Errorf("mks_knn: Column out of range (pos=%d,end=%d)", c.pos, c.end)
	}
	switch col {
	case colDataset:
		return c.rows.dataset, nil
	case colQuery:
		return int64(c.rows.first + c.pos/c.rows.k), nil
	case colRank:
		return int64(c.pos % c.rows.k), nil
	case colRef:
		return int64(c.rows.indices[c.pos]), nil
	case colScore:
		return c.rows.values[c.pos], nil
	}
	return nil, fmt.Errorf("mks_knn: unsupported column %d", col)
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }

// Close releases the row set.
func (c *Cursor) Close() error {
	c.rows, c.pos, c.end = nil, 0, 0
	return nil
}
