// Package store persists datasets and search results in SQLite.
//
// Points are stored one row per column using the tagged vector encoding,
// so dense and sparse datasets round-trip with their representation. Tables
// holding sqlite-vec style float32 embeddings can be imported as datasets.
package store
