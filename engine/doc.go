// Package engine opens SQLite connections through the modernc.org/sqlite
// driver and registers the SQL kernel functions shared by every package of
// this module (mks_linear, mks_polynomial, mks_gaussian, mks_cosine).
package engine
