// Package mkstab exposes max-kernel search to SQL through the mks_knn
// virtual table module.
//
//	CREATE VIRTUAL TABLE knn USING mks_knn(kernel=polynomial, degree=2, offset=1, mode=dual, k=5);
//	SELECT query, rank, ref, score FROM knn WHERE dataset MATCH 'refs';
//	SELECT rank, ref, score FROM knn WHERE dataset MATCH 'refs' AND query = 7;
//
// MATCH names the reference dataset; rank starts at 0. Without a queries=<name> option the
// reference set is searched against itself. Datasets are resolved through a
// Source, typically a store.Store opened on its own connection pool.
package mkstab
