// Package dataset models ordered collections of points (columns) of a fixed
// dimension. Reference and query sets are both Datasets; points are
// addressed by column index everywhere else in the module.
package dataset
