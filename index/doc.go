// Package index defines the contracts shared by every max-kernel search
// strategy in this module: the Index interface, the bounded candidate list
// kept per query, the result matrices, traversal statistics and argument
// errors. Implementations live in the bruteforce (exhaustive oracle) and
// cover (single-tree and dual-tree) subpackages.
package index
