// Package bruteforce provides exhaustive max-kernel search: every query is
// scored against every reference point. It performs no pruning and serves
// as the correctness oracle for the tree-based strategies.
package bruteforce
