// Package maintenance runs the periodic background tick: node and
// edge decay, edge pruning, rehearsal of the most-activated memories,
// consolidation of stale low-value records, and vector-index repair.
// Ticks are idempotent under constant time.
package maintenance
