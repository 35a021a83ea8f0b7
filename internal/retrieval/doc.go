// Package retrieval implements the hybrid ranking planner: combining
// semantic similarity, spreading-activation, importance, recency, and
// a per-type prior into a single ranked candidate list.
package retrieval
