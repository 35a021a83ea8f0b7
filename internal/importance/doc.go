// Package importance computes the bounded [0,1] importance score
// assigned to a record on ingest, and the bounded delta applied on
// Hebbian reinforcement.
package importance
