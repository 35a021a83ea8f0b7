// Package tier implements the Working/Session/LongTerm memory
// lifecycle: initial placement on ingest, eviction scoring for
// overflow, and the promotion rules that move a record toward
// durability as it proves its worth.
package tier
