// Package vector implements an embedded, in-process approximate
// nearest-neighbor index over L2-normalized embeddings, in the
// DiskANN/Vamana family: incremental graph construction with
// alpha-RNG neighbor pruning and greedy beam search for queries.
//
// The index never talks to an external vector database — it is built
// to run fully offline, in the same process as the rest of the
// engine.
package vector
