// Package engine is the facade that wires storage, the vector index,
// the associative graph, tier placement, importance scoring,
// compression, and the embedder/entity-extractor collaborators into
// the operations callers use: Remember, Recall, Retrieve,
// ProactiveContext, Get, Forget, ForgetAll, and Stats, plus Warm to
// rebuild vector indexes at startup. HTTP and MCP surfaces are thin
// adapters over it.
package engine
