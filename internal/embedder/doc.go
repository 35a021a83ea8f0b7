// Package embedder implements the engine's embedding collaborator
// contract: embed(text) -> vec[384] with ‖vec‖₂ = 1 unless text is
// empty, in which case a zero vector is returned. A
// deterministic local fallback needs no external service; an
// HTTP-backed client talks to an Ollama-compatible embedding endpoint
// when one is configured.
package embedder
