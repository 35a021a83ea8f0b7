// Package entities implements the engine's entity-extraction
// collaborator contract: extract(text) -> list of spans labeled
// Person, Org, Location, or Other. A heuristic local extractor needs
// no external service; an HTTP-backed client delegates to a
// configured NER endpoint.
package entities
