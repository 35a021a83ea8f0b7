// Package storage provides the engine's durable key-value layer: a
// single bbolt database holding memory records, associative edges, and
// every secondary index (tag, date, importance bucket, type, user,
// entity, graph adjacency) the lookups need. All writes are committed
// inside a single bbolt transaction, which is bbolt's unit of fsync
// durability and its unit of all-or-nothing visibility: a crash before
// Update returns leaves no partial secondary-index state, and a crash
// after it returns leaves the full write visible.
package storage
