// Package model defines the engine's core data types: memory records,
// associative edges, entities, and the error taxonomy shared by every
// other package.
package model
