// Package config loads and holds the memory engine's runtime
// configuration: storage location, server settings, and every tunable
// constant governing decay, plasticity, tiering, and retrieval.
package config
