// Package mcp exposes the engine over stdio as a Model Context
// Protocol server: a thin JSON-RPC bridge that maps a small set of
// tools (remember, recall, retrieve, forget, proactive_context, stats) onto
// internal/engine.
package mcp
