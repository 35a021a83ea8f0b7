package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shodhmemory/engine/internal/model"
)

// Formatter renders tool results as human-readable text followed by
// the raw JSON payload, so a client can show either.
type Formatter struct{}

// NewFormatter builds a Formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// FormatToolResponse renders result for toolName.
func (f *Formatter) FormatToolResponse(toolName string, result interface{}) string {
	var sb strings.Builder

	switch toolName {
	case "remember":
		if rec, ok := result.(*model.Record); ok {
			sb.WriteString(fmt.Sprintf("stored %s as %s (importance %.2f)\n", rec.ID, rec.MemoryType, rec.Importance))
		}
	case "recall", "retrieve", "proactive_context":
		if recs, ok := result.([]*model.Record); ok {
			sb.WriteString(fmt.Sprintf("%d matching memories\n", len(recs)))
			for _, r := range recs {
				sb.WriteString(fmt.Sprintf("- [%s] %s\n", r.ID, truncate(r.Content, 80)))
			}
		}
	case "forget":
		sb.WriteString("memory deleted\n")
	case "stats":
		// fall through to JSON only
	}

	jsonBytes, _ := json.MarshalIndent(result, "", "  ")
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	sb.Write(jsonBytes)
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
