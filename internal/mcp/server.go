package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/model"
	"github.com/shodhmemory/engine/internal/retrieval"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "shodhmemory"
	ServerVersion   = "0.1.0"
)

// Server is a stdio MCP server fronting an *engine.Engine.
type Server struct {
	engine    *engine.Engine
	formatter *Formatter
	log       *logging.Logger

	stdin  io.Reader
	stdout io.Writer

	mu          sync.Mutex
	initialized bool
}

// NewServer builds an MCP server around eng.
func NewServer(eng *engine.Engine) *Server {
	return &Server{
		engine:    eng,
		formatter: NewFormatter(),
		log:       logging.GetLogger("mcp"),
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
}

// Run reads newline-delimited JSON-RPC requests from stdin until ctx
// is cancelled or stdin closes, writing one response per request.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("starting MCP server", "protocol", ProtocolVersion)
	scanner := bufio.NewScanner(s.stdin)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}
		if resp := s.handleRequest(ctx, line); resp != nil {
			s.sendResponse(resp)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

func (s *Server) sendResponse(resp *Response) {
	b, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		return
	}
	fmt.Fprintln(s.stdout, string(b))
}

func (s *Server) handleRequest(ctx context.Context, line string) *Response {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		return &Response{JSONRPC: "2.0", Error: &RPCError{Code: ParseError, Message: "Parse error", Data: err.Error()}}
	}
	if req.JSONRPC != "2.0" {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{Code: InvalidRequest, Message: "Invalid Request", Data: "jsonrpc must be \"2.0\""}}
	}

	switch req.Method {
	case "initialize":
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    ServerCapabilities{Tools: &ToolsCapability{}},
			ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
		}}
	case "initialized":
		return nil
	case "tools/list":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: ToolsListResult{Tools: toolDefinitions()}}
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	default:
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{Code: MethodNotFound, Message: "Method not found", Data: req.Method}}
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req Request) *Response {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Error: &RPCError{Code: InvalidParams, Message: "Invalid params", Data: err.Error()}}
	}

	result, err := s.callTool(ctx, params.Name, params.Arguments)
	if err != nil {
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("error: %v", err)}},
			IsError: true,
		}}
	}

	return &Response{JSONRPC: "2.0", ID: req.ID, Result: CallToolResult{
		Content: []ContentBlock{{Type: "text", Text: s.formatter.FormatToolResponse(params.Name, result)}},
	}}
}

func (s *Server) callTool(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("marshalling arguments: %w", err)
	}

	switch name {
	case "remember":
		var p struct {
			UserID     string                 `json:"user_id"`
			Content    string                 `json:"content"`
			MemoryType string                 `json:"memory_type"`
			Tags       []string               `json:"tags"`
			Metadata   map[string]interface{} `json:"metadata"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return s.engine.Remember(ctx, engine.RememberOptions{
			UserID: p.UserID, Content: p.Content, MemoryType: model.MemoryType(p.MemoryType),
			Tags: p.Tags, Metadata: p.Metadata,
		})
	case "recall":
		var p struct {
			UserID string `json:"user_id"`
			Query  string `json:"query"`
			Mode   string `json:"mode"`
			Limit  int    `json:"limit"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return s.engine.Recall(ctx, engine.RecallOptions{
			UserID: p.UserID, Query: p.Query, Mode: retrieval.Mode(p.Mode), Limit: p.Limit,
		})
	case "retrieve":
		var p struct {
			UserID     string   `json:"user_id"`
			Tags       []string `json:"tags"`
			MemoryType string   `json:"memory_type"`
			Limit      int      `json:"limit"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return s.engine.Retrieve(ctx, engine.RecallOptions{
			UserID: p.UserID, Tags: p.Tags, MemoryType: model.MemoryType(p.MemoryType), Limit: p.Limit,
		})
	case "proactive_context":
		var p struct {
			UserID string `json:"user_id"`
			Limit  int    `json:"limit"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return s.engine.ProactiveContext(ctx, p.UserID, p.Limit)
	case "forget":
		var p struct {
			UserID string `json:"user_id"`
			ID     string `json:"id"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if err := s.engine.Forget(ctx, p.UserID, p.ID); err != nil {
			return nil, err
		}
		return map[string]bool{"deleted": true}, nil
	case "stats":
		var p struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return s.engine.Stats(ctx, p.UserID)
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func toolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "remember",
			Description: "Store a new memory for a user.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id":     {Type: "string", Description: "owning user id"},
					"content":     {Type: "string", Description: "memory content"},
					"memory_type": {Type: "string", Description: "one of decision, learning, error, discovery, pattern, task, context, conversation, observation"},
					"tags":        {Type: "array", Items: &Property{Type: "string"}},
				},
				Required: []string{"user_id", "content"},
			},
		},
		{
			Name:        "recall",
			Description: "Semantic/hybrid search over a user's memories.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id": {Type: "string"},
					"query":   {Type: "string"},
					"mode":    {Type: "string", Description: "semantic, associative, or hybrid"},
					"limit":   {Type: "integer"},
				},
				Required: []string{"user_id", "query"},
			},
		},
		{
			Name:        "retrieve",
			Description: "Filter a user's memories by tag or type without a query.",
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"user_id":     {Type: "string"},
					"tags":        {Type: "array", Items: &Property{Type: "string"}},
					"memory_type": {Type: "string"},
					"limit":       {Type: "integer"},
				},
				Required: []string{"user_id"},
			},
		},
		{
			Name:        "proactive_context",
			Description: "Surface the most relevant memories to bootstrap a new session.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"user_id": {Type: "string"}, "limit": {Type: "integer"}},
				Required:   []string{"user_id"},
			},
		},
		{
			Name:        "forget",
			Description: "Delete one memory.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"user_id": {Type: "string"}, "id": {Type: "string"}},
				Required:   []string{"user_id", "id"},
			},
		},
		{
			Name:        "stats",
			Description: "Report memory counts by tier and type for a user.",
			InputSchema: InputSchema{
				Type:       "object",
				Properties: map[string]Property{"user_id": {Type: "string"}},
				Required:   []string{"user_id"},
			},
		},
	}
}
