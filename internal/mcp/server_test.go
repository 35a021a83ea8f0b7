package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shodhmemory/engine/internal/embedder"
	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/entities"
	"github.com/shodhmemory/engine/internal/testutil"
	"github.com/shodhmemory/engine/pkg/config"
)

func newTestMCPServer(t *testing.T) (*Server, *bytes.Buffer) {
	t.Helper()
	store := testutil.NewTestStore(t)
	eng := engine.New(*config.DefaultConfig(), store, embedder.NewLocal(), entities.NewLocal())
	t.Cleanup(func() { _ = eng.Close() })

	out := &bytes.Buffer{}
	s := NewServer(eng)
	s.stdout = out
	return s, out
}

func TestHandleInitializeReportsProtocolVersion(t *testing.T) {
	s, _ := newTestMCPServer(t)
	resp := s.handleRequest(context.Background(), `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	require.NotNil(t, resp)
	result, ok := resp.Result.(InitializeResult)
	require.True(t, ok)
	require.Equal(t, ProtocolVersion, result.ProtocolVersion)
}

func TestHandleToolsListReturnsSixTools(t *testing.T) {
	s, _ := newTestMCPServer(t)
	resp := s.handleRequest(context.Background(), `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	result, ok := resp.Result.(ToolsListResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 6)
}

func TestHandleToolsCallRememberThenRecall(t *testing.T) {
	s, _ := newTestMCPServer(t)
	ctx := context.Background()

	rememberReq := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"remember","arguments":{"user_id":"u1","content":"met Bob at the summit"}}}`
	resp := s.handleRequest(ctx, rememberReq)
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)
	result := resp.Result.(CallToolResult)
	require.False(t, result.IsError)

	recallReq := `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"recall","arguments":{"user_id":"u1","query":"summit"}}}`
	resp = s.handleRequest(ctx, recallReq)
	result = resp.Result.(CallToolResult)
	require.False(t, result.IsError)
	require.True(t, strings.Contains(result.Content[0].Text, "matching memories"))
}

func TestHandleRequestRejectsUnknownMethod(t *testing.T) {
	s, _ := newTestMCPServer(t)
	resp := s.handleRequest(context.Background(), `{"jsonrpc":"2.0","id":1,"method":"bogus"}`)
	require.NotNil(t, resp.Error)
	require.Equal(t, MethodNotFound, resp.Error.Code)
}

func TestRunEmitsOneJSONResponsePerLine(t *testing.T) {
	s, out := newTestMCPServer(t)
	s.stdin = strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	require.NoError(t, s.Run(context.Background()))

	var resp Response
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp))
	require.Nil(t, resp.Error)
}
