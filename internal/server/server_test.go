package server

import (
	"bufio"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/stroke-tools-mcp/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Recognition.Seed = 42
	return New(cfg, "test")
}

func TestNew(t *testing.T) {
	s := New(config.Default(), "")
	require.NotNil(t, s)
	assert.NotNil(t, s.cache)
	assert.NotNil(t, s.recognizer)
	assert.Equal(t, "dev", s.version)
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			require.NoError(t, json.Unmarshal([]byte(tt.json), &req))

			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, "2.0", req.JSONRPC)
		})
	}
}

func TestMCPRequest_WithParams(t *testing.T) {
	jsonStr := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"stroke_load","arguments":{"path":"/test.json"}}}`

	var req MCPRequest
	require.NoError(t, json.Unmarshal([]byte(jsonStr), &req))
	require.NotNil(t, req.Params)

	var params ToolCallParams
	require.NoError(t, json.Unmarshal(req.Params, &params))
	assert.Equal(t, "stroke_load", params.Name)
	assert.JSONEq(t, `{"path":"/test.json"}`, string(params.Arguments))
}

func TestMCPResponse_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(MCPResponse{JSONRPC: "2.0", ID: 1, Result: map[string]interface{}{"status": "ok"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"status":"ok"}}`, string(data))

	data, err = json.Marshal(MCPResponse{
		JSONRPC: "2.0",
		ID:      2,
		Error:   &MCPError{Code: -32601, Message: "Method not found"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"Method not found"}}`, string(data))
}

func TestMCPNotification_Marshal(t *testing.T) {
	data, err := json.Marshal(MCPNotification{JSONRPC: "2.0", Method: "notifications/tools/list_changed"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"id"`)
	assert.NotContains(t, string(data), `"params"`)
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ProtocolVersion, result["protocolVersion"])

	info, ok := result["serverInfo"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, ServerName, info["name"])
	assert.Equal(t, "test", info["version"])
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "p", Method: "ping"})
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "p", resp.ID)
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	tools, ok := result["tools"].([]Tool)
	require.True(t, ok)
	assert.Len(t, tools, len(GetToolDefinitions()))
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t)
	assert.Nil(t, s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}))
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "resources/list"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "resources/list")
}

func TestServe(t *testing.T) {
	s := newTestServer(t)

	in := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`not json`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"sensitivity_params","arguments":{"sensitivity":100}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n")

	var out strings.Builder
	require.NoError(t, s.Serve(strings.NewReader(in), &out))

	var responses []MCPResponse
	sc := bufio.NewScanner(strings.NewReader(out.String()))
	for sc.Scan() {
		var resp MCPResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		responses = append(responses, resp)
	}

	// The notification and the unparsable line produce no output.
	require.Len(t, responses, 3)
	assert.Equal(t, float64(1), responses[0].ID)
	assert.Equal(t, float64(2), responses[1].ID)
	assert.Nil(t, responses[1].Error)
	assert.Equal(t, float64(3), responses[2].ID)
}
