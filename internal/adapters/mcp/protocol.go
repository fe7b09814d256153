// Package mcp serves the PDF tools over the Model Context Protocol's
// streamable HTTP transport: JSON-RPC 2.0 messages are POSTed to a single
// endpoint, and sessions are identified by the Mcp-Session-Id header.
package mcp

import (
	"bytes"
	"encoding/json"
	"errors"
)

const (
	HeaderSessionID = "Mcp-Session-Id"

	LatestProtocolVersion = "2025-03-26"
	jsonrpcVersion        = "2.0"
)

var supportedProtocolVersions = []string{
	"2025-03-26",
	"2024-11-05",
}

const (
	codeInvalidSession = -32000
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

const (
	methodInitialize  = "initialize"
	methodInitialized = "notifications/initialized"
	methodPing        = "ping"
	methodToolsList   = "tools/list"
	methodToolsCall   = "tools/call"
	methodProgress    = "notifications/progress"
	methodCancelled   = "notifications/cancelled"
	legacyInitialized = "initialized"
)

// message is any inbound JSON-RPC object. A missing or null ID means a
// notification; a message without a method is a client response and needs no
// answer.
type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

func (m message) hasID() bool {
	id := bytes.TrimSpace(m.ID)
	return len(id) > 0 && !bytes.Equal(id, []byte("null"))
}

func (m message) isRequest() bool {
	return m.Method != "" && m.hasID()
}

func (m message) isNotification() bool {
	return m.Method != "" && !m.hasID()
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func resultResponse(id json.RawMessage, result any) *response {
	return &response{JSONRPC: jsonrpcVersion, ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, msg string, data any) *response {
	return &response{
		JSONRPC: jsonrpcVersion,
		ID:      id,
		Error:   &rpcError{Code: code, Message: msg, Data: data},
	}
}

func invalidSessionResponse() *response {
	return errorResponse(nil, codeInvalidSession, "Invalid session", nil)
}

var errEmptyBatch = errors.New("empty batch")

// parseMessages decodes a POST body holding one message or a batch array.
func parseMessages(body []byte) ([]message, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty body")
	}

	if trimmed[0] == '[' {
		var batch []message
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, true, err
		}
		if len(batch) == 0 {
			return nil, true, errEmptyBatch
		}
		return batch, true, nil
	}

	var single message
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, false, err
	}
	return []message{single}, false, nil
}

func negotiateProtocolVersion(requested string) string {
	for _, v := range supportedProtocolVersions {
		if v == requested {
			return v
		}
	}
	return LatestProtocolVersion
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"clientInfo"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Meta      struct {
		ProgressToken json.RawMessage `json:"progressToken,omitempty"`
	} `json:"_meta"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolCallResult struct {
	Content           []contentBlock `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	IsError           bool           `json:"isError,omitempty"`
}

type progressParams struct {
	ProgressToken json.RawMessage `json:"progressToken"`
	Progress      int             `json:"progress"`
	Total         int             `json:"total,omitempty"`
	Message       string          `json:"message,omitempty"`
}
