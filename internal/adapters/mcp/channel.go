package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/pdfmcp/internal/application"
	"github.com/bnema/pdfmcp/internal/domain"
	"github.com/bnema/pdfmcp/internal/version"
)

const outletBuffer = 32

var ErrStreamAttached = errors.New("session already has an open stream")

// Channel is the server side of one MCP session. It is registered under its
// id from creation until Close.
type Channel struct {
	id        domain.SessionID
	createdAt time.Time
	tools     *Toolset
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      domain.SessionState
	outlet     chan []byte
	clientName string
	protocol   string

	closeOnce sync.Once
	onClose   func(domain.SessionID)
}

func newChannel(id domain.SessionID, createdAt time.Time, tools *Toolset, logger *slog.Logger, onClose func(domain.SessionID)) *Channel {
	ctx, cancel := context.WithCancel(context.Background())
	return &Channel{
		id:        id,
		createdAt: createdAt,
		tools:     tools,
		logger:    logger.With("session_id", string(id)),
		ctx:       ctx,
		cancel:    cancel,
		state:     domain.SessionPending,
		onClose:   onClose,
	}
}

func (c *Channel) ID() domain.SessionID {
	return c.id
}

func (c *Channel) CreatedAt() time.Time {
	return c.createdAt
}

func (c *Channel) State() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done is closed once the channel is closed.
func (c *Channel) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Channel) transition(next domain.SessionState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanTransition(next) {
		return fmt.Errorf("%w: session %s cannot move from %s to %s", domain.ErrInvalidSession, c.id, c.state, next)
	}
	c.state = next
	return nil
}

// Close cancels in-flight work, drops the stream, and removes the session
// from its registry. Only the first call has any effect.
func (c *Channel) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = domain.SessionClosed
		c.outlet = nil
		c.mu.Unlock()

		c.cancel()
		if c.onClose != nil {
			c.onClose(c.id)
		}
		c.logger.Info("session closed")
	})
}

// closeIfPending closes the channel only while it is still Pending. It
// reports whether it did.
func (c *Channel) closeIfPending() bool {
	c.mu.Lock()
	if c.state != domain.SessionPending {
		c.mu.Unlock()
		return false
	}
	c.state = domain.SessionClosed
	c.mu.Unlock()

	c.Close()
	return true
}

// Attach opens the server-to-client stream. The returned detach func must be
// called when the stream's HTTP request ends.
func (c *Channel) Attach() (<-chan []byte, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != domain.SessionActive {
		return nil, nil, fmt.Errorf("%w: session %s is %s", domain.ErrInvalidSession, c.id, c.state)
	}
	if c.outlet != nil {
		return nil, nil, ErrStreamAttached
	}

	outlet := make(chan []byte, outletBuffer)
	c.outlet = outlet
	detach := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.outlet == outlet {
			c.outlet = nil
		}
	}
	return outlet, detach, nil
}

// Notify queues a notification on the open stream. It reports false when no
// stream is attached or the stream is backed up.
func (c *Channel) Notify(method string, params any) bool {
	payload, err := json.Marshal(notification{JSONRPC: jsonrpcVersion, Method: method, Params: params})
	if err != nil {
		c.logger.Warn("encode notification", "method", method, "error", err)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outlet == nil {
		return false
	}
	select {
	case c.outlet <- payload:
		return true
	default:
		c.logger.Warn("stream backed up, notification dropped", "method", method)
		return false
	}
}

// Handle answers one inbound message. It returns nil for notifications and
// client responses.
func (c *Channel) Handle(ctx context.Context, msg message) *response {
	if msg.JSONRPC != jsonrpcVersion {
		if !msg.hasID() {
			return nil
		}
		return errorResponse(msg.ID, codeInvalidRequest, "Invalid Request", "jsonrpc must be \"2.0\"")
	}

	if msg.isNotification() {
		c.handleNotification(msg)
		return nil
	}
	if !msg.isRequest() {
		return nil
	}

	switch msg.Method {
	case methodInitialize:
		return c.handleInitialize(msg)
	case methodPing:
		return resultResponse(msg.ID, map[string]any{})
	case methodToolsList:
		return resultResponse(msg.ID, map[string]any{"tools": c.tools.List()})
	case methodToolsCall:
		return c.handleToolsCall(ctx, msg)
	default:
		return errorResponse(msg.ID, codeMethodNotFound, "Method not found", msg.Method)
	}
}

func (c *Channel) handleNotification(msg message) {
	switch msg.Method {
	case methodInitialized, legacyInitialized:
		c.logger.Debug("client initialized")
	case methodCancelled:
		c.logger.Debug("client cancelled request")
	default:
		c.logger.Debug("ignoring notification", "method", msg.Method)
	}
}

func (c *Channel) handleInitialize(msg message) *response {
	if c.State() != domain.SessionPending {
		return errorResponse(msg.ID, codeInvalidRequest, "Invalid Request", "session already initialized")
	}

	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return errorResponse(msg.ID, codeInvalidParams, "Invalid params", err.Error())
		}
	}

	negotiated := negotiateProtocolVersion(params.ProtocolVersion)
	c.mu.Lock()
	c.clientName = params.ClientInfo.Name
	c.protocol = negotiated
	c.mu.Unlock()

	c.logger.Info("session initializing", "client", params.ClientInfo.Name, "protocol_version", negotiated)

	return resultResponse(msg.ID, map[string]any{
		"protocolVersion": negotiated,
		"capabilities": map[string]any{
			"tools": map[string]any{"listChanged": false},
		},
		"serverInfo": map[string]any{
			"name":    "pdfmcp",
			"version": version.Version,
		},
	})
}

func (c *Channel) handleToolsCall(ctx context.Context, msg message) *response {
	var params toolCallParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return errorResponse(msg.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	tool, ok := c.tools.Lookup(params.Name)
	if !ok {
		return errorResponse(msg.ID, codeInvalidParams, "Unknown tool", params.Name)
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	if token := params.Meta.ProgressToken; len(token) > 0 {
		callCtx = application.WithProgress(callCtx, func(event application.PollEvent) {
			c.Notify(methodProgress, progressParams{
				ProgressToken: token,
				Progress:      event.Attempt,
				Total:         event.MaxAttempts,
				Message:       fmt.Sprintf("request %s is %s, next check in %s", event.RequestID, event.Status, event.NextDelay),
			})
		})
	}

	result := tool.Call(callCtx, params.Arguments)
	return resultResponse(msg.ID, toCallResult(result))
}
