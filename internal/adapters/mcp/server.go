package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bnema/pdfmcp/internal/domain"
)

const (
	maxRequestBytes   = 4 << 20
	streamKeepAlive   = 25 * time.Second
	defaultEndpoint   = "/mcp"
	healthEndpoint    = "/health"
	contentTypeJSON   = "application/json"
	contentTypeStream = "text/event-stream"
)

type ServerOptions struct {
	AllowedOrigins []string
	Logger         *slog.Logger
	KeepAlive      time.Duration
}

// Server exposes the tool catalog over the streamable HTTP transport.
type Server struct {
	registry  *Registry
	tools     *Toolset
	logger    *slog.Logger
	keepAlive time.Duration
	router    chi.Router
}

func NewServer(registry *Registry, tools *Toolset, opts ServerOptions) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = streamKeepAlive
	}

	s := &Server{
		registry:  registry,
		tools:     tools,
		logger:    opts.Logger,
		keepAlive: opts.KeepAlive,
	}
	s.setupRoutes(opts.AllowedOrigins)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes(allowedOrigins []string) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderSessionID, "Mcp-Protocol-Version", "Last-Event-ID"},
		ExposedHeaders:   []string{HeaderSessionID},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get(healthEndpoint, s.handleHealth)

	r.Route(defaultEndpoint, func(r chi.Router) {
		r.Post("/", s.handlePost)
		r.Get("/", s.handleStream)
		r.Delete("/", s.handleDelete)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, codeParseError, "Parse error", err.Error()))
		return
	}

	messages, batch, err := parseMessages(body)
	if err != nil {
		code, msg := codeParseError, "Parse error"
		if errors.Is(err, errEmptyBatch) {
			code, msg = codeInvalidRequest, "Invalid Request"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse(nil, code, msg, err.Error()))
		return
	}

	sessionID := domain.SessionID(strings.TrimSpace(r.Header.Get(HeaderSessionID)))
	if sessionID == "" {
		if !batch && messages[0].isRequest() && messages[0].Method == methodInitialize {
			s.initialize(w, r, messages[0])
			return
		}
		s.rejectSession(w, r, sessionID)
		return
	}

	ch, ok := s.registry.Lookup(sessionID)
	if !ok {
		s.rejectSession(w, r, sessionID)
		return
	}

	responses := make([]*response, 0, len(messages))
	for _, msg := range messages {
		if resp := ch.Handle(r.Context(), msg); resp != nil {
			responses = append(responses, resp)
		}
	}

	switch {
	case len(responses) == 0:
		w.WriteHeader(http.StatusAccepted)
	case batch:
		writeJSON(w, http.StatusOK, responses)
	default:
		writeJSON(w, http.StatusOK, responses[0])
	}
}

func (s *Server) initialize(w http.ResponseWriter, r *http.Request, msg message) {
	ch := s.registry.Create(s.tools)

	resp := ch.Handle(r.Context(), msg)
	if resp == nil || resp.Error != nil {
		ch.Close()
		writeJSON(w, http.StatusOK, resp)
		return
	}

	if err := s.registry.Activate(ch.ID()); err != nil {
		ch.Close()
		writeJSON(w, http.StatusInternalServerError, errorResponse(msg.ID, codeInternalError, "Internal error", err.Error()))
		return
	}

	w.Header().Set(HeaderSessionID, string(ch.ID()))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.registry.Lookup(domain.SessionID(strings.TrimSpace(r.Header.Get(HeaderSessionID))))
	if !ok {
		s.rejectSession(w, r, domain.SessionID(r.Header.Get(HeaderSessionID)))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse(nil, codeInternalError, "Streaming is not supported by the server", nil))
		return
	}

	outlet, detach, err := ch.Attach()
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, domain.ErrInvalidSession) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse(nil, codeInvalidRequest, err.Error(), nil))
		return
	}
	defer detach()

	w.Header().Set("Content-Type", contentTypeStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.logger.DebugContext(r.Context(), "stream attached", "session_id", string(ch.ID()))

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.DebugContext(r.Context(), "stream detached", "session_id", string(ch.ID()))
			return
		case <-ch.Done():
			return
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case payload := <-outlet:
			if _, err := fmt.Fprintf(w, "event: message\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.registry.Lookup(domain.SessionID(strings.TrimSpace(r.Header.Get(HeaderSessionID))))
	if !ok {
		s.rejectSession(w, r, domain.SessionID(r.Header.Get(HeaderSessionID)))
		return
	}

	ch.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) rejectSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	s.logger.DebugContext(r.Context(), "rejected request without a valid session",
		"method", r.Method,
		"session_id", string(id),
	)
	writeJSON(w, http.StatusBadRequest, invalidSessionResponse())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			defer func() {
				logger.InfoContext(r.Context(), "http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(started),
					"request_id", middleware.GetReqID(r.Context()),
					"remote", r.RemoteAddr,
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
