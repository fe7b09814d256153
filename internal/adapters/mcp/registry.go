package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bnema/pdfmcp/internal/domain"
)

const DefaultPendingTTL = 30 * time.Second

type RegistryOptions struct {
	// PendingTTL bounds how long a session may stay uninitialized.
	PendingTTL time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

// Registry maps session ids to their live channels.
type Registry struct {
	mu       sync.Mutex
	sessions map[domain.SessionID]*Channel

	pendingTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Registry{
		sessions:   make(map[domain.SessionID]*Channel),
		pendingTTL: opts.PendingTTL,
		now:        opts.Now,
		logger:     opts.Logger,
	}
}

// Create registers a new pending channel under a fresh id.
func (r *Registry) Create(tools *Toolset) *Channel {
	id := domain.SessionID(uuid.Must(uuid.NewV7()).String())
	ch := newChannel(id, r.now(), tools, r.logger, r.Remove)

	r.mu.Lock()
	r.sessions[id] = ch
	r.mu.Unlock()

	r.logger.Debug("session created", "session_id", string(id))
	return ch
}

func (r *Registry) Activate(id domain.SessionID) error {
	r.mu.Lock()
	ch, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}

	if err := ch.transition(domain.SessionActive); err != nil {
		return err
	}

	r.logger.Info("session activated", "session_id", string(id))
	return nil
}

// Lookup returns the channel for id if the session is active.
func (r *Registry) Lookup(id domain.SessionID) (*Channel, bool) {
	if id == "" {
		return nil, false
	}

	r.mu.Lock()
	ch, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok || ch.State() != domain.SessionActive {
		return nil, false
	}
	return ch, true
}

func (r *Registry) Remove(id domain.SessionID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// EvictPending closes sessions that never finished initializing within the
// pending TTL and returns how many were closed.
func (r *Registry) EvictPending(now time.Time) int {
	var stale []*Channel

	r.mu.Lock()
	for _, ch := range r.sessions {
		if ch.State() == domain.SessionPending && now.Sub(ch.CreatedAt()) >= r.pendingTTL {
			stale = append(stale, ch)
		}
	}
	r.mu.Unlock()

	evicted := 0
	for _, ch := range stale {
		if ch.closeIfPending() {
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Info("evicted pending sessions", "count", evicted)
	}

	return evicted
}

// Run evicts stale pending sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.pendingTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictPending(r.now())
		}
	}
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Channel, 0, len(r.sessions))
	for _, ch := range r.sessions {
		all = append(all, ch)
	}
	r.mu.Unlock()

	for _, ch := range all {
		ch.Close()
	}
}
