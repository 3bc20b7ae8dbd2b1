package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/tabletop/internal/browse"
	"github.com/Shivanand-hulikatti/tabletop/internal/preference"
	"github.com/Shivanand-hulikatti/tabletop/internal/wizard"
)

// ErrNotFound is returned for an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Registry owns the live shells, keyed by session id.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Shell

	store Store
	prefs preference.Store
	log   *zap.Logger
	now   func() time.Time
}

// NewRegistry returns an empty Registry.
func NewRegistry(store Store, prefs preference.Store, log *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Shell),
		store:    store,
		prefs:    prefs,
		log:      log,
		now:      time.Now,
	}
}

// Open starts a shell for clientID, the stable visitor id the display
// preference is kept under. An empty clientID gets a fresh one. The event
// list is fetched once; a failed fetch leaves the list empty and is only
// logged.
func (r *Registry) Open(ctx context.Context, clientID string) (*Shell, error) {
	if clientID == "" {
		clientID = uuid.NewString()
	}
	darkMode, err := preference.Load(ctx, r.prefs, clientID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	id := uuid.NewString()
	log := r.log.With(zap.String("session_id", id))
	shell := &Shell{
		ID:       id,
		ClientID: clientID,
		Events:   browse.New(r.store, log),
		Host:     wizard.New(r.store, wizard.WithClock(r.now)),
		tab:      TabFind,
		darkMode: darkMode,
		lastSeen: r.now(),
	}

	if err := shell.Events.Load(ctx); err != nil {
		log.Warn("initial event load failed", zap.Error(err))
	}

	r.mu.Lock()
	r.sessions[id] = shell
	r.mu.Unlock()

	log.Info("session opened", zap.String("client_id", clientID))
	return shell, nil
}

// Get returns the shell for id and marks it as active.
func (r *Registry) Get(id string) (*Shell, error) {
	r.mu.RLock()
	shell, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	shell.touch(r.now())
	return shell, nil
}

// Close drops the shell for id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live shells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops shells not used for longer than idle and returns how many
// were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for id, shell := range r.sessions {
		if shell.idleSince(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps idle shells every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.log.Info("idle sessions dropped", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
