// internal/tournament/manager.go
package tournament

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/courtmix/courtmix/internal/models"
	"github.com/courtmix/courtmix/internal/statesync"
	"github.com/courtmix/courtmix/internal/store"
)

// Manager hands out sessions by tournament id, one live session per
// document within this process. Each session's watch loop runs for the
// manager's lifetime.
type Manager struct {
	store store.Store
	opts  []statesync.Option

	mu       sync.Mutex
	sessions map[string]*Session

	watchCtx    context.Context
	watchCancel context.CancelFunc
}

func NewManager(st store.Store, opts ...statesync.Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:       st,
		opts:        opts,
		sessions:    make(map[string]*Session),
		watchCtx:    ctx,
		watchCancel: cancel,
	}
}

// Close stops the watch loops of every live session.
func (m *Manager) Close() { m.watchCancel() }

func (m *Manager) startWatch(s *Session) {
	go func() {
		if err := s.Run(m.watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).
				Str("tournament_id", s.Document().ID).
				Msg("Watch loop stopped")
		}
	}()
}

// Create builds a tournament and registers its session.
func (m *Manager) Create(ctx context.Context, name string, cfg models.TournamentConfig,
	entrants []EntrantInput, organiserKey string) (*Session, error) {

	s, err := Create(ctx, m.store, name, cfg, entrants, organiserKey, m.opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.Document().ID] = s
	m.mu.Unlock()
	m.startWatch(s)
	return s, nil
}

// Get returns the live session for id, loading it from the store on
// first use.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := Open(ctx, m.store, id, m.opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[id] = s
	m.mu.Unlock()
	m.startWatch(s)
	return s, nil
}

// ResyncAll pulls the stored revision for every live session. The
// scheduler runs this periodically as a safety net over the watch
// stream; failures are logged and the next cycle retries.
func (m *Manager) ResyncAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Resync(ctx); err != nil {
			log.Warn().Err(err).
				Str("tournament_id", s.Document().ID).
				Msg("Periodic resync failed")
		}
	}
}

// FlushAll forces pending writes out, for shutdown.
func (m *Manager) FlushAll(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		if err := s.Flush(ctx); err != nil {
			log.Error().Err(err).
				Str("tournament_id", s.Document().ID).
				Msg("Final flush failed")
		}
	}
}
