// internal/statesync/statesync.go

// Package statesync owns the in-memory tournament document for one
// session. Local mutations apply immediately and persist on a debounce
// window; inbound store changes are hash-checked so a session's own
// writes never echo back as re-renders.
package statesync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtmix/courtmix/internal/models"
	"github.com/courtmix/courtmix/internal/store"
)

// DefaultDebounce coalesces rapid successive edits into one write.
const DefaultDebounce = 300 * time.Millisecond

type Option func(*Syncer)

// WithDebounce overrides the write coalescing window.
func WithDebounce(d time.Duration) Option {
	return func(s *Syncer) { s.debounce = d }
}

// Syncer mediates between optimistic local edits, the debounced
// write-back, and the inbound change stream. One Syncer per document
// per session; mutations come from exactly one organizer session.
type Syncer struct {
	store    store.Store
	debounce time.Duration

	mu       sync.Mutex
	doc      *models.TournamentDocument
	lastHash string
	// pending counts writes this session has sent but not yet seen
	// echoed on the change stream, keyed by content hash. An inbound
	// payload matching an entry is our own write coming back and must
	// never replace local state, which may have moved on since.
	pending  map[string]int
	timer    *time.Timer
	lastErr  error

	updates chan struct{}
}

// New wraps doc. The syncer takes ownership; callers read through
// Document and mutate through Apply.
func New(st store.Store, doc *models.TournamentDocument, opts ...Option) (*Syncer, error) {
	h, err := contentHash(doc)
	if err != nil {
		return nil, err
	}
	s := &Syncer{
		store:    st,
		debounce: DefaultDebounce,
		doc:      doc.Clone(),
		lastHash: h,
		pending:  make(map[string]int),
		updates:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Document returns a deep copy of the current state.
func (s *Syncer) Document() *models.TournamentDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Updates signals that the visible state changed (local edit or remote
// replacement) and derived views should refresh. The channel coalesces:
// a reader that misses several signals sees one.
func (s *Syncer) Updates() <-chan struct{} { return s.updates }

// LastError reports the most recent persistence failure, cleared by the
// next successful write.
func (s *Syncer) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Apply runs mutate against the owned document. On success the change
// is immediately visible locally and a persist is scheduled; a mutation
// error leaves prior state intact. Any earlier pending persist is
// replaced by the new one.
func (s *Syncer) Apply(mutate func(*models.TournamentDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.doc.Clone()
	if err := mutate(staged); err != nil {
		return err
	}
	h, err := contentHash(staged)
	if err != nil {
		return err
	}
	s.doc = staged
	s.lastHash = h
	s.signalLocked()

	if s.timer != nil {
		s.timer.Stop()
	}
	id := staged.ID
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.Flush(context.Background()); err != nil {
			log.Error().Err(err).Str("tournament_id", id).Msg("Debounced persist failed")
		}
	})
	return nil
}

// Flush writes the current state out immediately, cancelling any
// pending debounced write. A failure is recorded and returned; the
// local state stays authoritative and the next debounce cycle retries
// implicitly.
func (s *Syncer) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snapshot := s.doc.Clone()
	h, err := contentHash(snapshot)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	// Recorded before the write so the echo cannot race past it.
	s.pending[h]++
	s.mu.Unlock()

	err = s.store.Put(ctx, snapshot)

	s.mu.Lock()
	if err != nil {
		s.retirePendingLocked(h)
	}
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// HandleRemote applies one inbound change notification. A payload whose
// content hash matches an unacknowledged write of this session is the
// write coming back and is retired without touching local state, even
// if further edits have landed meanwhile. A payload matching the last
// known state is a duplicate and is skipped. Anything else replaces
// local state wholesale (last write wins, no field merge) and a refresh
// is signalled. Reports whether state was replaced.
func (s *Syncer) HandleRemote(incoming *models.TournamentDocument) bool {
	h, err := contentHash(incoming)
	if err != nil {
		log.Error().Err(err).Msg("Discarding unhashable remote document")
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[h]; ok {
		s.retirePendingLocked(h)
		return false
	}
	if h == s.lastHash {
		return false
	}
	s.doc = incoming.Clone()
	s.lastHash = h
	// A foreign write superseded anything of ours still in flight; the
	// coalescing stream will never deliver those echoes.
	clear(s.pending)
	s.signalLocked()
	return true
}

func (s *Syncer) retirePendingLocked(h string) {
	if n := s.pending[h]; n <= 1 {
		delete(s.pending, h)
	} else {
		s.pending[h] = n - 1
	}
}

// Run consumes the store's change stream until ctx ends.
func (s *Syncer) Run(ctx context.Context) error {
	s.mu.Lock()
	id := s.doc.ID
	s.mu.Unlock()

	ch, cancel, err := s.store.Watch(ctx, id)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", id, err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case doc, ok := <-ch:
			if !ok {
				return nil
			}
			s.HandleRemote(doc)
		}
	}
}

// Resync pulls the stored revision and treats it as an inbound change.
// The periodic resync job uses this as a safety net in case the watch
// stream dropped a revision.
func (s *Syncer) Resync(ctx context.Context) error {
	s.mu.Lock()
	id := s.doc.ID
	s.mu.Unlock()

	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	s.HandleRemote(doc)
	return nil
}

func (s *Syncer) signalLocked() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// contentHash is a canonical digest of the persisted document shape.
func contentHash(doc *models.TournamentDocument) (string, error) {
	data, err := models.EncodeDocument(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
