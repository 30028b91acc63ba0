// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/courtmix/courtmix/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps one JSON payload per tournament in a SQLite table
// and fans out change notifications to in-process watchers.
type SQLiteStore struct {
	db *sql.DB

	mu       sync.Mutex
	watchers map[string]map[int]chan *models.TournamentDocument
	nextID   int
}

// New opens (or creates) the store at path, applies embedded
// migrations, and returns a ready store.
func New(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", ensureForeignKeysEnabledDSN(path))
	if err != nil {
		return nil, fmt.Errorf("error opening store: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}
	return &SQLiteStore{
		db:       db,
		watchers: make(map[string]map[int]chan *models.TournamentDocument),
	}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.TournamentDocument, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM tournament_documents WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", ID: id, Err: err}
	}
	doc, err := models.DecodeDocument([]byte(payload))
	if err != nil {
		return nil, &PersistenceError{Op: "decode", ID: id, Err: err}
	}
	return doc, nil
}

func (s *SQLiteStore) Put(ctx context.Context, doc *models.TournamentDocument) error {
	payload, err := models.EncodeDocument(doc)
	if err != nil {
		return &PersistenceError{Op: "encode", ID: doc.ID, Err: err}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tournament_documents (id, revision, payload, updated_at)
		VALUES (?, 1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			revision = revision + 1,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP`,
		doc.ID, string(payload))
	if err != nil {
		return &PersistenceError{Op: "put", ID: doc.ID, Err: err}
	}
	s.notify(doc)
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tournament_documents WHERE id = ?`, id)
	if err != nil {
		return &PersistenceError{Op: "delete", ID: id, Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Watch registers a change channel for one document. Each delivered
// value is a private copy. Slow watchers miss intermediate revisions
// rather than blocking writers: the channel holds the latest revision
// only.
func (s *SQLiteStore) Watch(ctx context.Context, id string) (<-chan *models.TournamentDocument, func(), error) {
	ch := make(chan *models.TournamentDocument, 1)

	s.mu.Lock()
	s.nextID++
	watcherID := s.nextID
	if s.watchers[id] == nil {
		s.watchers[id] = make(map[int]chan *models.TournamentDocument)
	}
	s.watchers[id][watcherID] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set, ok := s.watchers[id]; ok {
			delete(set, watcherID)
			if len(set) == 0 {
				delete(s.watchers, id)
			}
		}
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel, nil
}

func (s *SQLiteStore) notify(doc *models.TournamentDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers[doc.ID] {
		// Replace any undelivered revision with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- doc.Clone():
		default:
		}
	}
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("error loading migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("error creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("error creating migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error applying migrations: %w", err)
	}
	log.Debug().Msg("Store migrations applied")
	return nil
}

// ensureForeignKeysEnabledDSN appends the foreign key pragma unless the
// DSN already carries one.
func ensureForeignKeysEnabledDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}
