package envimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/plalog/plalog/server/hub/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

var (
	// ErrSessionNotFound is returned for unknown or expired import sessions
	ErrSessionNotFound = errors.New("import session not found")
	// ErrInvalidTransition is returned when an action does not fit the session's step
	ErrInvalidTransition = errors.New("invalid import step transition")
)

// SessionStore keeps import sessions between the preview and commit requests
type SessionStore interface {
	Save(ctx context.Context, session *models.ImportSession) error
	Get(ctx context.Context, id string) (*models.ImportSession, error)
	Delete(ctx context.Context, id string) error
}

// Workflow drives an upload through select, preview and complete.
// Select creates a session in preview; Commit moves it to complete;
// Reset discards it, returning the caller to select.
type Workflow struct {
	importer *Importer
	sessions SessionStore
	now      func() time.Time
	mu       sync.Mutex
}

func NewWorkflow(importer *Importer, sessions SessionStore) *Workflow {
	return &Workflow{importer: importer, sessions: sessions, now: time.Now}
}

// Select previews content and opens a session for it. Unsupported or empty
// content returns ErrUnsupportedFormat or ErrNoData and opens nothing.
func (w *Workflow) Select(ctx context.Context, fileName, content string) (*models.ImportSession, error) {
	preview, err := w.importer.Preview(content)
	if err != nil {
		return nil, err
	}

	now := w.now()
	session := &models.ImportSession{
		ID:        nuts.NID("imp", 16),
		Step:      models.ImportStepPreview,
		FileName:  fileName,
		Content:   content,
		Preview:   preview,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	nuts.L.Infof("[ImportWorkflow] Session %s opened for %s (%s, %d rows)", session.ID, fileName, preview.Format, preview.RawRecords)
	return session, nil
}

// Commit imports a previewed session into locationID. A completed session cannot be committed again.
func (w *Workflow) Commit(ctx context.Context, id, locationID string) (*models.ImportSession, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	session, err := w.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Step != models.ImportStepPreview {
		return nil, fmt.Errorf("%w: cannot commit a session in step %q", ErrInvalidTransition, session.Step)
	}

	result, err := w.importer.Import(ctx, session.Content, locationID)
	if err != nil {
		return nil, err
	}

	session.Step = models.ImportStepComplete
	session.Result = result
	session.Content = ""
	session.UpdatedAt = w.now()
	if err := w.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Reset discards a session from preview or complete
func (w *Workflow) Reset(ctx context.Context, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	session, err := w.sessions.Get(ctx, id)
	if err != nil {
		return err
	}
	if session.Step != models.ImportStepPreview && session.Step != models.ImportStepComplete {
		return fmt.Errorf("%w: cannot reset a session in step %q", ErrInvalidTransition, session.Step)
	}
	return w.sessions.Delete(ctx, id)
}

func (w *Workflow) Get(ctx context.Context, id string) (*models.ImportSession, error) {
	return w.sessions.Get(ctx, id)
}

type memoryEntry struct {
	session   models.ImportSession
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process with a TTL
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemorySessionStore) Save(_ context.Context, session *models.ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ID] = memoryEntry{session: *session, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.ImportSession, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.entries, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed
func (s *MemorySessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// RedisSessionStore keeps sessions as JSON values with a TTL
type RedisSessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisSessionStore(client redis.UniversalClient, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl, prefix: "plalog:import:"}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisSessionStore) Save(ctx context.Context, session *models.ImportSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode import session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store import session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.ImportSession, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load import session: %w", err)
	}
	var session models.ImportSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode import session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete import session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
