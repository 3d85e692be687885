// Package session keeps view sessions for the map server.
//
// A session owns one [render.Renderer] for an uploaded scene, so a zoomed
// request with reuse set redraws the labels placed by the previous request
// of the same viewer. Sessions live in memory and expire after a period
// of inactivity.
//
// When the store has a cache backend, the scene document and a small
// session record are written to it as well. A store that misses in memory
// (another replica, or a restart) rebuilds the session from the cache; the
// rebuilt renderer starts without a saved label layout.
//
// # Usage
//
//	store := session.NewStore(session.WithCache(redisCache), session.WithTTL(time.Hour))
//	sess, err := store.Create(ctx, scene)
//	...
//	sess, err = store.Get(ctx, id)
//	artifacts, res, err := sess.Render(ctx, runner, opts)
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cgmap/pkg/cache"
	"github.com/matzehuels/cgmap/pkg/errors"
	"github.com/matzehuels/cgmap/pkg/pipeline"
	"github.com/matzehuels/cgmap/pkg/render"
)

// DefaultTTL is the idle time after which a session is dropped.
const DefaultTTL = 30 * time.Minute

// Session is one viewer's renderer for one scene.
type Session struct {
	ID        string
	SceneHash string
	CreatedAt time.Time

	renderer *render.Renderer
	source   []byte

	// mu orders renders of one session so reuse sees the previous view.
	mu       sync.Mutex
	lastUsed time.Time
	// persistedAt is when the cache record was last written.
	persistedAt time.Time
}

// Renderer returns the session's renderer.
func (s *Session) Renderer() *render.Renderer { return s.renderer }

// Render draws the session's scene. Concurrent calls on one session run
// one at a time.
func (s *Session) Render(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (map[string][]byte, *render.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return runner.RenderWith(ctx, s.renderer, opts)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// stale reports whether the cache record is older than age.
func (s *Session) stale(now time.Time, age time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.persistedAt) > age
}

func (s *Session) persisted(now time.Time) {
	s.mu.Lock()
	s.persistedAt = now
	s.mu.Unlock()
}

// record is the persisted form of a session.
type record struct {
	SceneHash string    `json:"scene_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the idle timeout.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCache persists scenes and session records to c.
func WithCache(c cache.Cache) StoreOption { return func(s *Store) { s.cache = c } }

// WithKeyer sets the keyer for persisted scenes.
func WithKeyer(k cache.Keyer) StoreOption { return func(s *Store) { s.keyer = k } }

// WithRenderConfig sets the renderer settings of new sessions.
func WithRenderConfig(c render.Config) StoreOption { return func(s *Store) { s.cfg = c } }

// WithLogger sets the store's logger.
func WithLogger(l *log.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Store holds live sessions. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl    time.Duration
	cache  cache.Cache
	keyer  cache.Keyer
	cfg    render.Config
	logger *log.Logger
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		cfg:      render.DefaultConfig(),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the idle timeout.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create starts a session for sc.
func (s *Store) Create(ctx context.Context, sc *pipeline.Scene) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		SceneHash: sc.Hash,
		CreatedAt: now,
		renderer:  s.newRenderer(sc),
		source:    sc.Source,
		lastUsed:  now,
	}
	s.persist(ctx, sess)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.logger.Debug("session created", "id", sess.ID, "scene", sc.Hash)
	return sess, nil
}

// Get returns the session with id, rebuilding it from the cache when it
// is not held in memory.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if err := errors.ValidateSessionID(id); err != nil {
		return nil, err
	}
	now := time.Now()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		if now.Sub(sess.idleSince()) <= s.ttl {
			sess.touch(now)
			// Keep the record alive for other replicas while the session
			// is in use here.
			if sess.stale(now, s.ttl/2) {
				s.persist(ctx, sess)
			}
			return sess, nil
		}
		s.drop(ctx, id)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s expired", id)
	}

	sess, err := s.restore(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		sess = existing
	} else {
		s.sessions[id] = sess
	}
	s.mu.Unlock()
	return sess, nil
}

// Delete ends a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateSessionID(id); err != nil {
		return err
	}
	s.drop(ctx, id)
	return nil
}

// Cleanup drops sessions idle for longer than the TTL and returns how
// many were dropped.
func (s *Store) Cleanup(ctx context.Context) int {
	now := time.Now()
	var expired []string
	s.mu.Lock()
	for id, sess := range s.sessions {
		if now.Sub(sess.idleSince()) > s.ttl {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()
	for _, id := range expired {
		s.drop(ctx, id)
	}
	if len(expired) > 0 {
		s.logger.Debug("sessions expired", "count", len(expired))
	}
	return len(expired)
}

// Len returns the number of sessions held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Cleanup(ctx)
		}
	}
}

func (s *Store) newRenderer(sc *pipeline.Scene) *render.Renderer {
	return render.New(sc.Map, render.WithConfig(s.cfg), render.WithLogger(s.logger))
}

func (s *Store) drop(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := s.cache.Delete(ctx, recordKey(id)); err != nil {
		s.logger.Warn("session record delete failed", "id", id, "err", err)
	}
}

// persist writes the scene and session record, restarting the record's
// TTL. Failures only cost the ability to restore the session elsewhere, so
// they are logged.
func (s *Store) persist(ctx context.Context, sess *Session) {
	now := time.Now()
	if len(sess.source) > 0 {
		if err := s.cache.Set(ctx, s.keyer.SceneKey(sess.SceneHash), sess.source, cache.TTLScene); err != nil {
			s.logger.Warn("scene persist failed", "id", sess.ID, "err", err)
			return
		}
	}
	data, err := json.Marshal(record{SceneHash: sess.SceneHash, CreatedAt: sess.CreatedAt})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, recordKey(sess.ID), data, s.ttl); err != nil {
		s.logger.Warn("session persist failed", "id", sess.ID, "err", err)
		return
	}
	sess.persisted(now)
}

func (s *Store) restore(ctx context.Context, id string) (*Session, error) {
	notFound := errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	data, hit, err := s.cache.Get(ctx, recordKey(id))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if !hit {
		return nil, notFound
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, notFound
	}
	src, hit, err := s.cache.Get(ctx, s.keyer.SceneKey(rec.SceneHash))
	if err != nil {
		return nil, fmt.Errorf("load scene for session %s: %w", id, err)
	}
	if !hit {
		return nil, notFound
	}
	sc, err := pipeline.LoadScene(ctx, src, s.logger)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	s.logger.Info("session restored", "id", id)
	sess := &Session{
		ID:        id,
		SceneHash: rec.SceneHash,
		CreatedAt: rec.CreatedAt,
		renderer:  s.newRenderer(sc),
		source:    src,
		lastUsed:  time.Now(),
	}
	s.persist(ctx, sess)
	return sess, nil
}

func recordKey(id string) string { return "session:" + id }
