package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/somo/core"
)

type (
	// TreeRepository persists one EntityTree document per user.
	// LoadTree returns ErrTreeNotFound when the user has no document yet.
	TreeRepository interface {
		LoadTree(ctx context.Context, userID string) (EntityTree, error)
		SaveTree(ctx context.Context, userID string, tree EntityTree) error
		DeleteTree(ctx context.Context, userID string) error
	}

	// Store owns a single user's EntityTree: the only writer is Dispatch.
	Store struct {
		mu     sync.RWMutex
		userID string
		tree   EntityTree
		queue  *WriteQueue // nil disables persistence (tests)
	}
)

func New(userID string, tree EntityTree, queue *WriteQueue) *Store {
	return &Store{userID: userID, tree: tree, queue: queue}
}

// Tree returns the current tree. Thanks to persistent updates the returned
// value stays consistent even while later commands are dispatched.
func (s *Store) Tree() EntityTree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Dispatch applies the command synchronously and enqueues a best-effort
// persist of the resulting tree. A failed command leaves the tree untouched.
func (s *Store) Dispatch(cmd Command) error {
	s.mu.Lock()
	tree, err := apply(s.tree, cmd)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tree = tree
	s.mu.Unlock()

	if s.queue != nil {
		s.queue.Enqueue(s.userID, tree)
	}
	return nil
}

// Manager hands out one Store per authenticated user, loading the tree on
// first access: database first, local cache fallback, then the bundled seed
// dataset for brand-new users.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store

	db     TreeRepository
	cache  TreeRepository
	seed   EntityTree
	queue  *WriteQueue
	logger core.Logger
}

func NewManager(db, cache TreeRepository, seed EntityTree, queue *WriteQueue, logger core.Logger) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		db:     db,
		cache:  cache,
		seed:   seed,
		queue:  queue,
		logger: logger,
	}
}

func (m *Manager) Get(ctx context.Context, userID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s, nil
	}

	tree, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	s := New(userID, tree, m.queue)
	m.stores[userID] = s
	return s, nil
}

func (m *Manager) load(ctx context.Context, userID string) (EntityTree, error) {
	tree, err := m.db.LoadTree(ctx, userID)
	if err == nil {
		return tree, nil
	}
	if !errors.Is(err, ErrTreeNotFound) {
		// degraded mode: fall back to the local mirror
		m.logger.Warn("loading study data from database failed; falling back to local cache", err)
	}

	tree, cacheErr := m.cache.LoadTree(ctx, userID)
	if cacheErr == nil {
		return tree, nil
	}
	if !errors.Is(cacheErr, ErrTreeNotFound) {
		return EntityTree{}, errors.Wrap(cacheErr, "loading study data from local cache")
	}

	// brand-new user
	return m.seed, nil
}

// Remove deletes the user's study data everywhere, synchronously.
// Used by account deletion, which is awaited unlike regular persists.
func (m *Manager) Remove(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.stores, userID)
	m.mu.Unlock()

	if err := m.db.DeleteTree(ctx, userID); err != nil {
		return errors.Wrap(err, "deleting study data")
	}
	if err := m.cache.DeleteTree(ctx, userID); err != nil {
		m.logger.Error("deleting cached study data", err)
	}
	return nil
}
