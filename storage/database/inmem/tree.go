package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/somo/core/store"
)

type treeRepository struct {
	mutex sync.RWMutex
	table map[string]store.EntityTree
}

var _ store.TreeRepository = (*treeRepository)(nil) // interface compliance check

func NewTreeRepository() *treeRepository {
	return &treeRepository{table: make(map[string]store.EntityTree)}
}

func (repo *treeRepository) LoadTree(_ context.Context, userID string) (store.EntityTree, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	if tree, ok := repo.table[userID]; ok {
		return tree, nil
	}
	return store.EntityTree{}, store.ErrTreeNotFound
}

func (repo *treeRepository) SaveTree(_ context.Context, userID string, tree store.EntityTree) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.table[userID] = tree
	return nil
}

func (repo *treeRepository) DeleteTree(_ context.Context, userID string) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	delete(repo.table, userID)
	return nil
}
