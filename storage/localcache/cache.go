// Package localcache mirrors each user's study document to a local JSON file
// so the app can serve reads when the database is unreachable.
package localcache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/store"
)

type treeRepository struct {
	dir string
}

var _ store.TreeRepository = (*treeRepository)(nil) // interface compliance check

func NewTreeRepository(dir string) (*treeRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	return &treeRepository{dir: dir}, nil
}

func (repo *treeRepository) path(userID string) string {
	return filepath.Join(repo.dir, userID+".json")
}

func (repo *treeRepository) LoadTree(_ context.Context, userID string) (store.EntityTree, error) {
	doc, err := os.ReadFile(repo.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return store.EntityTree{}, store.ErrTreeNotFound
		}
		return store.EntityTree{}, errors.Wrap(err, "reading cached study doc")
	}

	var tree store.EntityTree
	if err := json.Unmarshal(doc, &tree); err != nil {
		return store.EntityTree{}, errors.Wrap(err, "decoding cached study doc")
	}
	return tree, nil
}

// SaveTree writes to a temp file first and renames it into place so a crash
// mid-write never leaves a truncated document behind.
func (repo *treeRepository) SaveTree(_ context.Context, userID string, tree store.EntityTree) error {
	doc, err := json.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "encoding study doc")
	}

	tmp, err := os.CreateTemp(repo.dir, userID+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing cached study doc")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), repo.path(userID)); err != nil {
		return errors.Wrap(err, "replacing cached study doc")
	}
	return nil
}

func (repo *treeRepository) DeleteTree(_ context.Context, userID string) error {
	if err := os.Remove(repo.path(userID)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "deleting cached study doc")
	}
	return nil
}
