package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/store"
)

// treeRepository persists each user's study data as a single jsonb document
// in the study_docs table. The document is the unit of write: every save
// replaces the whole tree.
type treeRepository struct {
	db *sqlx.DB
}

var _ store.TreeRepository = (*treeRepository)(nil) // interface compliance check

func NewTreeRepository(db *sqlx.DB) *treeRepository {
	return &treeRepository{db: db}
}

func (repo *treeRepository) LoadTree(ctx context.Context, userID string) (store.EntityTree, error) {
	var doc []byte
	err := repo.db.GetContext(ctx, &doc, "SELECT doc FROM study_docs WHERE user_id = $1", userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.EntityTree{}, store.ErrTreeNotFound
		}
		return store.EntityTree{}, errors.Wrap(err, "loading study doc")
	}

	var tree store.EntityTree
	if err := json.Unmarshal(doc, &tree); err != nil {
		return store.EntityTree{}, errors.Wrap(err, "decoding study doc")
	}
	return tree, nil
}

func (repo *treeRepository) SaveTree(ctx context.Context, userID string, tree store.EntityTree) error {
	doc, err := json.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "encoding study doc")
	}

	query := `
INSERT INTO study_docs (user_id, doc, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`
	if _, err := repo.db.ExecContext(ctx, query, userID, doc); err != nil {
		return errors.Wrap(err, "saving study doc")
	}
	return nil
}

func (repo *treeRepository) DeleteTree(ctx context.Context, userID string) error {
	if _, err := repo.db.ExecContext(ctx, "DELETE FROM study_docs WHERE user_id = $1", userID); err != nil {
		return errors.Wrap(err, "deleting study doc")
	}
	return nil
}
