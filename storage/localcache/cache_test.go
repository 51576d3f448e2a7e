package localcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/somo/core/store"
	"github.com/trezcool/somo/core/study"
)

func TestTreeRepositoryRoundTrip(t *testing.T) {
	repo, err := NewTreeRepository(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = repo.LoadTree(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrTreeNotFound)

	tree := store.EntityTree{
		Subjects: []study.Subject{{ID: "s1", Name: "Mathematics"}},
		Settings: store.Settings{WeeklyStudyGoalHours: 12},
	}
	require.NoError(t, repo.SaveTree(ctx, "u1", tree))

	got, err := repo.LoadTree(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.Subjects[0].ID)
	assert.Equal(t, 12.0, got.Settings.WeeklyStudyGoalHours)

	// overwrite replaces the whole document
	tree.Settings.WeeklyStudyGoalHours = 8
	require.NoError(t, repo.SaveTree(ctx, "u1", tree))
	got, err = repo.LoadTree(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8.0, got.Settings.WeeklyStudyGoalHours)

	require.NoError(t, repo.DeleteTree(ctx, "u1"))
	_, err = repo.LoadTree(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrTreeNotFound)

	// deleting a missing document is not an error
	assert.NoError(t, repo.DeleteTree(ctx, "u1"))
}
