package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektcopilot/backend/internal/model"
	"github.com/projektcopilot/backend/internal/store"
	"github.com/projektcopilot/backend/pkg/database"
	"github.com/projektcopilot/backend/pkg/logger"
)

func newTestStore(t *testing.T) (*store.Store, *logger.Logger) {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, database.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.New("seed-test", "0.0.0")
	log.DisableConsoleOutput()

	st := store.New(db, log)
	require.NoError(t, st.EnsureSchema(ctx))
	return st, log
}

func TestRunLoadsDemoDataset(t *testing.T) {
	st, log := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, st, log))

	counts := map[*model.Kind]int64{
		model.Project:        3,
		model.Scenario:       5,
		model.Requirement:    8,
		model.WricefItem:     4,
		model.ConfigItem:     3,
		model.TestManagement: 5,
	}
	for kind, want := range counts {
		got, err := st.Count(ctx, kind, nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, kind.Name)
	}

	projects, err := st.List(ctx, model.Project, map[string]any{"project_code": "PRJ-001"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "S/4HANA Finance Transformation", projects[0]["project_name"])

	scenarios, err := st.List(ctx, model.Scenario, map[string]any{"project_id": projects[0].ID()})
	require.NoError(t, err)
	assert.Len(t, scenarios, 5)
}

func TestRunIsRepeatable(t *testing.T) {
	st, log := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, Run(ctx, st, log))
	require.NoError(t, Run(ctx, st, log))

	count, err := st.Count(ctx, model.Project, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRunLeavesSessionDocumentsAlone(t *testing.T) {
	st, log := newTestStore(t)
	ctx := context.Background()

	_, err := st.Create(ctx, model.Question, store.Record{
		"session_id":    int64(1),
		"question_text": "Keep me",
	}, nil)
	require.NoError(t, err)

	require.NoError(t, Run(ctx, st, log))

	count, err := st.Count(ctx, model.Question, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
