package dashboard

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

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	ctx := context.Background()

	db, err := database.New(ctx, database.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.New("dashboard-test", "0.0.0")
	log.DisableConsoleOutput()

	st := store.New(db, log)
	require.NoError(t, st.EnsureSchema(ctx))
	return NewService(st, log), st
}

func seedTwoProjects(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()

	create := func(kind *model.Kind, fields store.Record) {
		_, err := st.Create(ctx, kind, fields, nil)
		require.NoError(t, err)
	}

	create(model.Project, store.Record{"project_name": "Alpha"})
	create(model.Project, store.Record{"project_name": "Beta"})

	create(model.Scenario, store.Record{"name": "SD flow", "project_id": int64(1)})
	create(model.Scenario, store.Record{"name": "MM flow", "project_id": int64(1)})
	create(model.Scenario, store.Record{"name": "FI flow", "project_id": int64(2)})

	create(model.Requirement, store.Record{"title": "R1", "project_id": int64(1), "classification": "Fit"})
	create(model.Requirement, store.Record{"title": "R2", "project_id": int64(1), "classification": "Gap"})
	create(model.Requirement, store.Record{"title": "R3", "project_id": int64(1), "classification": "Partial Fit"})
	create(model.Requirement, store.Record{"title": "R4", "project_id": int64(2), "classification": "Gap"})

	create(model.WricefItem, store.Record{"title": "W1", "project_id": int64(1)})
	create(model.ConfigItem, store.Record{"title": "C1", "project_id": int64(1)})
	create(model.ConfigItem, store.Record{"title": "C2", "project_id": int64(2)})

	create(model.TestManagement, store.Record{"title": "T1", "project_id": int64(1)})
	create(model.TestManagement, store.Record{"title": "T2", "project_id": int64(2)})
}

func TestStatsGlobal(t *testing.T) {
	svc, st := newTestService(t)
	seedTwoProjects(t, st)

	stats, err := svc.Stats(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, &Stats{
		Projects:     2,
		Scenarios:    3,
		Requirements: 4,
		OpenGaps:     3,
		WricefItems:  1,
		ConfigItems:  2,
		TestCases:    2,
	}, stats)
}

func TestStatsScopedToProject(t *testing.T) {
	svc, st := newTestService(t)
	seedTwoProjects(t, st)

	projectID := int64(1)
	stats, err := svc.Stats(context.Background(), &projectID)
	require.NoError(t, err)

	// Projects has no project_id column so its count stays global.
	assert.Equal(t, &Stats{
		Projects:     2,
		Scenarios:    2,
		Requirements: 3,
		OpenGaps:     2,
		WricefItems:  1,
		ConfigItems:  1,
		TestCases:    1,
	}, stats)
}

func TestStatsEmptyDatabase(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Stats(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, stats)
}
