// Package dashboard computes record counts across entity kinds,
// optionally scoped to one project. Nothing is cached; every call
// recomputes from the store.
package dashboard

import (
	"context"

	"github.com/projektcopilot/backend/internal/model"
	"github.com/projektcopilot/backend/internal/store"
	"github.com/projektcopilot/backend/pkg/logger"
)

// openGapClassifications are the requirement classifications counted as
// open gaps.
var openGapClassifications = []string{"Gap", "Partial Fit"}

// Stats is the counts object returned by the dashboard endpoint.
type Stats struct {
	Projects     int64 `json:"projects"`
	Scenarios    int64 `json:"scenarios"`
	Requirements int64 `json:"requirements"`
	OpenGaps     int64 `json:"open_gaps"`
	WricefItems  int64 `json:"wricef_items"`
	ConfigItems  int64 `json:"config_items"`
	TestCases    int64 `json:"test_cases"`
}

// Service computes dashboard statistics.
type Service struct {
	store  *store.Store
	logger *logger.Logger
}

// NewService creates a new dashboard service.
func NewService(st *store.Store, logger *logger.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Stats counts records per entity kind. A non-nil projectID restricts
// every kind that carries a project-association field to that project;
// kinds without one are counted unfiltered.
func (s *Service) Stats(ctx context.Context, projectID *int64) (*Stats, error) {
	count := func(kind *model.Kind, extra map[string]any) (int64, error) {
		filters := map[string]any{}
		if projectID != nil && kind.HasColumn("project_id") {
			filters["project_id"] = *projectID
		}
		for k, v := range extra {
			filters[k] = v
		}
		return s.store.Count(ctx, kind, filters)
	}

	var stats Stats
	var err error

	if stats.Projects, err = count(model.Project, nil); err != nil {
		return nil, err
	}
	if stats.Scenarios, err = count(model.Scenario, nil); err != nil {
		return nil, err
	}
	if stats.Requirements, err = count(model.Requirement, nil); err != nil {
		return nil, err
	}
	if stats.OpenGaps, err = count(model.Requirement, map[string]any{"classification": openGapClassifications}); err != nil {
		return nil, err
	}
	if stats.WricefItems, err = count(model.WricefItem, nil); err != nil {
		return nil, err
	}
	if stats.ConfigItems, err = count(model.ConfigItem, nil); err != nil {
		return nil, err
	}
	if stats.TestCases, err = count(model.TestManagement, nil); err != nil {
		return nil, err
	}

	return &stats, nil
}
