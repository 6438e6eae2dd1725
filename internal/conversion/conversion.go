// Package conversion implements the requirement conversion workflow: a
// requirement classified "Fit" becomes a config item, "Gap" or
// "Partial Fit" becomes a WRICEF item, and either derived kind can in
// turn spawn a unit-test record.
//
// Converting a requirement is guarded so it happens at most once; the
// derived record and the requirement's conversion fields commit in one
// transaction. Converting an item to a test case intentionally carries
// no such guard: repeated calls create duplicate test records, matching
// the behavior the front end relies on.
package conversion

import (
	"context"
	"fmt"
	"strings"

	"github.com/projektcopilot/backend/internal/model"
	"github.com/projektcopilot/backend/internal/store"
	"github.com/projektcopilot/backend/pkg/logger"
)

// Conversion type values recorded on the requirement.
const (
	TypeConfig = "config"
	TypeWricef = "wricef"
)

// StateError reports a conversion attempt on an already-converted
// requirement.
type StateError struct{}

func (e *StateError) Error() string {
	return "Already converted"
}

// InputError reports a classification value no conversion branch
// recognizes.
type InputError struct {
	Classification string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("Invalid classification: %s", e.Classification)
}

// Service drives the conversion workflow.
type Service struct {
	store  *store.Store
	logger *logger.Logger
}

// NewService creates a new conversion service.
func NewService(st *store.Store, logger *logger.Logger) *Service {
	return &Service{store: st, logger: logger}
}

// Result reports the outcome of a requirement conversion.
type Result struct {
	ConversionType string
	CreatedItemID  int64
}

// ConvertRequirement turns the requirement into a config item or a
// WRICEF item depending on its classification. The new record and the
// requirement's conversion fields persist atomically.
func (s *Service) ConvertRequirement(ctx context.Context, id int64) (*Result, error) {
	var result Result

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		req, err := tx.Get(ctx, model.Requirement, id)
		if err != nil {
			return err
		}

		if status, _ := req["conversion_status"].(string); status == "converted" {
			return &StateError{}
		}

		classification, _ := req["classification"].(string)
		classification = strings.TrimSpace(classification)
		now := store.NowISO()

		switch classification {
		case "Fit":
			configType := "standard"
			if m, _ := req["module"].(string); m != "" {
				configType = m
			}
			item, err := tx.Create(ctx, model.ConfigItem, store.Record{
				"title":          req["title"],
				"config_type":    configType,
				"description":    req["description"],
				"status":         "planned",
				"project_id":     req["project_id"],
				"requirement_id": id,
				"created_at":     now,
			}, nil)
			if err != nil {
				return err
			}
			result = Result{ConversionType: TypeConfig, CreatedItemID: item.ID()}

		case "Gap", "Partial Fit":
			item, err := tx.Create(ctx, model.WricefItem, store.Record{
				"title":          req["title"],
				"wricef_type":    "E",
				"description":    req["description"],
				"status":         "identified",
				"priority":       req["priority"],
				"project_id":     req["project_id"],
				"requirement_id": id,
				"created_at":     now,
			}, nil)
			if err != nil {
				return err
			}
			result = Result{ConversionType: TypeWricef, CreatedItemID: item.ID()}

		default:
			return &InputError{Classification: classification}
		}

		_, err = tx.Update(ctx, model.Requirement, id, store.Record{
			"conversion_status": "converted",
			"conversion_type":   result.ConversionType,
			"conversion_id":     result.CreatedItemID,
			"converted_at":      now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infof("Converted Requirement %d to %s %d", id, result.ConversionType, result.CreatedItemID)
	return &result, nil
}

// ConvertConfigItemToTest creates a unit-test record from a config
// item. Returns the new test record's id.
func (s *Service) ConvertConfigItemToTest(ctx context.Context, id int64) (int64, error) {
	return s.convertToTest(ctx, model.ConfigItem, TypeConfig, id)
}

// ConvertWricefItemToTest creates a unit-test record from a WRICEF
// item. Returns the new test record's id.
func (s *Service) ConvertWricefItemToTest(ctx context.Context, id int64) (int64, error) {
	return s.convertToTest(ctx, model.WricefItem, TypeWricef, id)
}

func (s *Service) convertToTest(ctx context.Context, kind *model.Kind, sourceType string, id int64) (int64, error) {
	item, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return 0, err
	}

	title, _ := item["title"].(string)
	test, err := s.store.Create(ctx, model.TestManagement, store.Record{
		"title":       "Unit Test: " + title,
		"test_type":   "unit",
		"source_type": sourceType,
		"source_id":   id,
		"project_id":  item["project_id"],
		"status":      "not_started",
		"steps":       item["unit_test_steps"],
		"created_at":  store.NowISO(),
	}, nil)
	if err != nil {
		return 0, err
	}

	s.logger.Infof("Created TestManagement %d from %s %d", test.ID(), kind.Name, id)
	return test.ID(), nil
}
