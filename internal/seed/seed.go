// Package seed loads the demo dataset: a handful of SAP implementation
// projects with scenarios, requirements and downstream items, for
// front-end development against a realistic database.
package seed

import (
	"context"
	"fmt"

	"github.com/projektcopilot/backend/internal/model"
	"github.com/projektcopilot/backend/internal/store"
	"github.com/projektcopilot/backend/pkg/logger"
)

// clearOrder lists the kinds the seeder resets, dependents first.
var clearOrder = []*model.Kind{
	model.TestManagement,
	model.ConfigItem,
	model.WricefItem,
	model.Requirement,
	model.Scenario,
	model.Project,
}

// Run clears the demo entity kinds and repopulates them.
func Run(ctx context.Context, st *store.Store, log *logger.Logger) error {
	for _, kind := range clearOrder {
		if err := st.Clear(ctx, kind); err != nil {
			return err
		}
	}

	projects := []store.Record{
		{"project_code": "PRJ-001", "project_name": "S/4HANA Finance Transformation", "customer_name": "Arcelik", "status": "active"},
		{"project_code": "PRJ-002", "project_name": "SAP MM/WM Migration", "customer_name": "Vestel", "status": "planning"},
		{"project_code": "PRJ-003", "project_name": "Order-to-Cash Redesign", "customer_name": "Koc Holding", "status": "active"},
	}
	projectIDs := map[string]int64{}
	for _, fields := range projects {
		rec, err := st.Create(ctx, model.Project, fields, nil)
		if err != nil {
			return fmt.Errorf("seed project: %w", err)
		}
		projectIDs[fields["project_code"].(string)] = rec.ID()
	}

	scenarios := []store.Record{
		{"scenario_id": "S-001", "name": "Order to Cash (O2C)", "module": "SD"},
		{"scenario_id": "S-002", "name": "Procure to Pay (P2P)", "module": "MM"},
		{"scenario_id": "S-003", "name": "Record to Report (R2R)", "module": "FI"},
		{"scenario_id": "S-004", "name": "Plan to Produce", "module": "PP"},
		{"scenario_id": "S-005", "name": "Hire to Retire", "module": "HR"},
	}
	for _, fields := range scenarios {
		fields["project_id"] = projectIDs["PRJ-001"]
		if _, err := st.Create(ctx, model.Scenario, fields, nil); err != nil {
			return fmt.Errorf("seed scenario: %w", err)
		}
	}

	requirements := []store.Record{
		{"code": "REQ-001", "title": "SD Pricing Procedure", "classification": "Fit", "project_id": projectIDs["PRJ-001"]},
		{"code": "REQ-002", "title": "Custom ATP Check", "classification": "Gap", "project_id": projectIDs["PRJ-001"]},
		{"code": "REQ-003", "title": "Intercompany Billing", "classification": "Partial Fit", "project_id": projectIDs["PRJ-001"]},
		{"code": "REQ-004", "title": "MM Auto PO", "classification": "Fit", "project_id": projectIDs["PRJ-001"]},
		{"code": "REQ-005", "title": "Custom Vendor Evaluation", "classification": "Gap", "project_id": projectIDs["PRJ-001"]},
		{"code": "REQ-006", "title": "FI Document Splitting", "classification": "Fit", "project_id": projectIDs["PRJ-001"]},
		{"code": "REQ-007", "title": "Custom Dunning Process", "classification": "Gap", "project_id": projectIDs["PRJ-002"]},
		{"code": "REQ-008", "title": "PP Scheduling Agreement", "classification": "Partial Fit", "project_id": projectIDs["PRJ-002"]},
	}
	requirementIDs := map[string]int64{}
	for _, fields := range requirements {
		rec, err := st.Create(ctx, model.Requirement, fields, nil)
		if err != nil {
			return fmt.Errorf("seed requirement: %w", err)
		}
		requirementIDs[fields["code"].(string)] = rec.ID()
	}

	wricefItems := []store.Record{
		{"code": "W-001", "title": "Custom ATP Enhancement", "wricef_type": "E", "project_id": projectIDs["PRJ-001"], "requirement_id": requirementIDs["REQ-002"]},
		{"code": "W-002", "title": "Vendor Scoring Report", "wricef_type": "R", "project_id": projectIDs["PRJ-001"], "requirement_id": requirementIDs["REQ-005"]},
		{"code": "W-003", "title": "IDoc for Intercompany", "wricef_type": "I", "project_id": projectIDs["PRJ-001"], "requirement_id": requirementIDs["REQ-002"]},
		{"code": "W-004", "title": "Dunning Workflow", "wricef_type": "W", "project_id": projectIDs["PRJ-002"], "requirement_id": requirementIDs["REQ-007"]},
	}
	for _, fields := range wricefItems {
		if _, err := st.Create(ctx, model.WricefItem, fields, nil); err != nil {
			return fmt.Errorf("seed wricef item: %w", err)
		}
	}

	configItems := []store.Record{
		{"code": "CFG-001", "title": "SD Pricing Config", "config_type": "standard", "project_id": projectIDs["PRJ-001"], "requirement_id": requirementIDs["REQ-001"]},
		{"code": "CFG-002", "title": "Auto PO Setup", "config_type": "standard", "project_id": projectIDs["PRJ-001"], "requirement_id": requirementIDs["REQ-004"]},
		{"code": "CFG-003", "title": "Doc Splitting Config", "config_type": "standard", "project_id": projectIDs["PRJ-001"], "requirement_id": requirementIDs["REQ-006"]},
	}
	for _, fields := range configItems {
		if _, err := st.Create(ctx, model.ConfigItem, fields, nil); err != nil {
			return fmt.Errorf("seed config item: %w", err)
		}
	}

	testCases := []store.Record{
		{"code": "UT-001", "title": "Unit Test: SD Pricing", "test_type": "unit", "project_id": projectIDs["PRJ-001"]},
		{"code": "UT-002", "title": "Unit Test: ATP Check", "test_type": "unit", "project_id": projectIDs["PRJ-001"]},
		{"code": "SIT-001", "title": "SIT: O2C End-to-End", "test_type": "sit", "project_id": projectIDs["PRJ-001"]},
		{"code": "UAT-001", "title": "UAT: Order Processing", "test_type": "uat", "project_id": projectIDs["PRJ-001"]},
		{"code": "UAT-002", "title": "UAT: Invoice Verification", "test_type": "uat", "project_id": projectIDs["PRJ-002"]},
	}
	for _, fields := range testCases {
		if _, err := st.Create(ctx, model.TestManagement, fields, nil); err != nil {
			return fmt.Errorf("seed test case: %w", err)
		}
	}

	log.Infof("Seeded %d projects, %d scenarios, %d requirements, %d wricef items, %d config items, %d test cases",
		len(projects), len(scenarios), len(requirements), len(wricefItems), len(configItems), len(testCases))
	return nil
}
