// Package model declares the entity catalog: every record kind the
// backend persists, its table, columns, defaults and required fields.
// The generic store and the HTTP surface are both driven by this
// catalog, so adding an entity kind means adding one descriptor here.
package model

import (
	"fmt"
	"strings"
)

// ColumnType is the storage type of a column.
type ColumnType int

const (
	Text ColumnType = iota
	Integer
	Real
)

func (t ColumnType) sqlType() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column describes a single column of an entity kind. Default, when
// non-nil, is applied at create time if the caller omitted the field.
type Column struct {
	Name    string
	Type    ColumnType
	Default any
}

// Kind describes one entity kind: its diagnostics name, table and
// column set. The surrogate integer id column is implicit.
type Kind struct {
	Name     string
	Table    string
	Columns  []Column
	Required []string
}

// Column looks up a column by name.
func (k *Kind) Column(name string) (Column, bool) {
	for _, c := range k.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the kind defines the named column.
func (k *Kind) HasColumn(name string) bool {
	_, ok := k.Column(name)
	return ok
}

// HasCreatedAt reports whether the kind carries a creation timestamp.
func (k *Kind) HasCreatedAt() bool {
	return k.HasColumn("created_at")
}

// HasUpdatedAt reports whether the kind carries an update timestamp.
func (k *Kind) HasUpdatedAt() bool {
	return k.HasColumn("updated_at")
}

// ColumnNames returns the column names in declaration order, id
// excluded.
func (k *Kind) ColumnNames() []string {
	names := make([]string, len(k.Columns))
	for i, c := range k.Columns {
		names[i] = c.Name
	}
	return names
}

// CreateTableSQL returns the DDL declaring the kind's table.
func (k *Kind) CreateTableSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", k.Table)
	b.WriteString("\tid INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range k.Columns {
		fmt.Fprintf(&b, ",\n\t%s %s", c.Name, c.Type.sqlType())
	}
	b.WriteString("\n)")
	return b.String()
}

var Project = &Kind{
	Name:  "Project",
	Table: "projects",
	Columns: []Column{
		{Name: "project_code", Type: Text},
		{Name: "project_name", Type: Text},
		{Name: "customer_name", Type: Text},
		{Name: "customer_industry", Type: Text},
		{Name: "description", Type: Text},
		{Name: "status", Type: Text, Default: "planning"},
		{Name: "start_date", Type: Text},
		{Name: "end_date", Type: Text},
		{Name: "go_live_date", Type: Text},
		{Name: "project_manager", Type: Text},
		{Name: "solution_architect", Type: Text},
		{Name: "functional_lead", Type: Text},
		{Name: "technical_lead", Type: Text},
		{Name: "created_at", Type: Text},
	},
	Required: []string{"project_name"},
}

var Scenario = &Kind{
	Name:  "Scenario",
	Table: "scenarios",
	Columns: []Column{
		{Name: "project_id", Type: Integer},
		{Name: "scenario_id", Type: Text},
		{Name: "name", Type: Text},
		{Name: "module", Type: Text},
		{Name: "description", Type: Text},
		{Name: "status", Type: Text, Default: "draft"},
		{Name: "priority", Type: Text},
		{Name: "is_composite", Type: Integer, Default: int64(0)},
		{Name: "included_scenario_ids", Type: Text},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"name"},
}

var Analysis = &Kind{
	Name:  "Analysis",
	Table: "analyses",
	Columns: []Column{
		{Name: "scenario_id", Type: Integer},
		{Name: "code", Type: Text},
		{Name: "title", Type: Text},
		{Name: "analysis_type", Type: Text, Default: "workshop"},
		{Name: "status", Type: Text, Default: "planned"},
		{Name: "description", Type: Text},
		{Name: "scheduled_date", Type: Text},
		{Name: "completed_date", Type: Text},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"title"},
}

var Session = &Kind{
	Name:  "Session",
	Table: "analysis_sessions",
	Columns: []Column{
		{Name: "project_id", Type: Integer},
		{Name: "scenario_id", Type: Integer},
		{Name: "analysis_id", Type: Integer},
		{Name: "session_name", Type: Text},
		{Name: "session_code", Type: Text},
		{Name: "module", Type: Text},
		{Name: "facilitator", Type: Text},
		{Name: "session_date", Type: Text},
		{Name: "status", Type: Text, Default: "planned"},
		{Name: "notes", Type: Text},
		{Name: "location", Type: Text},
		{Name: "duration", Type: Text},
		{Name: "created_at", Type: Text},
	},
	Required: []string{"session_name"},
}

var Requirement = &Kind{
	Name:  "Requirement",
	Table: "new_requirements",
	Columns: []Column{
		{Name: "code", Type: Text},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "classification", Type: Text},
		{Name: "module", Type: Text},
		{Name: "priority", Type: Text},
		{Name: "status", Type: Text, Default: "open"},
		{Name: "session_id", Type: Integer},
		{Name: "project_id", Type: Integer},
		{Name: "gap_id", Type: Text},
		{Name: "analysis_id", Type: Integer},
		{Name: "fit_type", Type: Text},
		{Name: "conversion_status", Type: Text},
		{Name: "conversion_type", Type: Text},
		{Name: "conversion_id", Type: Integer},
		{Name: "converted_at", Type: Text},
		{Name: "converted_by", Type: Text},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"title"},
}

var WricefItem = &Kind{
	Name:  "WricefItem",
	Table: "wricef_items",
	Columns: []Column{
		{Name: "code", Type: Text},
		{Name: "project_id", Type: Integer},
		{Name: "requirement_id", Type: Integer},
		{Name: "scenario_id", Type: Integer},
		{Name: "wricef_type", Type: Text, Default: "E"},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "status", Type: Text, Default: "identified"},
		{Name: "priority", Type: Text},
		{Name: "complexity", Type: Text},
		{Name: "estimated_effort", Type: Text},
		{Name: "assigned_to", Type: Text},
		{Name: "functional_spec", Type: Text},
		{Name: "technical_spec", Type: Text},
		{Name: "unit_test_steps", Type: Text},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"title"},
}

var ConfigItem = &Kind{
	Name:  "ConfigItem",
	Table: "config_items",
	Columns: []Column{
		{Name: "code", Type: Text},
		{Name: "project_id", Type: Integer},
		{Name: "requirement_id", Type: Integer},
		{Name: "scenario_id", Type: Integer},
		{Name: "config_type", Type: Text, Default: "standard"},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "status", Type: Text, Default: "planned"},
		{Name: "t_code", Type: Text},
		{Name: "config_details", Type: Text},
		{Name: "unit_test_steps", Type: Text},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"title"},
}

var TestManagement = &Kind{
	Name:  "TestManagement",
	Table: "test_management",
	Columns: []Column{
		{Name: "code", Type: Text},
		{Name: "project_id", Type: Integer},
		{Name: "test_type", Type: Text, Default: "unit"},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "status", Type: Text, Default: "not_started"},
		{Name: "priority", Type: Text},
		{Name: "source_type", Type: Text},
		{Name: "source_id", Type: Integer},
		{Name: "preconditions", Type: Text},
		{Name: "steps", Type: Text},
		{Name: "expected_result", Type: Text},
		{Name: "actual_result", Type: Text},
		{Name: "assigned_to", Type: Text},
		{Name: "execution_date", Type: Text},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"title"},
}

var TestCycle = &Kind{
	Name:  "TestCycle",
	Table: "test_cycles",
	Columns: []Column{
		{Name: "project_id", Type: Integer},
		{Name: "cycle_code", Type: Text},
		{Name: "name", Type: Text},
		{Name: "description", Type: Text},
		{Name: "cycle_type", Type: Text, Default: "sit"},
		{Name: "status", Type: Text, Default: "planned"},
		{Name: "start_date", Type: Text},
		{Name: "end_date", Type: Text},
		{Name: "total_tests", Type: Integer, Default: int64(0)},
		{Name: "passed_tests", Type: Integer, Default: int64(0)},
		{Name: "failed_tests", Type: Integer, Default: int64(0)},
		{Name: "blocked_tests", Type: Integer, Default: int64(0)},
		{Name: "completion_percentage", Type: Real, Default: float64(0)},
		{Name: "created_at", Type: Text},
		{Name: "updated_at", Type: Text},
	},
	Required: []string{"name"},
}

var TestExecution = &Kind{
	Name:  "TestExecution",
	Table: "test_executions",
	Columns: []Column{
		{Name: "test_cycle_id", Type: Integer},
		{Name: "test_case_id", Type: Integer},
		{Name: "execution_code", Type: Text},
		{Name: "status", Type: Text, Default: "not_run"},
		{Name: "executed_by", Type: Text},
		{Name: "execution_date", Type: Text},
		{Name: "actual_result", Type: Text},
		{Name: "notes", Type: Text},
		{Name: "defect_id", Type: Text},
		{Name: "created_at", Type: Text},
	},
}

var Question = &Kind{
	Name:  "Question",
	Table: "questions",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "question_id", Type: Text},
		{Name: "question_text", Type: Text},
		{Name: "answer_text", Type: Text},
		{Name: "status", Type: Text, Default: "open"},
		{Name: "priority", Type: Text},
		{Name: "assigned_to", Type: Text},
		{Name: "category", Type: Text},
		{Name: "created_at", Type: Text},
	},
}

var FitGap = &Kind{
	Name:  "FitGap",
	Table: "fitgap",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "gap_id", Type: Text},
		{Name: "process_area", Type: Text},
		{Name: "gap_description", Type: Text},
		{Name: "fit_gap_status", Type: Text},
		{Name: "solution_type", Type: Text},
		{Name: "priority", Type: Text},
		{Name: "effort_estimate", Type: Text},
		{Name: "assigned_to", Type: Text},
		{Name: "related_decision_id", Type: Text},
		{Name: "related_wricef_id", Type: Text},
		{Name: "notes", Type: Text},
		{Name: "created_at", Type: Text},
	},
}

var Decision = &Kind{
	Name:  "Decision",
	Table: "decisions",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "decision_id", Type: Text},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "impact", Type: Text},
		{Name: "decided_by", Type: Text},
		{Name: "decision_date", Type: Text},
		{Name: "status", Type: Text, Default: "pending"},
		{Name: "related_gap_id", Type: Text},
		{Name: "created_at", Type: Text},
	},
}

var Risk = &Kind{
	Name:  "Risk",
	Table: "risks_issues",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "item_id", Type: Text},
		{Name: "type", Type: Text, Default: "risk"},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "probability", Type: Text},
		{Name: "impact", Type: Text},
		{Name: "risk_score", Type: Real},
		{Name: "mitigation_plan", Type: Text},
		{Name: "owner", Type: Text},
		{Name: "status", Type: Text, Default: "open"},
		{Name: "due_date", Type: Text},
		{Name: "created_at", Type: Text},
	},
}

var Action = &Kind{
	Name:  "Action",
	Table: "action_items",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "action_id", Type: Text},
		{Name: "title", Type: Text},
		{Name: "description", Type: Text},
		{Name: "assigned_to", Type: Text},
		{Name: "due_date", Type: Text},
		{Name: "status", Type: Text, Default: "open"},
		{Name: "priority", Type: Text},
		{Name: "related_decision_id", Type: Text},
		{Name: "created_at", Type: Text},
	},
}

var Attendee = &Kind{
	Name:  "Attendee",
	Table: "session_attendees",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "name", Type: Text},
		{Name: "role", Type: Text},
		{Name: "email", Type: Text},
		{Name: "department", Type: Text},
		{Name: "attendance_status", Type: Text},
	},
}

var Agenda = &Kind{
	Name:  "Agenda",
	Table: "session_agenda",
	Columns: []Column{
		{Name: "session_id", Type: Integer},
		{Name: "topic", Type: Text},
		{Name: "description", Type: Text},
		{Name: "duration", Type: Text},
		{Name: "presenter", Type: Text},
		{Name: "sort_order", Type: Integer},
		{Name: "notes", Type: Text},
		{Name: "status", Type: Text},
	},
}

// All lists every entity kind the backend persists.
var All = []*Kind{
	Project,
	Scenario,
	Analysis,
	Session,
	Requirement,
	WricefItem,
	ConfigItem,
	TestManagement,
	TestCycle,
	TestExecution,
	Question,
	FitGap,
	Decision,
	Risk,
	Action,
	Attendee,
	Agenda,
}
