/*
scenarios.go - Demo datasets for testing and demonstrations

PURPOSE:
  Provides pre-built policy/roster pairs that replace the knowledge base
  for demos. Each scenario shows one branch of the pipeline.

AVAILABLE SCENARIOS:
  standard:       Checklist, 12 month tenure, 3 months' salary, 500,000 cap
  strict-cap:     100,000 absolute cap and 50% of salary
  no-policy:      Roster only. Form escalates, chat uses the banded table
  broken-roster:  Roster without a tenure column. Everything escalates

HOW SCENARIOS WORK:
  1. Build knowledge.StaticSources for the scenario
  2. Swap them into the knowledge base (a fresh snapshot)
  3. Remember the scenario id until the next reload

USAGE VIA API:
  POST /api/scenarios/load
  {"scenario_id": "strict-cap"}

  POST /api/admin/reload restores the configured sources.

SEE ALSO:
  - handlers.go: Reload
  - knowledge/sources.go: StaticSources
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/knowledge"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard",
		Name:        "Standard Policy",
		Description: "Eligibility checklist, 12 month minimum tenure, up to 3 months' base salary capped at 500,000",
	},
	{
		ID:          "strict-cap",
		Name:        "Strict Cap",
		Description: "Absolute cap of 100,000 and 50% of base salary; large requests are conditionally approved",
	},
	{
		ID:          "no-policy",
		Name:        "Missing Policy",
		Description: "Employee sheet only; the form escalates and the chat falls back to the tenure bands",
	},
	{
		ID:          "broken-roster",
		Name:        "Broken Employee Sheet",
		Description: "Employee sheet without a tenure column; every evaluation escalates",
	},
}

const standardPolicy = `Employee Loan Policy

Purpose
This policy describes interest-free loans for permanent staff.

Eligibility Criteria
• No outstanding loan with the company
• Confirmed by supervisor
• Not serving a notice period

Loan Limits
Minimum tenure of 12 months is required.
Employees may borrow up to 3 months' base salary.
Maximum loan amount: 500,000.
`

const strictCapPolicy = `Staff Advance Policy

Loan Limits
At least 6 months of service.
Maximum loan amount: 100,000
Advances are limited to 50% of base salary.
`

func demoRoster() generic.Table {
	return generic.Table{
		Columns: []string{"Employee Name", "Designation", "Current Base Salary", "Years of Service"},
		Rows: [][]string{
			{"Sara Khan", "Engineer", "300,000", "3 years 2 months"},
			{"Ali Raza", "Analyst", "50,000", "6 months"},
			{"Omar Farooq", "Manager", "200,000", "10 years"},
			{"Alina Shah", "Designer", "80,000", "1.5"},
			{"Bilal Ahmed", "Intern", "", "2 months"},
		},
	}
}

func scenarioSources(id string) (knowledge.Sources, bool) {
	switch id {
	case "standard":
		return knowledge.StaticSources{Policy: standardPolicy, Roster: demoRoster()}, true
	case "strict-cap":
		return knowledge.StaticSources{Policy: strictCapPolicy, Roster: demoRoster()}, true
	case "no-policy":
		return knowledge.StaticSources{Roster: demoRoster()}, true
	case "broken-roster":
		t := demoRoster()
		t.Columns = t.Columns[:3]
		for i := range t.Rows {
			t.Rows[i] = t.Rows[i][:3]
		}
		return knowledge.StaticSources{Policy: standardPolicy, Roster: t}, true
	default:
		return nil, false
	}
}

// =============================================================================
// SCENARIO HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario swaps a demo dataset into the knowledge base.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	src, ok := scenarioSources(req.ScenarioID)
	if !ok {
		writeErrorCode(w, http.StatusNotFound, "Unknown scenario", "scenario_not_found", nil)
		return
	}

	snap := h.Base.Swap(r.Context(), src)
	h.setScenario(req.ScenarioID)
	h.Log.Info("scenario loaded", zap.String("scenario", req.ScenarioID), zap.Bool("ready", snap.Ready()))

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"ready":    snap.Ready(),
	})
}
