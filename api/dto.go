/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Money leaves the
  API as JSON numbers; decimal values are converted at this boundary.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Status:      StatusDTO, IssueDTO
  Policy:      PolicyDTO (wraps policy.RulesDoc)
  Employees:   EmployeeDTO
  Eligibility: EligibilityRequest, VerdictDTO
  Chat:        ChatRequest, ChatResponse, SessionDTO
  Scenarios:   ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - eligibility/verdict.go: Verdict, Message, Severity
*/
package api

import (
	"time"

	"github.com/warp/loan-assistant/chat"
	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/knowledge"
	"github.com/warp/loan-assistant/policy"
)

// =============================================================================
// STATUS / POLICY / EMPLOYEES
// =============================================================================

// StatusDTO reports whether evaluation is enabled.
type StatusDTO struct {
	Ready          bool              `json:"ready"`
	Issues         []knowledge.Issue `json:"issues"`
	Employees      int               `json:"employees"`
	DroppedRows    int               `json:"dropped_rows"`
	ChecklistItems int               `json:"checklist_items"`
	SkippedRules   int               `json:"skipped_rules"`
	PolicyChars    int               `json:"policy_text_chars"`
	Scenario       string            `json:"scenario,omitempty"`
	LoadedAt       time.Time         `json:"loaded_at"`
}

// PolicyDTO is the extracted policy, as shown in the sidebar.
type PolicyDTO struct {
	Available bool            `json:"available"`
	Rules     policy.RulesDoc `json:"rules"`
	Checklist []string        `json:"checklist"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	Name         string  `json:"name"`
	BaseSalary   float64 `json:"base_salary"`
	TenureMonths int     `json:"tenure_months"`
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

// EligibilityRequest is the form submission. A requested amount that is
// absent or not positive counts as not supplied.
type EligibilityRequest struct {
	Name            string          `json:"name"`
	RequestedAmount *float64        `json:"requested_amount,omitempty"`
	Answers         map[string]bool `json:"answers"`
}

// VerdictDTO represents a verdict in API responses.
type VerdictDTO struct {
	Outcome  eligibility.Outcome  `json:"outcome"`
	Severity eligibility.Severity `json:"severity"`
	Message  string               `json:"message"`
	Reason   eligibility.Reason   `json:"reason,omitempty"`
	Detail   string               `json:"detail,omitempty"`
	Cap      *float64             `json:"cap,omitempty"`
}

func toVerdictDTO(v eligibility.Verdict) VerdictDTO {
	dto := VerdictDTO{
		Outcome:  v.Outcome,
		Severity: v.Severity(),
		Message:  v.Message(),
		Reason:   v.Reason,
		Detail:   v.Detail,
	}
	if v.Cap.Valid {
		f, _ := v.Cap.Decimal.Float64()
		dto.Cap = &f
	}
	return dto
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest is one user message. An empty session id starts a session.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	SessionID     string `json:"session_id"`
	Reply         string `json:"reply"`
	PendingName   string `json:"pending_name,omitempty"`
	PendingReason string `json:"pending_reason,omitempty"`
}

// SessionDTO is a full chat session.
type SessionDTO struct {
	SessionID string `json:"session_id"`
	chat.Session
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
