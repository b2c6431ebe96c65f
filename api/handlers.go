/*
handlers.go - HTTP API handlers for the loan eligibility assistant

PURPOSE:
  Exposes the eligibility pipeline via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the knowledge
  snapshot and the chat assistant.

ENDPOINTS:
  Status:
    GET    /api/status                 Readiness, load issues, counts
    GET    /api/policy                 Extracted rules and checklist
    GET    /api/employees              Usable roster records

  Eligibility:
    POST   /api/eligibility            Form evaluation -> verdict

  Chat:
    POST   /api/chat                   One chat turn
    GET    /api/chat/{id}              Session transcript
    DELETE /api/chat/{id}              End session

  Admin:
    POST   /api/admin/reload           Rebuild the snapshot from sources

  Scenarios:
    GET    /api/scenarios              List demo datasets
    POST   /api/scenarios/load         Swap a demo dataset in

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Base: current knowledge snapshot (swapped atomically on reload)
  - Bands: tenure-banded table for chat
  - Sessions: per-session chat state, keyed by uuid

  Each request reads Base.Current() once and works on that snapshot, so a
  concurrent reload never mixes two datasets in one answer.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input
  - 404: Employee, session or scenario not found
  - 500: Internal errors
  Escalation is a normal 200 response with outcome "escalate".

SECURITY NOTE:
  No authentication. Intended for an internal network only.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo datasets
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/chat"
	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/generic/store"
	"github.com/warp/loan-assistant/knowledge"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Base     *knowledge.Base
	Bands    eligibility.BandTable
	Sessions *store.Memory[chat.Session]
	Log      *zap.Logger

	configured      knowledge.Sources
	mu              sync.RWMutex
	currentScenario string
}

// NewHandler creates a new handler over the given knowledge base.
func NewHandler(base *knowledge.Base, bands eligibility.BandTable, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Base:     base,
		Bands:    bands,
		Sessions: store.NewMemory[chat.Session](),
		Log:      log,

		configured: base.Sources(),
	}
}

func (h *Handler) scenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// =============================================================================
// STATUS HANDLERS
// =============================================================================

// GetStatus reports readiness and load statistics.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.Base.Current()

	dto := StatusDTO{
		Ready:        snap.Ready(),
		Issues:       snap.Issues,
		Employees:    snap.Roster.Len(),
		SkippedRules: len(snap.Skipped),
		PolicyChars:  snap.PolicyChars,
		Scenario:     h.scenario(),
		LoadedAt:     snap.LoadedAt,
	}
	if dto.Issues == nil {
		dto.Issues = []knowledge.Issue{}
	}
	if snap.Roster != nil {
		dto.DroppedRows = len(snap.Roster.Dropped)
	}
	if snap.Policy != nil {
		dto.ChecklistItems = len(snap.Policy.Checklist)
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetPolicy returns the extracted rules and checklist.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	snap := h.Base.Current()

	dto := PolicyDTO{Checklist: []string{}}
	if snap.Policy != nil {
		dto.Available = true
		dto.Rules = snap.Policy.Rules.Doc()
		if len(snap.Policy.Checklist) > 0 {
			dto.Checklist = snap.Policy.Checklist
		}
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListEmployees returns the usable roster.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	records := h.Base.Current().Roster.Records()

	dtos := make([]EmployeeDTO, len(records))
	for i, rec := range records {
		salary, _ := rec.BaseSalary.Decimal.Float64()
		dtos[i] = EmployeeDTO{
			Name:         rec.Name,
			BaseSalary:   salary,
			TenureMonths: *rec.TenureMonths,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ELIGIBILITY HANDLERS
// =============================================================================

// CheckEligibility evaluates one form submission.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req EligibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	requested := generic.None()
	if req.RequestedAmount != nil && *req.RequestedAmount > 0 {
		requested = generic.Some(decimal.NewFromFloat(*req.RequestedAmount))
	}

	v, err := h.Base.Current().Evaluate(req.Name, requested, req.Answers)
	if err != nil {
		if generic.IsNotFound(err) {
			writeErrorCode(w, http.StatusNotFound, "Employee not found", "employee_not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Evaluation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toVerdictDTO(v))
}

// =============================================================================
// CHAT HANDLERS
// =============================================================================

// errSessionNotFound is returned by chat handlers for an unknown session id.
var errSessionNotFound = errors.New("chat session not found")

// Chat handles one chat turn.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required", nil)
		return
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
		h.Sessions.Save(id, chat.Session{})
	} else if _, ok := h.Sessions.Load(id); !ok {
		writeErrorCode(w, http.StatusNotFound, "Session not found", "session_not_found", errSessionNotFound)
		return
	}

	assistant := h.Base.Current().Assistant(h.Bands)
	var reply string
	next := h.Sessions.Update(id, func(s chat.Session) chat.Session {
		s, reply = assistant.Respond(s, req.Message)
		return s
	})

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID:     id,
		Reply:         reply,
		PendingName:   next.PendingName,
		PendingReason: next.PendingReason,
	})
}

// GetChatSession returns a session transcript.
func (h *Handler) GetChatSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.Sessions.Load(id)
	if !ok {
		writeErrorCode(w, http.StatusNotFound, "Session not found", "session_not_found", errSessionNotFound)
		return
	}
	if s.Transcript == nil {
		s.Transcript = []chat.Turn{}
	}
	writeJSON(w, http.StatusOK, SessionDTO{SessionID: id, Session: s})
}

// DeleteChatSession ends a session.
func (h *Handler) DeleteChatSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.Sessions.Delete(id) {
		writeErrorCode(w, http.StatusNotFound, "Session not found", "session_not_found", errSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Reload rebuilds the snapshot from the configured sources. A loaded demo
// scenario is dropped.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	var snap *knowledge.Snapshot
	if h.scenario() != "" {
		snap = h.Base.Swap(r.Context(), h.configured)
		h.setScenario("")
	} else {
		snap = h.Base.Reload(r.Context())
	}
	h.Log.Info("knowledge reloaded", zap.Bool("ready", snap.Ready()), zap.Int("issues", len(snap.Issues)))
	h.GetStatus(w, r)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	writeErrorCode(w, status, message, "", err)
}

func writeErrorCode(w http.ResponseWriter, status int, message, code string, err error) {
	resp := ErrorResponse{Error: message, Code: code}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
