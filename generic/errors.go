/*
errors.go - Centralized error types for the eligibility pipeline

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Global preconditions - Document or roster unusable. Checked once at
     load time; every evaluation escalates while they hold.
  2. Local recovery - A roster row or a policy rule that could not be read.
     Handled by exclusion/absence, never shown to the user.
  3. Outcomes - Employee not found (user visible), escalation required.

USAGE:
  if errors.Is(err, generic.ErrEmployeeNotFound) {
      // tell the user, do not escalate
  }

  var mismatch *generic.SchemaMismatchError
  if errors.As(err, &mismatch) {
      log.Warn("roster columns", zap.Strings("missing", mismatch.Missing))
  }

SEE ALSO:
  - roster/roster.go: RosterSchemaMismatch, RosterRowIncomplete
  - policy/extract.go: RuleAmbiguous
  - knowledge/snapshot.go: records global precondition failures
*/
package generic

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDocumentUnavailable is returned when the policy document is missing
	// or cannot be read.
	ErrDocumentUnavailable = errors.New("policy document unavailable")

	// ErrDocumentUnparseable is returned when the policy text yields no rule
	// and no checklist item.
	ErrDocumentUnparseable = errors.New("policy document unparseable")

	// ErrRosterSchemaMismatch is returned when the name, salary or tenure
	// column cannot be resolved. No usable dataset exists.
	ErrRosterSchemaMismatch = errors.New("roster schema mismatch")

	// ErrRosterRowIncomplete marks a roster row dropped for a missing field.
	ErrRosterRowIncomplete = errors.New("roster row incomplete")

	// ErrRuleAmbiguous marks a policy rule that matched but could not be read.
	ErrRuleAmbiguous = errors.New("policy rule ambiguous")

	// ErrEmployeeNotFound is returned when a name is not on the roster.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEscalationRequired is returned when no definitive answer can be
	// reached from the available structured data.
	ErrEscalationRequired = errors.New("escalation required")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SchemaMismatchError lists the column roles that could not be resolved.
type SchemaMismatchError struct {
	Missing []string // roles: "name", "salary", "tenure"
	Columns []string // headers that were available
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("roster schema mismatch: no column for %s (have %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Columns, ", "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrRosterSchemaMismatch
}

// RowError describes a roster row excluded from the usable dataset.
type RowError struct {
	Row     int // zero-based data row, header excluded
	Missing []string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("roster row %d dropped: missing %s", e.Row, strings.Join(e.Missing, ", "))
}

func (e *RowError) Unwrap() error {
	return ErrRosterRowIncomplete
}

// RuleError describes a policy rule whose match could not be converted.
type RuleError struct {
	Rule string
	Raw  string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("policy rule %s: cannot read %q", e.Rule, e.Raw)
}

func (e *RuleError) Unwrap() error {
	return ErrRuleAmbiguous
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsGlobalPrecondition returns true if the error disables evaluation for the
// whole process until the next reload.
func IsGlobalPrecondition(err error) bool {
	return errors.Is(err, ErrDocumentUnavailable) ||
		errors.Is(err, ErrDocumentUnparseable) ||
		errors.Is(err, ErrRosterSchemaMismatch)
}

// IsNotFound returns true if the error indicates a missing employee.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
