/*
Package knowledge holds the process-wide load state: the parsed policy and
the normalized roster.

PURPOSE:
  Parsing and normalization run once per load. The result is an immutable
  Snapshot that any number of requests read without locking. A reload builds
  a new Snapshot and swaps the pointer; in-flight requests keep the one they
  started with.

READINESS:
  Ready() is the global precondition. It holds only when
    - the policy text was read,
    - the policy yielded at least one rule or checklist item, and
    - the roster resolved its name, salary and tenure columns.
  Load never fails. Each failure becomes an Issue and every evaluation
  escalates until the next successful load.

PARTIAL STATE:
  A snapshot keeps whatever did load. The chat front end can still answer
  from the tenure-banded table when only the policy is missing.

SEE ALSO:
  - sources.go: file, static and SQLite inputs
  - eligibility/evaluate.go: the evaluator a Snapshot delegates to
*/
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/chat"
	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/policy"
	"github.com/warp/loan-assistant/roster"
	"go.uber.org/zap"
)

// Issue is a load failure that disables evaluation.
type Issue struct {
	Source  string `json:"source"` // "policy" or "roster"
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Snapshot is one immutable load result.
type Snapshot struct {
	Roster      *roster.Roster // nil when the roster failed
	Policy      *policy.Policy // nil when the document is unavailable or unparseable
	Skipped     []error        // rules that matched but could not be read
	Issues      []Issue
	PolicyChars int
	LoadedAt    time.Time
}

// Load reads both sources and builds a snapshot.
func Load(ctx context.Context, src Sources, log *zap.Logger) *Snapshot {
	if log == nil {
		log = zap.NewNop()
	}
	snap := &Snapshot{LoadedAt: time.Now().UTC()}

	snap.loadPolicy(ctx, src, log)
	snap.loadRoster(ctx, src, log)

	for _, issue := range snap.Issues {
		log.Warn("evaluation disabled",
			zap.String("source", issue.Source),
			zap.Error(issue.Err),
		)
	}
	return snap
}

func (s *Snapshot) loadPolicy(ctx context.Context, src Sources, log *zap.Logger) {
	text, err := src.PolicyText(ctx)
	if err != nil {
		if !errors.Is(err, generic.ErrDocumentUnavailable) {
			err = fmt.Errorf("%w: %v", generic.ErrDocumentUnavailable, err)
		}
		s.addIssue("policy", err)
		return
	}
	s.PolicyChars = len(text)

	ex := policy.Extract(text)
	s.Skipped = ex.Skipped
	for _, skipped := range ex.Skipped {
		log.Debug("policy rule skipped", zap.Error(skipped))
	}
	if !ex.Policy.HasAnyRule() {
		s.addIssue("policy", generic.ErrDocumentUnparseable)
		return
	}
	p := ex.Policy
	s.Policy = &p

	log.Info("policy loaded",
		zap.Int("policy_text_chars", s.PolicyChars),
		zap.Bool("rules_found", p.Rules.Any()),
		zap.Int("checklist_items", len(p.Checklist)),
	)
}

func (s *Snapshot) loadRoster(ctx context.Context, src Sources, log *zap.Logger) {
	table, err := src.RosterTable(ctx)
	if err != nil {
		s.addIssue("roster", fmt.Errorf("read roster: %w", err))
		return
	}
	r, err := roster.Normalize(table)
	if err != nil {
		s.addIssue("roster", err)
		return
	}
	s.Roster = r

	log.Info("roster loaded",
		zap.Int("employees", r.Len()),
		zap.Int("dropped_rows", len(r.Dropped)),
		zap.String("name_column", r.Columns.Name),
		zap.String("salary_column", r.Columns.Salary),
		zap.String("tenure_column", r.Columns.Tenure),
	)
}

func (s *Snapshot) addIssue(source string, err error) {
	s.Issues = append(s.Issues, Issue{Source: source, Message: err.Error(), Err: err})
}

// Ready reports whether the global preconditions hold.
func (s *Snapshot) Ready() bool {
	return s != nil && len(s.Issues) == 0 && s.Policy != nil && s.Roster != nil
}

// Evaluate looks up the employee and runs the evaluator. A snapshot that
// is not ready always escalates. An unknown name is ErrEmployeeNotFound.
func (s *Snapshot) Evaluate(name string, requested decimal.NullDecimal, answers map[string]bool) (eligibility.Verdict, error) {
	if !s.Ready() {
		return eligibility.Escalate(), nil
	}
	rec, ok := s.Roster.Lookup(name)
	if !ok {
		return eligibility.Verdict{}, fmt.Errorf("%q: %w", name, generic.ErrEmployeeNotFound)
	}
	return eligibility.Evaluate(&rec, requested, answers, *s.Policy), nil
}

// Assistant builds the chat front end over this snapshot.
func (s *Snapshot) Assistant(bands eligibility.BandTable) chat.Assistant {
	a := chat.Assistant{Bands: bands}
	if s != nil {
		a.Roster = s.Roster
		a.Policy = s.Policy
	}
	return a
}
