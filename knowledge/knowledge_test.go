package knowledge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-assistant/chat"
	"github.com/warp/loan-assistant/eligibility"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/knowledge"
	"github.com/warp/loan-assistant/store/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const policyText = `Loan Policy

Eligibility Criteria
- No outstanding loan with the company
- Confirmed by supervisor

Loan Limits
Minimum tenure of 12 months is required.
Maximum loan amount: 100,000
`

func rosterTable() generic.Table {
	return generic.Table{
		Columns: []string{"Employee Name", "Base Salary", "Tenure (Months)"},
		Rows: [][]string{
			{"Sara Khan", "300,000", "36"},
			{"Ali Raza", "50,000", "6"},
			{"Broken Row", "", "12"},
		},
	}
}

func readySources() knowledge.StaticSources {
	return knowledge.StaticSources{Policy: policyText, Roster: rosterTable()}
}

var allYes = map[string]bool{
	"No outstanding loan with the company": true,
	"Confirmed by supervisor":              true,
}

// =============================================================================
// LOAD
// =============================================================================

func TestLoad_Ready(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	snap := knowledge.Load(context.Background(), readySources(), zap.New(core))

	require.True(t, snap.Ready())
	assert.Empty(t, snap.Issues)
	assert.Equal(t, 2, snap.Roster.Len())
	assert.Len(t, snap.Roster.Dropped, 1)
	assert.Len(t, snap.Policy.Checklist, 2)
	assert.Equal(t, len(policyText), snap.PolicyChars)

	rosterLog := logs.FilterMessage("roster loaded").All()
	require.Len(t, rosterLog, 1)
	assert.Equal(t, int64(1), rosterLog[0].ContextMap()["dropped_rows"])
}

func TestLoad_GlobalPreconditions(t *testing.T) {
	tests := []struct {
		name     string
		src      knowledge.Sources
		sentinel error
	}{
		{"document unavailable", knowledge.StaticSources{Roster: rosterTable()}, generic.ErrDocumentUnavailable},
		{"document unparseable", knowledge.StaticSources{Policy: "Hello world.", Roster: rosterTable()}, generic.ErrDocumentUnparseable},
		{"schema mismatch", knowledge.StaticSources{Policy: policyText, Roster: generic.Table{
			Columns: []string{"Employee Name", "Department"},
			Rows:    [][]string{{"Sara Khan", "Ops"}},
		}}, generic.ErrRosterSchemaMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			snap := knowledge.Load(context.Background(), tt.src, zap.New(core))

			assert.False(t, snap.Ready())
			require.Len(t, snap.Issues, 1)
			assert.True(t, errors.Is(snap.Issues[0].Err, tt.sentinel))
			assert.True(t, generic.IsGlobalPrecondition(snap.Issues[0].Err))
			assert.Equal(t, 1, logs.FilterMessage("evaluation disabled").Len())

			// THEN: every evaluation escalates, even for known names
			v, err := snap.Evaluate("Sara Khan", generic.None(), allYes)
			require.NoError(t, err)
			assert.True(t, v.IsEscalation())
		})
	}
}

func TestLoad_SkippedRulesLoggedAtDebugOnly(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	src := readySources()
	src.Policy += "Minimum base salary: 1.000.000\n"

	snap := knowledge.Load(context.Background(), src, zap.New(core))

	assert.True(t, snap.Ready())
	require.NotEmpty(t, snap.Skipped)
	assert.ErrorIs(t, snap.Skipped[0], generic.ErrRuleAmbiguous)
	entries := logs.FilterMessage("policy rule skipped").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
}

func TestLoad_FileSources(t *testing.T) {
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.txt")
	rosterPath := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(policyPath, []byte(policyText), 0o644))
	require.NoError(t, os.WriteFile(rosterPath, []byte("Name,Base Salary,Tenure\nSara Khan,\"300,000\",3 years\n"), 0o644))

	snap := knowledge.Load(context.Background(), knowledge.FileSources{PolicyPath: policyPath, RosterPath: rosterPath}, nil)
	require.True(t, snap.Ready())

	missing := knowledge.Load(context.Background(), knowledge.FileSources{
		PolicyPath: filepath.Join(dir, "missing.txt"),
		RosterPath: rosterPath,
	}, nil)
	assert.False(t, missing.Ready())
	assert.ErrorIs(t, missing.Issues[0].Err, generic.ErrDocumentUnavailable)

	pdf := knowledge.Load(context.Background(), knowledge.FileSources{
		PolicyPath: filepath.Join(dir, "policy.pdf"),
		RosterPath: rosterPath,
	}, nil)
	assert.ErrorIs(t, pdf.Issues[0].Err, generic.ErrDocumentUnavailable)
}

func TestLoad_SQLiteSources(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	// GIVEN: nothing imported yet
	assert.False(t, knowledge.Load(ctx, store, nil).Ready())

	// WHEN: both sources imported
	require.NoError(t, store.SaveDocument(ctx, sqlite.PolicyDocument, policyText, "policy.txt"))
	require.NoError(t, store.ImportTable(ctx, rosterTable(), "roster.csv"))

	snap := knowledge.Load(ctx, store, nil)
	require.True(t, snap.Ready())
	assert.Equal(t, 2, snap.Roster.Len())
}

// =============================================================================
// EVALUATE
// =============================================================================

func TestSnapshot_Evaluate(t *testing.T) {
	snap := knowledge.Load(context.Background(), readySources(), nil)

	t.Run("eligible", func(t *testing.T) {
		v, err := snap.Evaluate("sara khan", generic.None(), allYes)
		require.NoError(t, err)
		assert.Equal(t, eligibility.OutcomeEligible, v.Outcome)
	})

	t.Run("capped", func(t *testing.T) {
		v, err := snap.Evaluate("Sara Khan", generic.Some(decimal.NewFromInt(250000)), allYes)
		require.NoError(t, err)
		assert.Equal(t, "Conditionally eligible up to 100,000.00 (requested exceeds policy cap).", v.Message())
	})

	t.Run("tenure", func(t *testing.T) {
		v, err := snap.Evaluate("Ali Raza", generic.None(), allYes)
		require.NoError(t, err)
		assert.Equal(t, eligibility.ReasonTenure, v.Reason)
	})

	t.Run("unanswered checklist", func(t *testing.T) {
		v, err := snap.Evaluate("Sara Khan", generic.None(), nil)
		require.NoError(t, err)
		assert.True(t, v.IsEscalation())
	})

	t.Run("not found is not escalation", func(t *testing.T) {
		_, err := snap.Evaluate("Nobody", generic.None(), allYes)
		assert.True(t, generic.IsNotFound(err))
	})

	t.Run("dropped row is not found", func(t *testing.T) {
		_, err := snap.Evaluate("Broken Row", generic.None(), allYes)
		assert.True(t, generic.IsNotFound(err))
	})
}

func TestSnapshot_AssistantFallsBackToBands(t *testing.T) {
	// GIVEN: roster loaded, policy unavailable
	snap := knowledge.Load(context.Background(), knowledge.StaticSources{Roster: rosterTable()}, nil)
	require.False(t, snap.Ready())

	a := snap.Assistant(eligibility.DefaultBandTable())
	_, reply := a.Respond(chat.Session{}, "my name is Sara Khan, it's for my nikah")

	assert.Contains(t, reply, "Eligible for a Own wedding loan (tenure 3-8 years)")
}

// =============================================================================
// BASE
// =============================================================================

func TestBase_SwapAndReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	policyPath := filepath.Join(dir, "policy.txt")
	rosterPath := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(rosterPath, []byte("Name,Salary,Tenure\nSara Khan,300000,36\n"), 0o644))

	// GIVEN: policy file missing at startup
	base := knowledge.NewBase(ctx, knowledge.FileSources{PolicyPath: policyPath, RosterPath: rosterPath}, nil)
	first := base.Current()
	assert.False(t, first.Ready())

	// WHEN: the file appears and the base reloads
	require.NoError(t, os.WriteFile(policyPath, []byte(policyText), 0o644))
	second := base.Reload(ctx)

	// THEN: a new snapshot is published; the old one is untouched
	assert.True(t, second.Ready())
	assert.Same(t, second, base.Current())
	assert.False(t, first.Ready())

	// WHEN: swapped to another source
	third := base.Swap(ctx, knowledge.StaticSources{})
	assert.False(t, third.Ready())
	assert.Len(t, third.Issues, 2)

	// THEN: reload uses the swapped source
	assert.False(t, base.Reload(ctx).Ready())
}

func TestBase_ConcurrentReadsDuringReload(t *testing.T) {
	ctx := context.Background()
	base := knowledge.NewBase(ctx, readySources(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				v, err := base.Current().Evaluate("Sara Khan", generic.None(), allYes)
				assert.NoError(t, err)
				assert.Equal(t, eligibility.OutcomeEligible, v.Outcome)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		base.Reload(ctx)
	}
	wg.Wait()
}
