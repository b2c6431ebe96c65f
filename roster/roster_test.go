package roster_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/roster"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// COLUMN RESOLUTION
// =============================================================================

func TestResolveColumns_ExactAliasesBeatSubstrings(t *testing.T) {
	// GIVEN: "Salary Grade" would satisfy the substring rule, "Base Salary" is exact
	cols, err := roster.ResolveColumns([]string{"Salary Grade", "Employee Name", "Base Salary", "Tenure (months)"})
	require.NoError(t, err)

	assert.Equal(t, "Employee Name", cols.Name)
	assert.Equal(t, "Base Salary", cols.Salary)
	assert.Equal(t, "Tenure (months)", cols.Tenure)
}

func TestResolveColumns_SubstringFallback(t *testing.T) {
	cols, err := roster.ResolveColumns([]string{" EMPLOYEE_NAME ", "Monthly Base Salary (PKR)", "Years at company"})
	require.NoError(t, err)

	assert.Equal(t, " EMPLOYEE_NAME ", cols.Name)
	assert.Equal(t, "Monthly Base Salary (PKR)", cols.Salary)
	assert.Equal(t, "Years at company", cols.Tenure)
}

func TestResolveColumns_ColumnClaimedOnce(t *testing.T) {
	// GIVEN: the only tenure-looking header is also the salary header
	_, err := roster.ResolveColumns([]string{"Name", "Salary for 12 months"})

	// THEN: tenure stays unresolved instead of reusing the salary column
	var mismatch *generic.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"tenure"}, mismatch.Missing)
}

func TestResolveColumns_MissingRoleIsSchemaMismatch(t *testing.T) {
	_, err := roster.ResolveColumns([]string{"Employee", "Department"})

	assert.True(t, errors.Is(err, generic.ErrRosterSchemaMismatch))
	var mismatch *generic.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, []string{"salary", "tenure"}, mismatch.Missing)
}

// =============================================================================
// NORMALIZATION
// =============================================================================

func sampleTable() generic.Table {
	return generic.Table{
		Columns: []string{"Employee Name", "Department", "Current Base Salary", "Tenure"},
		Rows: [][]string{
			{"Ayesha Khan", "Finance", "85,000", "3 years 2 months"},
			{"  Bilal Ahmed ", "Sales", "$60,000", "18"},
			{"", "Ops", "40000", "24"},
			{"Sara Malik", "HR", "n/a", "5 years"},
			{"Omar Farooq", "IT", "70000", "unknown"},
			{"ayesha khan", "Finance", "10", "1"},
		},
	}
}

func TestNormalize_DropsIncompleteRows(t *testing.T) {
	r, err := roster.Normalize(sampleTable())
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.Dropped, 3)
	assert.Equal(t, []string{"Ayesha Khan", "Bilal Ahmed", "ayesha khan"}, r.Names())

	for _, d := range r.Dropped {
		assert.True(t, errors.Is(&d, generic.ErrRosterRowIncomplete))
	}
	assert.Equal(t, []string{"name"}, r.Dropped[0].Missing)
	assert.Equal(t, []string{"salary"}, r.Dropped[1].Missing)
	assert.Equal(t, []string{"tenure"}, r.Dropped[2].Missing)
}

func TestNormalize_LookupIsCaseInsensitiveFirstWins(t *testing.T) {
	r, err := roster.Normalize(sampleTable())
	require.NoError(t, err)

	rec, ok := r.Lookup("AYESHA KHAN ")
	require.True(t, ok)
	assert.Equal(t, "Ayesha Khan", rec.Name)
	assert.Equal(t, "ayesha khan", rec.Key)
	assert.True(t, rec.BaseSalary.Decimal.Equal(decimal.NewFromInt(85000)))
	require.NotNil(t, rec.TenureMonths)
	assert.Equal(t, 38, *rec.TenureMonths)
	assert.True(t, rec.Usable())

	rec, ok = r.Lookup("bilal ahmed")
	require.True(t, ok)
	assert.Equal(t, "Bilal Ahmed", rec.Name)
	assert.Equal(t, 18, *rec.TenureMonths)

	_, ok = r.Lookup("Sara Malik")
	assert.False(t, ok, "dropped rows are not in the usable set")
}

func TestNormalize_SchemaMismatch(t *testing.T) {
	r, err := roster.Normalize(generic.Table{Columns: []string{"Who", "Pay"}})
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, generic.ErrRosterSchemaMismatch))
}

func TestNilRoster_IsEmpty(t *testing.T) {
	var r *roster.Roster
	_, ok := r.Lookup("anyone")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Names())
}

// =============================================================================
// SOURCES
// =============================================================================

func TestReadCSV(t *testing.T) {
	in := "\ufeffName,Base Salary,Tenure\n\nAyesha Khan,\"85,000\",3 years\nBilal Ahmed,60000\n"
	table, err := roster.ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Base Salary", "Tenure"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "85,000", table.Cell(0, 1))
	assert.Equal(t, "", table.Cell(1, 2), "ragged row reads as empty cell")
}

func TestReadFile_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Employee Name", "Base Salary", "Years of Service"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Ayesha Khan", 85000, "3.5"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := roster.ReadFile(path, "")
	require.NoError(t, err)

	r, err := roster.Normalize(table)
	require.NoError(t, err)
	rec, ok := r.Lookup("ayesha khan")
	require.True(t, ok)
	assert.Equal(t, 42, *rec.TenureMonths)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	_, err := roster.ReadFile(path, "")
	assert.Error(t, err)
}
