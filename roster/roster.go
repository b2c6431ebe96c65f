/*
Package roster normalizes employee exports into canonical records.

PURPOSE:
  The employee list arrives as a spreadsheet with whatever headers HR used
  this quarter. This package finds the name, base salary and tenure columns,
  coerces the mixed-format cells and keeps only rows that can be evaluated.

COLUMN RESOLUTION:
  A prioritized alias table (columns.go). Exact header names win over
  substring heuristics. If any of the three roles is missing there is no
  usable dataset at all: Normalize returns a SchemaMismatchError.

ROW EXCLUSION:
  A row missing its name, salary or tenure is dropped. Drops are counted
  on the Roster, never reported one by one to the user.

LOOKUP:
  Records are keyed by the case-folded, trimmed name. The display name keeps
  its original casing. When two rows share a key the first one wins.

SEE ALSO:
  - coerce.go: tenure and salary cell parsing
  - source.go: CSV and XLSX readers
  - eligibility/evaluate.go: consumes Record
*/
package roster

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/generic"
	"golang.org/x/text/cases"
)

// Record is one employee in canonical form.
type Record struct {
	Name         string
	Key          string
	BaseSalary   decimal.NullDecimal
	TenureMonths *int
}

// Usable reports whether the record carries both salary and tenure.
func (r Record) Usable() bool {
	return r.BaseSalary.Valid && r.TenureMonths != nil
}

// TenureYears returns tenure in fractional years (months / 12).
func (r Record) TenureYears() decimal.Decimal {
	if r.TenureMonths == nil {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(*r.TenureMonths)).Div(decimal.NewFromInt(12))
}

// Key folds a display name into its lookup form.
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Roster is the usable dataset. Immutable after Normalize.
type Roster struct {
	Columns Columns
	Dropped []generic.RowError

	records []Record
	index   map[string]int
}

// Normalize resolves columns and builds the usable dataset from a raw table.
func Normalize(t generic.Table) (*Roster, error) {
	cols, err := ResolveColumns(t.Columns)
	if err != nil {
		return nil, err
	}

	r := &Roster{
		Columns: cols,
		index:   make(map[string]int),
	}

	for i := range t.Rows {
		name := strings.TrimSpace(t.Cell(i, cols.name))
		salary, salaryOK := BaseSalary(t.Cell(i, cols.salary))
		tenure, tenureOK := TenureMonths(t.Cell(i, cols.tenure))

		var missing []string
		if name == "" {
			missing = append(missing, string(RoleName))
		}
		if !salaryOK {
			missing = append(missing, string(RoleSalary))
		}
		if !tenureOK {
			missing = append(missing, string(RoleTenure))
		}
		if len(missing) > 0 {
			r.Dropped = append(r.Dropped, generic.RowError{Row: i, Missing: missing})
			continue
		}

		rec := Record{
			Name:         name,
			Key:          Key(name),
			BaseSalary:   generic.Some(salary),
			TenureMonths: &tenure,
		}
		if _, dup := r.index[rec.Key]; !dup {
			r.index[rec.Key] = len(r.records)
		}
		r.records = append(r.records, rec)
	}

	return r, nil
}

// Lookup finds an employee by name, case-insensitively.
func (r *Roster) Lookup(name string) (Record, bool) {
	if r == nil {
		return Record{}, false
	}
	i, ok := r.index[Key(name)]
	if !ok {
		return Record{}, false
	}
	return r.records[i], true
}

// Records returns the usable records in source order.
func (r *Roster) Records() []Record {
	if r == nil {
		return nil
	}
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Names returns display names in source order.
func (r *Roster) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.records))
	for i, rec := range r.records {
		names[i] = rec.Name
	}
	return names
}

func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}
