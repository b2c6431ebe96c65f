package roster

import (
	"strings"

	"github.com/warp/loan-assistant/generic"
)

// Role is the meaning of a roster column.
type Role string

const (
	RoleName   Role = "name"
	RoleSalary Role = "salary"
	RoleTenure Role = "tenure"
)

// alias is one entry of the column resolution table. Exact names are tried
// against every header before any substring rule runs.
type alias struct {
	role     Role
	exact    []string
	contains [][]string // every fragment of an inner slice must be present
}

var aliasTable = []alias{
	{
		role:     RoleName,
		exact:    []string{"name", "employee", "employee name", "full name", "employee full name"},
		contains: [][]string{{"name"}},
	},
	{
		role:     RoleSalary,
		exact:    []string{"base salary", "current base salary", "basic salary", "salary"},
		contains: [][]string{{"base", "salary"}, {"salary"}},
	},
	{
		role:     RoleTenure,
		exact:    []string{"tenure", "tenure (months)", "tenure months", "tenure in months", "years of service", "service years"},
		contains: [][]string{{"tenure"}, {"years"}, {"months"}},
	},
}

// Columns records which header was resolved for each role.
type Columns struct {
	Name   string `json:"name" yaml:"name"`
	Salary string `json:"salary" yaml:"salary"`
	Tenure string `json:"tenure" yaml:"tenure"`

	name, salary, tenure int
}

// ResolveColumns locates the name, salary and tenure columns. A header is
// claimed by at most one role; roles resolve in table order. If any role is
// left unresolved the result is a *generic.SchemaMismatchError.
func ResolveColumns(headers []string) (Columns, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	claimed := make(map[int]bool)
	found := make(map[Role]int)
	var missing []string

	for _, a := range aliasTable {
		idx := resolveRole(a, normalized, claimed)
		if idx < 0 {
			missing = append(missing, string(a.role))
			continue
		}
		claimed[idx] = true
		found[a.role] = idx
	}

	if len(missing) > 0 {
		return Columns{}, &generic.SchemaMismatchError{Missing: missing, Columns: headers}
	}

	return Columns{
		Name:   headers[found[RoleName]],
		Salary: headers[found[RoleSalary]],
		Tenure: headers[found[RoleTenure]],
		name:   found[RoleName],
		salary: found[RoleSalary],
		tenure: found[RoleTenure],
	}, nil
}

func resolveRole(a alias, headers []string, claimed map[int]bool) int {
	for _, want := range a.exact {
		for i, h := range headers {
			if !claimed[i] && h == want {
				return i
			}
		}
	}
	for _, fragments := range a.contains {
		for i, h := range headers {
			if !claimed[i] && containsAll(h, fragments) {
				return i
			}
		}
	}
	return -1
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}
