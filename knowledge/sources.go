package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/loan-assistant/generic"
	"github.com/warp/loan-assistant/roster"
)

// Sources provides the raw policy text and roster table.
type Sources interface {
	PolicyText(ctx context.Context) (string, error)
	RosterTable(ctx context.Context) (generic.Table, error)
}

// FileSources reads the policy from a text file and the roster from a CSV
// or XLSX export.
type FileSources struct {
	PolicyPath string
	RosterPath string
	Sheet      string
}

func (f FileSources) PolicyText(_ context.Context) (string, error) {
	switch strings.ToLower(filepath.Ext(f.PolicyPath)) {
	case ".txt", ".md", "":
	default:
		return "", fmt.Errorf("%w: unsupported format %q", generic.ErrDocumentUnavailable, filepath.Ext(f.PolicyPath))
	}
	data, err := os.ReadFile(f.PolicyPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generic.ErrDocumentUnavailable, err)
	}
	return string(data), nil
}

func (f FileSources) RosterTable(_ context.Context) (generic.Table, error) {
	return roster.ReadFile(f.RosterPath, f.Sheet)
}

// StaticSources serves in-memory content. Used by demo scenarios and tests.
type StaticSources struct {
	Policy string
	Roster generic.Table
}

func (s StaticSources) PolicyText(_ context.Context) (string, error) {
	if strings.TrimSpace(s.Policy) == "" {
		return "", fmt.Errorf("%w: empty policy", generic.ErrDocumentUnavailable)
	}
	return s.Policy, nil
}

func (s StaticSources) RosterTable(_ context.Context) (generic.Table, error) {
	if s.Roster.IsEmpty() {
		return generic.Table{}, errors.New("no roster provided")
	}
	return s.Roster, nil
}
