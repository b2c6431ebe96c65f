/*
Package factory provides JSON/YAML to Go band table conversion.

PURPOSE:
  Converts band table definitions into eligibility.BandTable. HR can change
  the tenure bands, multipliers and allowed reasons the chat uses without a
  code change.

SCHEMA (YAML shown, JSON uses the same keys):
  repayment_percent: 30
  bands:
    - name: "under 1 year"
      min_years: 0
      max_years: 1
      multiplier: 0
    - name: "1-3 years"
      min_years: 1
      max_years: 3
      multiplier: 3
      reasons: ["Medical", "Own wedding"]
    - name: "8+ years"
      min_years: 8          # max_years omitted: no upper bound
      multiplier: 10
      reasons: [...]

  Years may be fractional; they are converted to whole months (half to
  even). The resulting table is validated (ordered, non-overlapping).

USAGE:
  f := factory.NewBandFactory()
  table, err := f.LoadFile("bands.yaml")

  // inline in loanbot.yaml under chat.bands
  table, err := f.FromMap(cfg.Chat.Bands)

SEE ALSO:
  - eligibility/bands.go: BandTable and the built-in default
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/warp/loan-assistant/eligibility"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// BandTableDoc is the serialized form of a band table.
type BandTableDoc struct {
	RepaymentPercent float64   `json:"repayment_percent" yaml:"repayment_percent" mapstructure:"repayment_percent"`
	Bands            []BandDoc `json:"bands" yaml:"bands" mapstructure:"bands"`
}

// BandDoc is one tenure band.
type BandDoc struct {
	Name       string   `json:"name" yaml:"name" mapstructure:"name"`
	MinYears   float64  `json:"min_years" yaml:"min_years" mapstructure:"min_years"`
	MaxYears   *float64 `json:"max_years,omitempty" yaml:"max_years,omitempty" mapstructure:"max_years"`
	Multiplier float64  `json:"multiplier" yaml:"multiplier" mapstructure:"multiplier"`
	Reasons    []string `json:"reasons,omitempty" yaml:"reasons,omitempty" mapstructure:"reasons"`
}

// =============================================================================
// BAND FACTORY
// =============================================================================

// BandFactory converts band table documents to eligibility.BandTable.
type BandFactory struct{}

func NewBandFactory() *BandFactory {
	return &BandFactory{}
}

// ParseJSON parses a JSON band table.
func (f *BandFactory) ParseJSON(data []byte) (eligibility.BandTable, error) {
	var doc BandTableDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return eligibility.BandTable{}, fmt.Errorf("failed to parse band table JSON: %w", err)
	}
	return f.FromDoc(doc)
}

// ParseYAML parses a YAML band table.
func (f *BandFactory) ParseYAML(data []byte) (eligibility.BandTable, error) {
	var doc BandTableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return eligibility.BandTable{}, fmt.Errorf("failed to parse band table YAML: %w", err)
	}
	return f.FromDoc(doc)
}

// FromMap decodes an inline table, as found under chat.bands in the
// config file.
func (f *BandFactory) FromMap(m map[string]any) (eligibility.BandTable, error) {
	var doc BandTableDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return eligibility.BandTable{}, err
	}
	if err := dec.Decode(m); err != nil {
		return eligibility.BandTable{}, fmt.Errorf("failed to decode band table: %w", err)
	}
	return f.FromDoc(doc)
}

// LoadFile reads a band table, choosing the format by extension.
func (f *BandFactory) LoadFile(path string) (eligibility.BandTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return eligibility.BandTable{}, fmt.Errorf("read band table: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return f.ParseJSON(data)
	case ".yaml", ".yml":
		return f.ParseYAML(data)
	default:
		return eligibility.BandTable{}, fmt.Errorf("unsupported band table format %q", filepath.Ext(path))
	}
}

// FromDoc converts and validates a document.
func (f *BandFactory) FromDoc(doc BandTableDoc) (eligibility.BandTable, error) {
	table := eligibility.BandTable{
		RepaymentShare: decimal.NewFromFloat(doc.RepaymentPercent).Div(decimal.NewFromInt(100)),
	}
	for _, bd := range doc.Bands {
		band := eligibility.Band{
			Name:       bd.Name,
			MinMonths:  yearsToMonths(bd.MinYears),
			Multiplier: decimal.NewFromFloat(bd.Multiplier),
			Reasons:    trimReasons(bd.Reasons),
		}
		if bd.MaxYears != nil {
			band.MaxMonths = yearsToMonths(*bd.MaxYears)
		}
		if band.Name == "" {
			band.Name = fmt.Sprintf("%g+ years", bd.MinYears)
		}
		table.Bands = append(table.Bands, band)
	}

	if err := table.Validate(); err != nil {
		return eligibility.BandTable{}, fmt.Errorf("invalid band table: %w", err)
	}
	return table, nil
}

// ToDoc converts a table back to its document form.
func (f *BandFactory) ToDoc(table eligibility.BandTable) BandTableDoc {
	pct, _ := table.RepaymentShare.Mul(decimal.NewFromInt(100)).Float64()
	doc := BandTableDoc{RepaymentPercent: pct}
	for _, b := range table.Bands {
		mult, _ := b.Multiplier.Float64()
		bd := BandDoc{
			Name:       b.Name,
			MinYears:   monthsToYears(b.MinMonths),
			Multiplier: mult,
			Reasons:    b.Reasons,
		}
		if b.MaxMonths != 0 {
			maxYears := monthsToYears(b.MaxMonths)
			bd.MaxYears = &maxYears
		}
		doc.Bands = append(doc.Bands, bd)
	}
	return doc
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func yearsToMonths(years float64) int {
	return int(decimal.NewFromFloat(years).Mul(decimal.NewFromInt(12)).RoundBank(0).IntPart())
}

func monthsToYears(months int) float64 {
	y, _ := decimal.NewFromInt(int64(months)).Div(decimal.NewFromInt(12)).Float64()
	return y
}

func trimReasons(reasons []string) []string {
	var out []string
	for _, r := range reasons {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
