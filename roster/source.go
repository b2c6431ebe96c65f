package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/loan-assistant/generic"
	"github.com/xuri/excelize/v2"
)

// ReadFile reads a roster export, choosing the reader by extension.
// sheet is only used for workbooks; "" selects the first sheet.
func ReadFile(path, sheet string) (generic.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return generic.Table{}, err
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, sheet)
	default:
		return generic.Table{}, fmt.Errorf("unsupported roster format %q", filepath.Ext(path))
	}
}

// ReadCSV reads a header row followed by data rows. Ragged rows are allowed.
func ReadCSV(r io.Reader) (generic.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return generic.Table{}, fmt.Errorf("read csv: %w", err)
	}
	return tableFromRows(records)
}

// ReadXLSX reads one worksheet of a workbook.
func ReadXLSX(path, sheet string) (generic.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return generic.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return generic.Table{}, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return generic.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return tableFromRows(rows)
}

// tableFromRows takes the first non-blank row as the header.
func tableFromRows(rows [][]string) (generic.Table, error) {
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		header := make([]string, len(row))
		for j, h := range row {
			header[j] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		var data [][]string
		for _, r := range rows[i+1:] {
			if !isBlank(r) {
				data = append(data, r)
			}
		}
		return generic.Table{Columns: header, Rows: data}, nil
	}
	return generic.Table{}, errors.New("roster has no header row")
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
