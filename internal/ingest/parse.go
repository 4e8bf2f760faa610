package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ParseError reports an upload whose content could not be read. Nothing
// from such a file is inserted.
type ParseError struct {
	Filename string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Filename, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var ErrUnsupportedFormat = errors.New("unsupported file type, expected .json, .csv or .xlsx")

// Parse turns an uploaded file into entry records, choosing the format by
// extension.
func Parse(filename string, data []byte) ([]domain.EntryFields, error) {
	var (
		records []domain.EntryFields
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		records, err = parseJSON(data)
	case ".csv":
		records = parseCSV(data)
	case ".xlsx":
		records, err = parseXLSX(data)
	default:
		err = ErrUnsupportedFormat
	}
	if err != nil {
		return nil, &ParseError{Filename: filename, Err: err}
	}
	return records, nil
}

type table struct {
	Headers []string            `json:"headers"`
	Rows    [][]json.RawMessage `json:"rows"`
}

func parseJSON(data []byte) ([]domain.EntryFields, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return parseObjects(trimmed)
	}

	var t table
	if err := json.Unmarshal(trimmed, &t); err != nil {
		return nil, err
	}
	if t.Headers == nil || t.Rows == nil {
		return nil, errors.New(`expected an array of entries or an object with "headers" and "rows"`)
	}

	records := make([]domain.EntryFields, 0, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, raw := range row {
			cell, err := cellText(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, j+1, err)
			}
			cells[j] = cell
		}
		records = append(records, fromRow(cells, ""))
	}
	return records, nil
}

// cellText accepts string, number and null cells.
func cellText(raw json.RawMessage) (string, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unexpected cell value %s", string(raw))
	}
}

// object is an already-shaped entry. Scores may be numbers or strings.
type object struct {
	AISystem      string          `json:"ai_system"`
	Organization  string          `json:"organization"`
	SystemType    string          `json:"system_type"`
	ARCAGI1       json.RawMessage `json:"arc_agi_1"`
	ARCAGI2       json.RawMessage `json:"arc_agi_2"`
	CostPerTask   json.RawMessage `json:"cost_per_task"`
	CodePaperLink *string         `json:"code_paper_link"`
}

func parseObjects(data []byte) ([]domain.EntryFields, error) {
	var objects []object
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, err
	}

	records := make([]domain.EntryFields, 0, len(objects))
	for i, o := range objects {
		f := domain.EntryFields{
			AISystem:     strings.TrimSpace(o.AISystem),
			Organization: strings.TrimSpace(o.Organization),
			SystemType:   strings.TrimSpace(o.SystemType),
		}
		var err error
		if f.ARCAGI1, err = objectNumber(o.ARCAGI1, percent); err != nil {
			return nil, fmt.Errorf("entry %d arc_agi_1: %w", i+1, err)
		}
		if f.ARCAGI2, err = objectNumber(o.ARCAGI2, percent); err != nil {
			return nil, fmt.Errorf("entry %d arc_agi_2: %w", i+1, err)
		}
		if f.CostPerTask, err = objectNumber(o.CostPerTask, cost); err != nil {
			return nil, fmt.Errorf("entry %d cost_per_task: %w", i+1, err)
		}
		if o.CodePaperLink != nil {
			f.CodePaperLink = link(*o.CodePaperLink)
		}
		records = append(records, f)
	}
	return records, nil
}

// objectNumber keeps absent and null values null and coerces strings with
// the tabular rules.
func objectNumber(raw json.RawMessage, coerce func(string) *float64) (*float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	text, err := cellText(raw)
	if err != nil {
		return nil, err
	}
	if text == "" && string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	return coerce(text), nil
}

// parseCSV splits on newlines and commas without quoting rules, so values
// cannot contain commas. The header line is skipped, as are blank lines.
func parseCSV(data []byte) []domain.EntryFields {
	lines := strings.Split(string(data), "\n")
	if len(lines) <= 1 {
		return nil
	}

	var records []domain.EntryFields
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, fromRow(strings.Split(line, ","), domain.DefaultSystemType))
	}
	return records
}

// parseXLSX reads the first sheet with the same layout as the CSV format.
func parseXLSX(data []byte) ([]domain.EntryFields, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	var records []domain.EntryFields
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		records = append(records, fromRow(row, domain.DefaultSystemType))
	}
	return records, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
