package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/ingest"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(value string) (Format, error) {
	switch Format(value) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", value)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// FileName is the download name for an export taken at now, e.g.
// leaderboard-export-2025-03-14.json.
func FileName(now time.Time, f Format) string {
	return fmt.Sprintf("leaderboard-export-%s.%s", now.UTC().Format("2006-01-02"), f)
}

func Write(w io.Writer, f Format, entries []*domain.Entry) error {
	if f == FormatXLSX {
		return WriteXLSX(w, entries)
	}
	return WriteJSON(w, entries)
}

// WriteJSON writes the entries as a pretty-printed JSON array.
func WriteJSON(w io.Writer, entries []*domain.Entry) error {
	if entries == nil {
		entries = []*domain.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteXLSX writes one sheet in the upload column layout, so an exported
// workbook can be ingested again.
func WriteXLSX(w io.Writer, entries []*domain.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Leaderboard"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(ingest.Columns))
	for i, c := range ingest.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.AISystem,
			e.Organization,
			e.SystemType,
			percentCell(e.ARCAGI1),
			percentCell(e.ARCAGI2),
			costCell(e.CostPerTask),
			linkCell(e.CodePaperLink),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func percentCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "%"
}

func costCell(v *float64) string {
	if v == nil {
		return ""
	}
	return "$" + strconv.FormatFloat(*v, 'f', -1, 64)
}

func linkCell(v *string) string {
	if v == nil {
		return domain.NoLinkPlaceholder
	}
	return *v
}
