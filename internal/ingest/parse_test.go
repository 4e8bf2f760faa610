package ingest_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/dom/leaderboard-dashboard/internal/ingest"
	"github.com/dom/leaderboard-dashboard/internal/leaderboard"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParse_CSVSample(t *testing.T) {
	data := "AI System,Organization,System Type,ARC-AGI-1,ARC-AGI-2,Cost/Task,Code / Paper\n" +
		"GPT-4o,OpenAI,Base LLM,4.5%,0.0%,$0.080,link"

	got, err := ingest.Parse("upload.csv", []byte(data))
	require.NoError(t, err)

	want := []domain.EntryFields{{
		AISystem:      "GPT-4o",
		Organization:  "OpenAI",
		SystemType:    "Base LLM",
		ARCAGI1:       domain.Float(4.5),
		ARCAGI2:       domain.Float(0),
		CostPerTask:   domain.Float(0.08),
		CodePaperLink: domain.String("link"),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsed records mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_CSVCoercion(t *testing.T) {
	data := "header line is ignored\r\n" +
		"\n" +
		" Claude 3.5 , Anthropic ,, n/a ,,free,—\r\n" +
		"   \n" +
		"o3,OpenAI,CoT,75.7,4%,12,https://arcprize.org\n"

	got, err := ingest.Parse("data.CSV", []byte(data))
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Claude 3.5", first.AISystem)
	assert.Equal(t, "Anthropic", first.Organization)
	assert.Equal(t, domain.DefaultSystemType, first.SystemType)
	assert.Nil(t, first.ARCAGI1, "unparsable score is null")
	assert.Nil(t, first.ARCAGI2, "absent score is null")
	require.NotNil(t, first.CostPerTask)
	assert.Equal(t, 0.0, *first.CostPerTask, "unparsable cost is zero")
	assert.Nil(t, first.CodePaperLink, "placeholder means no link")

	second := got[1]
	assert.Equal(t, 75.7, *second.ARCAGI1)
	assert.Equal(t, 4.0, *second.ARCAGI2)
	assert.Equal(t, 12.0, *second.CostPerTask)
	assert.Equal(t, "https://arcprize.org", *second.CodePaperLink)
}

func TestParse_NonFiniteCellsAreUnparsable(t *testing.T) {
	data := "AI System,Organization,System Type,ARC-AGI-1,ARC-AGI-2,Cost/Task,Code / Paper\n" +
		"GPT-4o,OpenAI,Base LLM,NaN%,Inf%,$NaN,link\n" +
		"o3,OpenAI,CoT,-Infinity,infinity%,$Inf,link"

	got, err := ingest.Parse("board.csv", []byte(data))
	require.NoError(t, err)
	require.Len(t, got, 2)

	for _, f := range got {
		assert.Nil(t, f.ARCAGI1, f.AISystem)
		assert.Nil(t, f.ARCAGI2, f.AISystem)
		require.NotNil(t, f.CostPerTask, f.AISystem)
		assert.Equal(t, 0.0, *f.CostPerTask, f.AISystem)
		assert.NoError(t, f.Validate())
	}

	entries := make([]*domain.Entry, len(got))
	for i, f := range got {
		entries[i] = domain.NewEntry(f)
	}
	_, err = json.Marshal(leaderboard.Project(entries, leaderboard.Query{}))
	assert.NoError(t, err, "parsed records must be encodable")
}

func TestParse_JSONTableNonFiniteStrings(t *testing.T) {
	data := `{"headers":["AI System"],"rows":[["GPT-4o","OpenAI","Base LLM","NaN","4%","Infinity",""]]}`

	got, err := ingest.Parse("board.json", []byte(data))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].ARCAGI1)
	require.NotNil(t, got[0].ARCAGI2)
	assert.Equal(t, 4.0, *got[0].ARCAGI2)
	require.NotNil(t, got[0].CostPerTask)
	assert.Equal(t, 0.0, *got[0].CostPerTask)
}

func TestParse_CSVShortRow(t *testing.T) {
	got, err := ingest.Parse("x.csv", []byte("h\nOnly Name"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Only Name", got[0].AISystem)
	assert.Equal(t, "", got[0].Organization)
	assert.Nil(t, got[0].ARCAGI1)
	assert.Equal(t, 0.0, *got[0].CostPerTask)
	assert.Nil(t, got[0].CodePaperLink)
}

func TestParse_CSVHeaderOnly(t *testing.T) {
	got, err := ingest.Parse("x.csv", []byte("AI System,Organization\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParse_JSONTable(t *testing.T) {
	got, err := ingest.Parse("upload.json", []byte(ingest.SampleJSON))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Claude 3.5", got[1].AISystem)
	assert.Equal(t, "CoT", got[1].SystemType)
	assert.Equal(t, 28.6, *got[1].ARCAGI1)
	assert.Equal(t, 0.7, *got[1].ARCAGI2)
	assert.Equal(t, 0.51, *got[1].CostPerTask)
}

func TestParse_JSONTableNumericCells(t *testing.T) {
	data := `{"headers":["a"],"rows":[["o1","OpenAI",null,32,1.5,"$1.2","—"]]}`

	got, err := ingest.Parse("x.json", []byte(data))
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "", got[0].SystemType, "no default type on the structured path")
	assert.Equal(t, 32.0, *got[0].ARCAGI1)
	assert.Equal(t, 1.5, *got[0].ARCAGI2)
	assert.Equal(t, 1.2, *got[0].CostPerTask)
	assert.Nil(t, got[0].CodePaperLink)
}

func TestParse_JSONArray(t *testing.T) {
	data := `[
		{"ai_system":"o3","organization":"OpenAI","system_type":"CoT","arc_agi_1":75.7,"arc_agi_2":"4%","cost_per_task":null,"code_paper_link":"https://x"},
		{"ai_system":"Grok","organization":"xAI"}
	]`

	got, err := ingest.Parse("x.json", []byte(data))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 75.7, *got[0].ARCAGI1)
	assert.Equal(t, 4.0, *got[0].ARCAGI2)
	assert.Nil(t, got[0].CostPerTask)
	assert.Equal(t, "https://x", *got[0].CodePaperLink)
	assert.Nil(t, got[1].ARCAGI1)
	assert.Nil(t, got[1].CodePaperLink)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		wantErr  error
	}{
		{name: "malformed json", filename: "x.json", data: `{"headers": [`},
		{name: "json without rows", filename: "x.json", data: `{"headers": ["a"]}`},
		{name: "json object cell", filename: "x.json", data: `{"headers":[],"rows":[[{"a":1}]]}`},
		{name: "bad array", filename: "x.json", data: `[1, 2]`},
		{name: "not a workbook", filename: "x.xlsx", data: "plain text"},
		{name: "unknown extension", filename: "x.txt", data: "a,b", wantErr: ingest.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ingest.Parse(tt.filename, []byte(tt.data))
			assert.Nil(t, got)

			var pErr *ingest.ParseError
			require.True(t, errors.As(err, &pErr), "got %v", err)
			assert.Equal(t, tt.filename, pErr.Filename)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"AI System", "Organization", "System Type", "ARC-AGI-1", "ARC-AGI-2", "Cost/Task", "Code / Paper"},
		{"GPT-4o", "OpenAI", "Base LLM", "4.5%", "0.0%", "$0.080", "link"},
		{},
		{"Gemini", "Google", "", "12.5%", "", "", "—"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	got, err := ingest.Parse("board.xlsx", buf.Bytes())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "GPT-4o", got[0].AISystem)
	assert.Equal(t, 4.5, *got[0].ARCAGI1)
	assert.Equal(t, 0.08, *got[0].CostPerTask)
	assert.Equal(t, domain.DefaultSystemType, got[1].SystemType)
	assert.Nil(t, got[1].ARCAGI2)
	assert.Nil(t, got[1].CodePaperLink)
}
