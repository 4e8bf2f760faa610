package bulkedit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dom/leaderboard-dashboard/internal/domain"
	"github.com/google/uuid"
)

// Buffer holds the raw text of an entry being edited, exactly as typed.
type Buffer struct {
	ID            uuid.UUID `json:"id"`
	AISystem      string    `json:"ai_system"`
	Organization  string    `json:"organization"`
	SystemType    string    `json:"system_type"`
	ARCAGI1       string    `json:"arc_agi_1"`
	ARCAGI2       string    `json:"arc_agi_2"`
	CostPerTask   string    `json:"cost_per_task"`
	CodePaperLink string    `json:"code_paper_link"`
}

func newBuffer(e *domain.Entry) *Buffer {
	b := &Buffer{
		ID:           e.ID,
		AISystem:     e.AISystem,
		Organization: e.Organization,
		SystemType:   e.SystemType,
		ARCAGI1:      formatFloat(e.ARCAGI1),
		ARCAGI2:      formatFloat(e.ARCAGI2),
		CostPerTask:  formatFloat(e.CostPerTask),
	}
	if e.CodePaperLink != nil {
		b.CodePaperLink = *e.CodePaperLink
	}
	return b
}

func (b *Buffer) set(name, raw string) error {
	switch name {
	case "ai_system":
		b.AISystem = raw
	case "organization":
		b.Organization = raw
	case "system_type":
		b.SystemType = raw
	case "arc_agi_1":
		b.ARCAGI1 = raw
	case "arc_agi_2":
		b.ARCAGI2 = raw
	case "cost_per_task":
		b.CostPerTask = raw
	case "code_paper_link":
		b.CodePaperLink = raw
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

// Fields converts the buffer to typed fields. Blank optional values become
// null; anything else in a numeric field must parse as a number.
func (b *Buffer) Fields() (domain.EntryFields, error) {
	f := domain.EntryFields{
		AISystem:     strings.TrimSpace(b.AISystem),
		Organization: strings.TrimSpace(b.Organization),
		SystemType:   strings.TrimSpace(b.SystemType),
	}

	var err error
	if f.ARCAGI1, err = parseOptional("arc_agi_1", b.ARCAGI1); err != nil {
		return domain.EntryFields{}, err
	}
	if f.ARCAGI2, err = parseOptional("arc_agi_2", b.ARCAGI2); err != nil {
		return domain.EntryFields{}, err
	}
	if f.CostPerTask, err = parseOptional("cost_per_task", b.CostPerTask); err != nil {
		return domain.EntryFields{}, err
	}
	if link := strings.TrimSpace(b.CodePaperLink); link != "" {
		f.CodePaperLink = &link
	}

	if err := f.Validate(); err != nil {
		return domain.EntryFields{}, err
	}
	return f, nil
}

func parseOptional(field, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &domain.ValidationError{Field: field, Message: "must be a number"}
	}
	return &v, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
