package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoLinkPlaceholder is the literal that uploads use to mean "no code or paper link".
const NoLinkPlaceholder = "—"

// DefaultSystemType is assigned when a delimited-text upload omits the system type.
const DefaultSystemType = "Unknown"

// Entry is one leaderboard row: an AI system's benchmark results.
type Entry struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	AISystem      string    `json:"ai_system" gorm:"not null"`
	Organization  string    `json:"organization" gorm:"not null;index"`
	SystemType    string    `json:"system_type" gorm:"not null"`
	ARCAGI1       *float64  `json:"arc_agi_1"`
	ARCAGI2       *float64  `json:"arc_agi_2"`
	CostPerTask   *float64  `json:"cost_per_task"`
	CodePaperLink *string   `json:"code_paper_link"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "leaderboard_entries"
}

func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Fields returns a copy of the entry's mutable fields.
func (e *Entry) Fields() EntryFields {
	return EntryFields{
		AISystem:      e.AISystem,
		Organization:  e.Organization,
		SystemType:    e.SystemType,
		ARCAGI1:       copyFloat(e.ARCAGI1),
		ARCAGI2:       copyFloat(e.ARCAGI2),
		CostPerTask:   copyFloat(e.CostPerTask),
		CodePaperLink: copyString(e.CodePaperLink),
	}
}

// EntryFields is the mutable part of an Entry, used for inserts and updates.
type EntryFields struct {
	AISystem      string   `json:"ai_system"`
	Organization  string   `json:"organization"`
	SystemType    string   `json:"system_type"`
	ARCAGI1       *float64 `json:"arc_agi_1"`
	ARCAGI2       *float64 `json:"arc_agi_2"`
	CostPerTask   *float64 `json:"cost_per_task"`
	CodePaperLink *string  `json:"code_paper_link"`
}

func (f EntryFields) Validate() error {
	if strings.TrimSpace(f.AISystem) == "" {
		return &ValidationError{Field: "ai_system", Message: "is required"}
	}
	if strings.TrimSpace(f.Organization) == "" {
		return &ValidationError{Field: "organization", Message: "is required"}
	}
	for _, n := range []struct {
		field string
		value *float64
	}{{"arc_agi_1", f.ARCAGI1}, {"arc_agi_2", f.ARCAGI2}, {"cost_per_task", f.CostPerTask}} {
		if n.value != nil && (math.IsNaN(*n.value) || math.IsInf(*n.value, 0)) {
			return &ValidationError{Field: n.field, Message: "must be a finite number"}
		}
	}
	if f.CostPerTask != nil && *f.CostPerTask < 0 {
		return &ValidationError{Field: "cost_per_task", Message: "must be non-negative"}
	}
	return nil
}

// NewEntry builds an unsaved entry; the store assigns the id and timestamps.
func NewEntry(f EntryFields) *Entry {
	return &Entry{
		AISystem:      f.AISystem,
		Organization:  f.Organization,
		SystemType:    f.SystemType,
		ARCAGI1:       copyFloat(f.ARCAGI1),
		ARCAGI2:       copyFloat(f.ARCAGI2),
		CostPerTask:   copyFloat(f.CostPerTask),
		CodePaperLink: copyString(f.CodePaperLink),
	}
}

// Columns maps the fields to their column names for a partial update. Nil
// pointers are kept so that an update can clear a nullable column.
func (f EntryFields) Columns() map[string]interface{} {
	return map[string]interface{}{
		"ai_system":       f.AISystem,
		"organization":    f.Organization,
		"system_type":     f.SystemType,
		"arc_agi_1":       f.ARCAGI1,
		"arc_agi_2":       f.ARCAGI2,
		"cost_per_task":   f.CostPerTask,
		"code_paper_link": f.CodePaperLink,
	}
}

func Float(v float64) *float64 {
	return &v
}

func String(v string) *string {
	return &v
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
