package leaderboard

import (
	"fmt"
	"strings"
)

// Field is a sortable entry column.
type Field string

const (
	FieldAISystem     Field = "ai_system"
	FieldOrganization Field = "organization"
	FieldSystemType   Field = "system_type"
	FieldARCAGI1      Field = "arc_agi_1"
	FieldARCAGI2      Field = "arc_agi_2"
	FieldCostPerTask  Field = "cost_per_task"
)

var fields = []Field{
	FieldAISystem, FieldOrganization, FieldSystemType,
	FieldARCAGI1, FieldARCAGI2, FieldCostPerTask,
}

func Fields() []Field {
	return append([]Field(nil), fields...)
}

func (f Field) Numeric() bool {
	switch f {
	case FieldARCAGI1, FieldARCAGI2, FieldCostPerTask:
		return true
	}
	return false
}

func ParseField(value string) (Field, error) {
	v := Field(strings.ToLower(strings.TrimSpace(value)))
	for _, f := range fields {
		if f == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", value)
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

func ParseDirection(value string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", value)
}

func (d Direction) Flip() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// Sort is the column-header sort state.
type Sort struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

// DefaultSort ranks by ARC-AGI-1, best first.
var DefaultSort = Sort{Field: FieldARCAGI1, Direction: Descending}

// Toggle is a click on a column header: the active column flips direction,
// any other column becomes active in descending order.
func (s Sort) Toggle(field Field) Sort {
	if field == s.Field {
		return Sort{Field: field, Direction: s.Direction.Flip()}
	}
	return Sort{Field: field, Direction: Descending}
}

// ParseSort reads a field and direction, falling back to DefaultSort for
// blank values. A blank direction with an explicit field means descending.
func ParseSort(field, direction string) (Sort, error) {
	s := DefaultSort
	if strings.TrimSpace(field) != "" {
		f, err := ParseField(field)
		if err != nil {
			return Sort{}, err
		}
		s = Sort{Field: f, Direction: Descending}
	}
	if strings.TrimSpace(direction) != "" {
		d, err := ParseDirection(direction)
		if err != nil {
			return Sort{}, err
		}
		s.Direction = d
	}
	return s, nil
}
