package leaderboard_test

import (
	"testing"

	"github.com/dom/leaderboard-dashboard/internal/leaderboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSort_Toggle(t *testing.T) {
	tests := []struct {
		name  string
		start leaderboard.Sort
		click leaderboard.Field
		want  leaderboard.Sort
	}{
		{
			name:  "same field flips descending to ascending",
			start: leaderboard.DefaultSort,
			click: leaderboard.FieldARCAGI1,
			want:  leaderboard.Sort{Field: leaderboard.FieldARCAGI1, Direction: leaderboard.Ascending},
		},
		{
			name:  "same field flips ascending to descending",
			start: leaderboard.Sort{Field: leaderboard.FieldAISystem, Direction: leaderboard.Ascending},
			click: leaderboard.FieldAISystem,
			want:  leaderboard.Sort{Field: leaderboard.FieldAISystem, Direction: leaderboard.Descending},
		},
		{
			name:  "new field resets to descending",
			start: leaderboard.Sort{Field: leaderboard.FieldAISystem, Direction: leaderboard.Ascending},
			click: leaderboard.FieldCostPerTask,
			want:  leaderboard.Sort{Field: leaderboard.FieldCostPerTask, Direction: leaderboard.Descending},
		},
		{
			name:  "new field from descending stays descending",
			start: leaderboard.DefaultSort,
			click: leaderboard.FieldOrganization,
			want:  leaderboard.Sort{Field: leaderboard.FieldOrganization, Direction: leaderboard.Descending},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.Toggle(tt.click))
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		direction string
		want      leaderboard.Sort
		wantErr   bool
	}{
		{name: "blank uses default", want: leaderboard.DefaultSort},
		{name: "field only", field: "organization", want: leaderboard.Sort{Field: leaderboard.FieldOrganization, Direction: leaderboard.Descending}},
		{name: "field and direction", field: "ARC_AGI_2", direction: "asc", want: leaderboard.Sort{Field: leaderboard.FieldARCAGI2, Direction: leaderboard.Ascending}},
		{name: "direction only", direction: "ascending", want: leaderboard.Sort{Field: leaderboard.FieldARCAGI1, Direction: leaderboard.Ascending}},
		{name: "unknown field", field: "id", wantErr: true},
		{name: "unknown direction", field: "ai_system", direction: "up", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := leaderboard.ParseSort(tt.field, tt.direction)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
