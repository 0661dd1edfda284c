package when

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday afternoon, fixed reference for every case.
var ref = time.Date(2025, time.June, 11, 14, 30, 0, 0, time.Local)

func TestParse(t *testing.T) {
	tests := []struct {
		expr string
		want time.Time
	}{
		{"15:30", time.Date(2025, time.June, 11, 15, 30, 0, 0, time.Local)},
		{"09:00", time.Date(2025, time.June, 12, 9, 0, 0, 0, time.Local)}, // already past, rolls forward
		{"14:30", time.Date(2025, time.June, 12, 14, 30, 0, 0, time.Local)}, // exactly now rolls forward
		{"3pm", time.Date(2025, time.June, 11, 15, 0, 0, 0, time.Local)},
		{"9:15am", time.Date(2025, time.June, 12, 9, 15, 0, 0, time.Local)},
		{"12pm", time.Date(2025, time.June, 12, 12, 0, 0, 0, time.Local)},
		{"12am", time.Date(2025, time.June, 12, 0, 0, 0, 0, time.Local)},
		{"at 16:00", time.Date(2025, time.June, 11, 16, 0, 0, 0, time.Local)},
		{"tomorrow", time.Date(2025, time.June, 12, 9, 0, 0, 0, time.Local)},
		{"tomorrow 9am", time.Date(2025, time.June, 12, 9, 0, 0, 0, time.Local)},
		{"Tomorrow 15:30", time.Date(2025, time.June, 12, 15, 30, 0, 0, time.Local)},
		{"tomorrow evening", time.Date(2025, time.June, 12, 18, 0, 0, 0, time.Local)},
		{"today 16:45", time.Date(2025, time.June, 11, 16, 45, 0, 0, time.Local)},
		{"in 20 minutes", ref.Add(20 * time.Minute)},
		{"in 90 seconds", ref.Add(90 * time.Second)},
		{"in 2h", ref.Add(2 * time.Hour)},
		{"in 3 days", ref.Add(72 * time.Hour)},
		{"tonight", time.Date(2025, time.June, 11, 21, 0, 0, 0, time.Local)},
		{"noon", time.Date(2025, time.June, 12, 12, 0, 0, 0, time.Local)}, // past for today
		{"midnight", time.Date(2025, time.June, 12, 0, 0, 0, 0, time.Local)},
		{"friday", time.Date(2025, time.June, 13, 9, 0, 0, 0, time.Local)},
		{"friday 17:00", time.Date(2025, time.June, 13, 17, 0, 0, 0, time.Local)},
		{"wednesday 9am", time.Date(2025, time.June, 18, 9, 0, 0, 0, time.Local)}, // this morning passed
		{"wednesday 16:00", time.Date(2025, time.June, 11, 16, 0, 0, 0, time.Local)},
		{"2025-12-24 18:00", time.Date(2025, time.December, 24, 18, 0, 0, 0, time.Local)},
		{"2025-12-24", time.Date(2025, time.December, 24, 0, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Parse(tt.expr, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAlwaysFuture(t *testing.T) {
	exprs := []string{"15:30", "09:00", "3pm", "noon", "tonight", "friday", "monday 9am"}
	for _, expr := range exprs {
		got, err := Parse(expr, ref)
		require.NoError(t, err)
		assert.True(t, got.After(ref), "%q resolved to %v, not after the reference", expr, got)
	}
}

func TestParseRejects(t *testing.T) {
	exprs := []string{"", "yesterday", "25:00", "12:75", "13pm", "in minutes", "today", "soonish"}
	for _, expr := range exprs {
		_, err := Parse(expr, ref)
		assert.Error(t, err, "expected %q to be rejected", expr)
	}
}
