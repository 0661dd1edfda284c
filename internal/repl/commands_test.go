package repl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 11, 14, 30, 0, 0, time.Local)

func TestSplitWhenWithSeparator(t *testing.T) {
	dueAt, desc, err := splitWhen("tomorrow 9am | take out bins", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 12, 9, 0, 0, 0, time.Local), dueAt)
	assert.Equal(t, "take out bins", desc)
}

func TestSplitWhenGreedyPrefix(t *testing.T) {
	dueAt, desc, err := splitWhen("tomorrow 9am take out bins", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 12, 9, 0, 0, 0, time.Local), dueAt)
	assert.Equal(t, "take out bins", desc)

	dueAt, desc, err = splitWhen("in 20 minutes stretch", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(20*time.Minute), dueAt)
	assert.Equal(t, "stretch", desc)
}

func TestSplitWhenNoTime(t *testing.T) {
	_, _, err := splitWhen("call the dentist sometime", now)
	assert.Error(t, err)
}

func TestSplitWhenBadExpression(t *testing.T) {
	_, _, err := splitWhen("25:00 | impossible", now)
	assert.Error(t, err)
}
