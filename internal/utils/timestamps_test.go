package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, time.July, 26, 18, 36, 5, 0, time.UTC)
	assert.Equal(t, "2025-07-26 18:36:05", FormatTimestamp(ts))

	assert.Nil(t, FormatOptional(nil))
	require.NotNil(t, FormatOptional(&ts))
	assert.Equal(t, "2025-07-26 18:36:05", *FormatOptional(&ts))
}

func TestParseTimestamp(t *testing.T) {
	full, err := ParseTimestamp("2025-07-26 18:36:00")
	require.NoError(t, err)
	assert.Equal(t, 18, full.Hour())

	day, err := ParseTimestamp("2025-07-26")
	require.NoError(t, err)
	assert.Equal(t, 26, day.Day())

	_, err = ParseTimestamp("26.07.2025")
	assert.Error(t, err)
}
