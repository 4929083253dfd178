package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToEAT(t *testing.T) {
	utc := time.Date(2026, 3, 14, 21, 30, 0, 0, time.UTC)
	eat := ToEAT(utc)

	assert.Equal(t, 0, eat.Hour(), "21:30 UTC is 00:30 next day in EAT")
	assert.Equal(t, 15, eat.Day())
	assert.True(t, eat.Equal(utc), "conversion must not shift the instant")
}

func TestStartOfDay(t *testing.T) {
	// 22:00 UTC on the 14th is already the 15th in EAT.
	utc := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	start := StartOfDay(utc)

	assert.Equal(t, 15, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())
	assert.Equal(t, EAT, start.Location())
}
