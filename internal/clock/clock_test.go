package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)
	require.Equal(t, start, c.Now())

	c.Advance(90 * time.Minute)
	require.Equal(t, start.Add(90*time.Minute), c.Now())

	c.Set(start)
	c.AdvanceToNextDay()
	require.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), c.Now())
}
