package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrozenMovesOnlyWhenTold(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	c := Freeze(time.Date(2024, 12, 31, 23, 0, 0, 0, ist))

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.Equal(t, 2024, c.Now().Year())

	c.Advance(2 * time.Hour)
	assert.Equal(t, time.Date(2024, 12, 31, 19, 30, 0, 0, time.UTC), c.Now())

	c.Set(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2025, c.Now().Year())
}

func TestRealClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, New().Now().Location())
}
