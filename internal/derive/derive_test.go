package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestDerive_NoDeclaredExpiry(t *testing.T) {
	st := Derive(nil, now)
	assert.Nil(t, st.TimeLeftMinutes)
	assert.False(t, st.EndingSoon)
	assert.False(t, st.Expired)

	// Never expires, regardless of elapsed time
	st = Derive(nil, now.Add(1000*time.Hour))
	assert.False(t, st.Expired)
}

func TestDerive_ExpiryBoundary(t *testing.T) {
	// Exactly at the expiry instant: zero minutes, expired (not "ending now")
	st := Derive(at(0), now)
	require.NotNil(t, st.TimeLeftMinutes)
	assert.Equal(t, 0, *st.TimeLeftMinutes)
	assert.True(t, st.Expired)
	assert.False(t, st.EndingSoon)

	// One second past
	st = Derive(at(-time.Second), now)
	assert.True(t, st.Expired)
}

func TestDerive_EndingSoon(t *testing.T) {
	st := Derive(at(10*time.Minute), now)
	require.NotNil(t, st.TimeLeftMinutes)
	assert.Equal(t, 10, *st.TimeLeftMinutes)
	assert.True(t, st.EndingSoon)
	assert.False(t, st.Expired)

	// Exactly at the threshold still counts
	st = Derive(at(15*time.Minute), now)
	assert.True(t, st.EndingSoon)

	// Just over the threshold does not
	st = Derive(at(16*time.Minute), now)
	assert.False(t, st.EndingSoon)
	assert.False(t, st.Expired)
}

func TestDerive_RoundHalfUp(t *testing.T) {
	// 90s rounds up to 2 minutes
	st := Derive(at(90*time.Second), now)
	require.NotNil(t, st.TimeLeftMinutes)
	assert.Equal(t, 2, *st.TimeLeftMinutes)

	// 89s rounds down to 1 minute
	st = Derive(at(89*time.Second), now)
	assert.Equal(t, 1, *st.TimeLeftMinutes)

	// 30s rounds up to 1 minute: still alive
	st = Derive(at(30*time.Second), now)
	assert.Equal(t, 1, *st.TimeLeftMinutes)
	assert.False(t, st.Expired)

	// 29s rounds to 0: expired
	st = Derive(at(29*time.Second), now)
	assert.Equal(t, 0, *st.TimeLeftMinutes)
	assert.True(t, st.Expired)
}

func TestFormatTimeLeft(t *testing.T) {
	assert.Equal(t, "45 mins", FormatTimeLeft(Derive(at(45*time.Minute), now)))
	assert.Equal(t, "1 min", FormatTimeLeft(Derive(at(1*time.Minute), now)))
	assert.Equal(t, "", FormatTimeLeft(Derive(nil, now)))
	assert.Equal(t, "", FormatTimeLeft(Derive(at(-time.Minute), now)))
}

func TestFormatAvailableUntil(t *testing.T) {
	assert.Equal(t, "5:00 PM", FormatAvailableUntil(at(5*time.Hour)))
	assert.Equal(t, "", FormatAvailableUntil(nil))
}
