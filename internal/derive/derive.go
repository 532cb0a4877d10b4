package derive

import (
	"fmt"
	"time"
)

// EndingSoonThresholdMinutes is the single policy constant for the
// "ending soon" badge. Every surface reads it from here; the threshold is
// never duplicated at a call site.
const EndingSoonThresholdMinutes = 15

// State is the time-dependent presentation state of a listing. It is
// recomputed from the absolute expiry instant on every read and never
// persisted, so displayed remaining time cannot freeze or skew.
type State struct {
	// TimeLeftMinutes is nil when the listing has no declared expiry.
	TimeLeftMinutes *int `json:"time_left_minutes"`
	EndingSoon      bool `json:"ending_soon"`
	Expired         bool `json:"expired"`
}

// Derive computes the state of a listing expiring at expiresAt as of now.
// A nil expiresAt means no declared expiry: the listing never expires and
// is never ending soon. Remaining time rounds half-up to the nearest whole
// minute, and exactly-zero counts as expired, not "ending now".
func Derive(expiresAt *time.Time, now time.Time) State {
	if expiresAt == nil {
		return State{}
	}
	minutes := roundMinutes(expiresAt.Sub(now))
	st := State{TimeLeftMinutes: &minutes}
	if minutes <= 0 {
		st.Expired = true
		return st
	}
	st.EndingSoon = minutes <= EndingSoonThresholdMinutes
	return st
}

// roundMinutes rounds a duration to whole minutes, half-up.
func roundMinutes(d time.Duration) int {
	seconds := d.Seconds()
	if seconds >= 0 {
		return int((seconds + 30) / 60)
	}
	return -int((-seconds + 29) / 60)
}

// FormatTimeLeft renders a state's remaining time the way the cards show
// it ("45 mins", "1 min"). Listings with no declared expiry render empty.
func FormatTimeLeft(st State) string {
	if st.TimeLeftMinutes == nil || st.Expired {
		return ""
	}
	if *st.TimeLeftMinutes == 1 {
		return "1 min"
	}
	return fmt.Sprintf("%d mins", *st.TimeLeftMinutes)
}

// FormatAvailableUntil renders the absolute expiry for the detail panel
// ("5:00 PM"). Empty when there is no declared expiry.
func FormatAvailableUntil(expiresAt *time.Time) string {
	if expiresAt == nil {
		return ""
	}
	return expiresAt.Format("3:04 PM")
}
