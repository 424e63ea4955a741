package timezone

import (
	"sync/atomic"
	"time"
)

var display atomic.Pointer[time.Location]

func init() {
	display.Store(time.UTC)
}

// SetDisplay configures the operator-facing display timezone. Stored
// and compared instants are always UTC; the display location is only
// used when formatting for humans.
func SetDisplay(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	display.Store(loc)
	return nil
}

func Display() *time.Location {
	return display.Load()
}

// scheduling arithmetic used to happen in server-local time, which
// silently broke whenever a deployment landed in a different timezone
// than the one the library site reported expirations in. everything
// internal goes through this instead of time.Now.
func Now() time.Time {
	return time.Now().UTC()
}

// Format renders a stored UTC instant in the display timezone.
func Format(t time.Time) string {
	return t.In(Display()).Format("Jan 2, 2006 at 3:04 PM MST")
}
