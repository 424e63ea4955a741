package renewal

import (
	"fmt"
	"time"

	"github.com/egyptiangio/newspaparr/services/renewal/classify"
)

type SchedulePolicy string

const (
	// PolicyExpiration schedules off an expiration date extracted from
	// the site itself.
	PolicyExpiration SchedulePolicy = "expiration"
	// PolicyFallback schedules a fixed interval out from the end of
	// the attempt.
	PolicyFallback SchedulePolicy = "fallback"
)

type ScheduleEntry struct {
	// RunAt is always UTC. Display conversion happens at presentation
	// time only.
	RunAt  time.Time
	Policy SchedulePolicy
}

// scheduleMargin keeps the next run strictly after the previous grant
// lapses, and clear of externally driven top-of-interval checks.
const scheduleMargin = time.Minute

const DefaultFallbackInterval = time.Hour * 24

type Scheduler struct {
	fallback time.Duration
}

func NewScheduler(fallback time.Duration) *Scheduler {
	if fallback <= 0 {
		fallback = DefaultFallbackInterval
	}
	return &Scheduler{fallback: fallback}
}

// Plan computes when the account should renew next. A successful run
// with a known expiration schedules one minute past that instant;
// everything else falls back to a fixed interval past now. An
// extracted expiration always wins over the fallback interval.
func (s *Scheduler) Plan(outcome classify.Outcome, now time.Time) ScheduleEntry {
	successful := outcome.Verdict == classify.Success ||
		outcome.Verdict == classify.SuccessWithWarning
	if successful && outcome.Expiration != nil {
		return ScheduleEntry{
			RunAt:  outcome.Expiration.UTC().Add(scheduleMargin),
			Policy: PolicyExpiration,
		}
	}
	return ScheduleEntry{
		RunAt:  now.UTC().Add(s.fallback + scheduleMargin),
		Policy: PolicyFallback,
	}
}

// EffectiveInterval renders the interval a policy produces, for
// operator display ("24h 1m" style).
func (s *Scheduler) EffectiveInterval(policy SchedulePolicy) string {
	if policy == PolicyExpiration {
		return "until expiration + 1m"
	}
	hours := int(s.fallback.Hours())
	minutes := int(s.fallback.Minutes()) - hours*60
	if minutes > 0 {
		return fmt.Sprintf("%dh %dm 1m", hours, minutes)
	}
	return fmt.Sprintf("%dh 1m", hours)
}
