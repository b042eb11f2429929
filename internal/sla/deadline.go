package sla

import (
	"time"

	"github.com/spec-kit/ticket-lifecycle/internal/domain"
)

// ComputeDeadline converts a start instant plus a group SLA configuration
// into the deadline instant. The applicable duration is chosen by the
// calendar bucket of the start instant; when the start falls outside
// business hours and the config asks for a next-day start, the clock is
// anchored to the next business opening and runs for the business-hours
// allowance from there. Pure: identical inputs always yield the identical
// deadline.
func ComputeDeadline(start time.Time, cfg domain.SLAConfig, cal *Calendar) time.Time {
	bucket := cal.Classify(start)
	if bucket != BucketBusinessHours && cfg.NextDayStart {
		return cal.NextOpening(start).Add(cfg.BusinessHoursDuration())
	}
	return start.Add(durationFor(bucket, cfg))
}

func durationFor(bucket Bucket, cfg domain.SLAConfig) time.Duration {
	switch bucket {
	case BucketAfterHours:
		return cfg.AfterHoursDuration()
	case BucketWeekendBusiness:
		return cfg.WeekendBusinessDuration()
	case BucketWeekendAfterHours:
		return cfg.WeekendAfterHoursDuration()
	default:
		return cfg.BusinessHoursDuration()
	}
}
