package domain

import "time"

// SLAConfig holds the per-group SLA durations, one per calendar bucket,
// stored in minutes. NextDayStart anchors the clock to the next business
// opening when a ticket arrives outside business hours. Read-only to the
// engine; managed by group configuration elsewhere.
type SLAConfig struct {
	ID                   string
	TenantID             string
	GroupID              string
	BusinessHoursSLA     int
	AfterHoursSLA        int
	WeekendBusinessSLA   int
	WeekendAfterHoursSLA int
	NextDayStart         bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Duration returns the configured duration for the given number of minutes.
func minutesToDuration(minutes int) time.Duration {
	return time.Duration(minutes) * time.Minute
}

// BusinessHoursDuration returns the weekday business-hours allowance.
func (c SLAConfig) BusinessHoursDuration() time.Duration {
	return minutesToDuration(c.BusinessHoursSLA)
}

// AfterHoursDuration returns the weekday after-hours allowance.
func (c SLAConfig) AfterHoursDuration() time.Duration {
	return minutesToDuration(c.AfterHoursSLA)
}

// WeekendBusinessDuration returns the weekend business-hours allowance.
func (c SLAConfig) WeekendBusinessDuration() time.Duration {
	return minutesToDuration(c.WeekendBusinessSLA)
}

// WeekendAfterHoursDuration returns the weekend after-hours allowance.
func (c SLAConfig) WeekendAfterHoursDuration() time.Duration {
	return minutesToDuration(c.WeekendAfterHoursSLA)
}
