package sla

import "time"

// Bucket classifies an instant for SLA duration selection. Exactly one
// bucket applies to any instant.
type Bucket string

const (
	BucketBusinessHours     Bucket = "BUSINESS_HOURS"
	BucketAfterHours        Bucket = "AFTER_HOURS"
	BucketWeekendBusiness   Bucket = "WEEKEND_BUSINESS"
	BucketWeekendAfterHours Bucket = "WEEKEND_AFTER_HOURS"
)

// Calendar classifies instants against a tenant-local business-hours window
// and a weekend day set. Holidays classify like weekend days. All methods
// are pure; the calendar itself holds no clock.
type Calendar struct {
	location  *time.Location
	startHour int
	endHour   int
	weekend   map[time.Weekday]bool
	holidays  map[string]bool
}

// CalendarOptions configures a Calendar.
type CalendarOptions struct {
	Location    *time.Location
	StartHour   int
	EndHour     int
	WeekendDays []time.Weekday
	Holidays    []string // dates in 2006-01-02 form, tenant-local
}

// NewCalendar builds a Calendar, defaulting to UTC, 09:00-18:00 and a
// Saturday/Sunday weekend when options are left zero.
func NewCalendar(opts CalendarOptions) *Calendar {
	cal := &Calendar{
		location:  opts.Location,
		startHour: opts.StartHour,
		endHour:   opts.EndHour,
		weekend:   make(map[time.Weekday]bool),
		holidays:  make(map[string]bool),
	}
	if cal.location == nil {
		cal.location = time.UTC
	}
	if cal.endHour <= cal.startHour {
		cal.startHour = 9
		cal.endHour = 18
	}
	if len(opts.WeekendDays) == 0 {
		opts.WeekendDays = []time.Weekday{time.Saturday, time.Sunday}
	}
	for _, day := range opts.WeekendDays {
		cal.weekend[day] = true
	}
	for _, date := range opts.Holidays {
		cal.holidays[date] = true
	}
	return cal
}

// Classify returns the bucket the instant falls into.
func (c *Calendar) Classify(t time.Time) Bucket {
	local := t.In(c.location)
	offDay := c.isOffDay(local)
	inWindow := c.inBusinessWindow(local)
	switch {
	case offDay && inWindow:
		return BucketWeekendBusiness
	case offDay:
		return BucketWeekendAfterHours
	case inWindow:
		return BucketBusinessHours
	default:
		return BucketAfterHours
	}
}

// IsBusinessHours reports whether the instant is inside the weekday
// business window.
func (c *Calendar) IsBusinessHours(t time.Time) bool {
	return c.Classify(t) == BucketBusinessHours
}

// NextOpening returns the next business-day opening strictly usable as an
// SLA anchor: the opening of the same day if the instant precedes it on a
// working day, otherwise the opening of the next working day.
func (c *Calendar) NextOpening(t time.Time) time.Time {
	local := t.In(c.location)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), c.startHour, 0, 0, 0, c.location)
	if c.isOffDay(local) || !local.Before(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	for c.isOffDay(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

func (c *Calendar) isOffDay(local time.Time) bool {
	if c.weekend[local.Weekday()] {
		return true
	}
	return c.holidays[local.Format("2006-01-02")]
}

func (c *Calendar) inBusinessWindow(local time.Time) bool {
	hour := local.Hour()
	return hour >= c.startHour && hour < c.endHour
}
