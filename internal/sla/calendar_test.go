package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultCalendar(t *testing.T) *Calendar {
	t.Helper()
	return NewCalendar(CalendarOptions{StartHour: 9, EndHour: 18})
}

func TestClassify(t *testing.T) {
	cal := defaultCalendar(t)

	tests := []struct {
		name    string
		instant time.Time
		want    Bucket
	}{
		{
			name:    "wednesday morning inside window",
			instant: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC),
			want:    BucketBusinessHours,
		},
		{
			name:    "wednesday last business hour",
			instant: time.Date(2024, 3, 20, 17, 59, 0, 0, time.UTC),
			want:    BucketBusinessHours,
		},
		{
			name:    "wednesday at closing is after hours",
			instant: time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC),
			want:    BucketAfterHours,
		},
		{
			name:    "wednesday evening",
			instant: time.Date(2024, 3, 20, 20, 0, 0, 0, time.UTC),
			want:    BucketAfterHours,
		},
		{
			name:    "wednesday before opening",
			instant: time.Date(2024, 3, 20, 8, 59, 0, 0, time.UTC),
			want:    BucketAfterHours,
		},
		{
			name:    "saturday inside window",
			instant: time.Date(2024, 3, 23, 11, 0, 0, 0, time.UTC),
			want:    BucketWeekendBusiness,
		},
		{
			name:    "sunday night",
			instant: time.Date(2024, 3, 24, 23, 0, 0, 0, time.UTC),
			want:    BucketWeekendAfterHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.Classify(tt.instant))
		})
	}
}

func TestClassifyHoliday(t *testing.T) {
	cal := NewCalendar(CalendarOptions{
		StartHour: 9,
		EndHour:   18,
		Holidays:  []string{"2024-03-20"},
	})

	// A holiday Wednesday classifies like a weekend day.
	assert.Equal(t, BucketWeekendBusiness, cal.Classify(time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, BucketWeekendAfterHours, cal.Classify(time.Date(2024, 3, 20, 20, 0, 0, 0, time.UTC)))
}

func TestClassifyTenantLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)
	cal := NewCalendar(CalendarOptions{Location: loc, StartHour: 9, EndHour: 18})

	// 07:00 UTC is 10:00 in Istanbul (UTC+3).
	assert.Equal(t, BucketBusinessHours, cal.Classify(time.Date(2024, 3, 20, 7, 0, 0, 0, time.UTC)))
	// 16:00 UTC is 19:00 in Istanbul.
	assert.Equal(t, BucketAfterHours, cal.Classify(time.Date(2024, 3, 20, 16, 0, 0, 0, time.UTC)))
}

func TestNextOpening(t *testing.T) {
	cal := defaultCalendar(t)

	tests := []struct {
		name    string
		instant time.Time
		want    time.Time
	}{
		{
			name:    "evening rolls to next morning",
			instant: time.Date(2024, 3, 20, 20, 0, 0, 0, time.UTC),
			want:    time.Date(2024, 3, 21, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "early morning opens same day",
			instant: time.Date(2024, 3, 20, 6, 30, 0, 0, time.UTC),
			want:    time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "friday evening skips the weekend",
			instant: time.Date(2024, 3, 22, 19, 0, 0, 0, time.UTC),
			want:    time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "saturday skips to monday",
			instant: time.Date(2024, 3, 23, 10, 0, 0, 0, time.UTC),
			want:    time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC),
		},
		{
			name:    "exactly at opening rolls forward",
			instant: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC),
			want:    time.Date(2024, 3, 21, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(cal.NextOpening(tt.instant)),
				"got %v, want %v", cal.NextOpening(tt.instant), tt.want)
		})
	}
}

func TestNextOpeningSkipsHolidays(t *testing.T) {
	cal := NewCalendar(CalendarOptions{
		StartHour: 9,
		EndHour:   18,
		Holidays:  []string{"2024-03-21"},
	})

	got := cal.NextOpening(time.Date(2024, 3, 20, 20, 0, 0, 0, time.UTC))
	assert.True(t, time.Date(2024, 3, 22, 9, 0, 0, 0, time.UTC).Equal(got), "got %v", got)
}
