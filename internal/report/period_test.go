package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindWeekly, kind)

	kind, err = ParseKind("weekly")
	require.NoError(t, err)
	assert.Equal(t, KindWeekly, kind)

	kind, err = ParseKind("monthly")
	require.NoError(t, err)
	assert.Equal(t, KindMonthly, kind)

	_, err = ParseKind("yearly")
	assert.Error(t, err)
}

func TestOnDemandWeeklyWindow(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		start time.Time
		end   time.Time
	}{
		{
			// 2024-03-13 is a Wednesday; the window starts on the most
			// recent Sunday.
			name:  "mid-week",
			today: day(2024, time.March, 13),
			start: day(2024, time.March, 10),
			end:   day(2024, time.March, 16),
		},
		{
			name:  "monday",
			today: day(2024, time.March, 11),
			start: day(2024, time.March, 10),
			end:   day(2024, time.March, 16),
		},
		{
			// On a Sunday the rule reaches back to the previous Sunday.
			name:  "sunday",
			today: day(2024, time.March, 10),
			start: day(2024, time.March, 3),
			end:   day(2024, time.March, 9),
		},
		{
			name:  "saturday",
			today: day(2024, time.March, 16),
			start: day(2024, time.March, 10),
			end:   day(2024, time.March, 16),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := OnDemandWindow(tt.today, KindWeekly)
			assert.Equal(t, tt.start, win.Start)
			assert.Equal(t, tt.end, win.End)
			assert.Equal(t, win.Start.AddDate(0, 0, 6), win.End)
		})
	}
}

func TestOnDemandMonthlyWindow(t *testing.T) {
	tests := []struct {
		name  string
		today time.Time
		start time.Time
		end   time.Time
	}{
		{
			name:  "leap february",
			today: day(2024, time.February, 15),
			start: day(2024, time.February, 1),
			end:   day(2024, time.February, 29),
		},
		{
			name:  "december",
			today: day(2023, time.December, 10),
			start: day(2023, time.December, 1),
			end:   day(2023, time.December, 31),
		},
		{
			name:  "thirty day month",
			today: day(2024, time.April, 1),
			start: day(2024, time.April, 1),
			end:   day(2024, time.April, 30),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := OnDemandWindow(tt.today, KindMonthly)
			assert.Equal(t, tt.start, win.Start)
			assert.Equal(t, tt.end, win.End)
		})
	}
}

func TestScheduledWeeklyWindow(t *testing.T) {
	// Trailing 7 days, independent of weekday alignment.
	win := ScheduledWeeklyWindow(day(2024, time.March, 13))
	assert.Equal(t, day(2024, time.March, 6), win.Start)
	assert.Equal(t, day(2024, time.March, 13), win.End)
}

func TestScheduledMonthlyWindow(t *testing.T) {
	win := ScheduledMonthlyWindow(day(2024, time.April, 30))
	assert.Equal(t, day(2024, time.April, 1), win.Start)
	assert.Equal(t, day(2024, time.April, 30), win.End)
}

func TestMonthlyDue(t *testing.T) {
	tests := []struct {
		today time.Time
		due   bool
	}{
		{day(2024, time.April, 30), true},
		{day(2024, time.April, 29), false},
		{day(2024, time.February, 29), true},
		{day(2024, time.February, 28), false},
		{day(2023, time.February, 28), true},
		{day(2024, time.December, 31), true},
		{day(2024, time.December, 1), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.due, MonthlyDue(tt.today), "today=%s", tt.today.Format("2006-01-02"))
	}
}

func TestWindowFilename(t *testing.T) {
	win := Window{Start: day(2024, time.March, 10), End: day(2024, time.March, 16)}
	assert.Equal(t, "report_weekly_2024-03-10_2024-03-16.pdf", win.Filename(KindWeekly))
	assert.Equal(t, "report_monthly_2024-03-10_2024-03-16.pdf", win.Filename(KindMonthly))
}
