// Package calendar provides KST-anchored day and ISO-week keys and
// time-band classification. See design doc Section 4.B.
package calendar

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// maintenanceWindowCron is "at 00:05 every Monday"; parsed once at
// package init via the standard 5-field cron parser rather than
// hand-rolling weekday/minute arithmetic for every caller.
const maintenanceWindowCron = "5 0 * * 1"

var maintenanceSchedule = mustParseCron(maintenanceWindowCron)

func mustParseCron(spec string) cron.Schedule {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		panic("calendar: invalid maintenance window cron expression: " + err.Error())
	}
	return sched
}

// KST is Korea Standard Time, UTC+09:00, the canonical calendar for all
// day/week boundaries in this system.
var KST = time.FixedZone("KST", 9*3600)

// Band is a coarse time-of-day bucket used by the presence rotator.
type Band int

const (
	BandNight Band = iota
	BandMorning
	BandDay
	BandEvening
)

func (b Band) String() string {
	switch b {
	case BandNight:
		return "night"
	case BandMorning:
		return "morning"
	case BandDay:
		return "day"
	case BandEvening:
		return "evening"
	default:
		return "unknown"
	}
}

// Now returns the current time in KST.
func Now() time.Time {
	return time.Now().In(KST)
}

// TodayYMD returns today's date in KST as "YYYY-MM-DD".
func TodayYMD() string {
	return YMD(Now())
}

// YMD formats t (any zone) as a KST "YYYY-MM-DD" string.
func YMD(t time.Time) string {
	t = t.In(KST)
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
}

// ParseYMD parses a "YYYY-MM-DD" string into a KST midnight time.
func ParseYMD(ymd string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", ymd, KST)
}

// WeekKeyFromYMD returns the ISO-8601 week key ("YYYY-Www", Monday-start)
// containing the given calendar day.
func WeekKeyFromYMD(ymd string) (string, error) {
	t, err := ParseYMD(ymd)
	if err != nil {
		return "", err
	}
	return WeekKey(t), nil
}

// WeekKey returns the ISO week key for t.
func WeekKey(t time.Time) string {
	year, week := t.In(KST).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeekYMDsFromWeekKey returns the seven calendar days (Mon..Sun) that make
// up the given ISO week key.
func WeekYMDsFromWeekKey(weekKey string) ([7]string, error) {
	var out [7]string
	var year, week int
	if _, err := fmt.Sscanf(weekKey, "%04d-W%02d", &year, &week); err != nil {
		return out, fmt.Errorf("parse week key %q: %w", weekKey, err)
	}

	// Jan 4th is always in ISO week 1; walk to the Monday of that week,
	// then add (week-1) weeks.
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, KST)
	offset := int(jan4.Weekday())
	if offset == 0 {
		offset = 7 // Sunday
	}
	monday := jan4.AddDate(0, 0, -(offset - 1))
	monday = monday.AddDate(0, 0, (week-1)*7)

	for i := 0; i < 7; i++ {
		out[i] = YMD(monday.AddDate(0, 0, i))
	}
	return out, nil
}

// TimeBand classifies now into {night, morning, day, evening} per §4.B:
// night 00-06, morning 07-11, day 12-17, evening 18-23.
func TimeBand(now time.Time) Band {
	h := now.In(KST).Hour()
	switch {
	case h >= 0 && h < 7:
		return BandNight
	case h >= 7 && h < 12:
		return BandMorning
	case h >= 12 && h < 18:
		return BandDay
	default:
		return BandEvening
	}
}

// maintenanceWindowSpan is how long after the cron-scheduled moment the
// window stays open, giving the 10-minute report ticker several chances
// to observe it even if a tick is missed.
const maintenanceWindowSpan = 50 * time.Minute

// IsMondayMaintenanceWindow reports whether now falls within the weekly
// maintenance window (Monday 00:05 KST plus maintenanceWindowSpan),
// driven by the standard 5-field cron schedule in maintenanceWindowCron
// rather than hand-rolled weekday/minute arithmetic.
func IsMondayMaintenanceWindow(now time.Time) bool {
	t := now.In(KST)
	fired := maintenanceSchedule.Next(t.Add(-maintenanceWindowSpan))
	return !fired.After(t)
}

// PreviousWeekKey returns the week key for the ISO week preceding now's.
func PreviousWeekKey(now time.Time) string {
	return WeekKey(now.In(KST).AddDate(0, 0, -7))
}
