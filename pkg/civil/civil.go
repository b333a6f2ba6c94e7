// Package civil converts signed Unix second counts to proleptic Gregorian
// calendar fields and back using integer arithmetic only.
//
// The day-count conversion follows the era decomposition described in
// http://howardhinnant.github.io/date_algorithms.html: 400-year eras of
// 146097 days, with years starting on March 1st so that the leap day is the
// last day of the internal year.
package civil

import (
	"fmt"

	"github.com/maximewewer/leontp-stats/pkg/mathutil"
)

const (
	secondsPerDay    = 86_400
	secondsPerHour   = 3_600
	secondsPerMinute = 60

	// daysPerEra is the length of one 400-year Gregorian cycle
	daysPerEra = 146_097

	// epochShift moves day 0 from 1970-01-01 to 0000-03-01
	epochShift = 719_468
)

// Timestamp is a UTC calendar date and time of day.
type Timestamp struct {
	Year   int64
	Month  int // 1-12
	Day    int // 1-31
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// FromUnix converts seconds since 1970-01-01T00:00:00Z to calendar fields.
// It is defined for every int64 input, including negative ones.
func FromUnix(sec int64) Timestamp {
	days := mathutil.EuclidDiv(sec, secondsPerDay)
	rem := mathutil.EuclidMod(sec, secondsPerDay)

	y, m, d := FromDays(days)
	return Timestamp{
		Year:   y,
		Month:  m,
		Day:    d,
		Hour:   int(rem / secondsPerHour),
		Minute: int(rem % secondsPerHour / secondsPerMinute),
		Second: int(rem % secondsPerMinute),
	}
}

// FromDays converts a day count relative to 1970-01-01 to year, month and day.
func FromDays(days int64) (year int64, month, day int) {
	z := days + epochShift
	era := mathutil.EuclidDiv(z, daysPerEra)
	doe := z - era*daysPerEra                                // [0, 146096]
	yoe := (doe - doe/1460 + doe/36_524 - doe/146_096) / 365 // [0, 399]
	doy := doe - (365*yoe + yoe/4 - yoe/100)                 // [0, 365]
	mp := (5*doy + 2) / 153                                  // [0, 11], 0 = March
	day = int(doy - (153*mp+2)/5 + 1)                        // [1, 31]

	if mp < 10 {
		month = int(mp + 3)
	} else {
		month = int(mp - 9)
	}

	year = yoe + era*400
	if month <= 2 {
		year++
	}
	return year, month, day
}

// ToDays converts a calendar date to a day count relative to 1970-01-01.
// It is the inverse of FromDays.
func ToDays(year int64, month, day int) int64 {
	y := year
	if month <= 2 {
		y--
	}
	era := mathutil.EuclidDiv(y, 400)
	yoe := y - era*400

	var mp int64
	if month > 2 {
		mp = int64(month - 3)
	} else {
		mp = int64(month + 9)
	}
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*daysPerEra + doe - epochShift
}

// Unix returns the number of seconds since 1970-01-01T00:00:00Z.
func (t Timestamp) Unix() int64 {
	return ToDays(t.Year, t.Month, t.Day)*secondsPerDay +
		int64(t.Hour)*secondsPerHour +
		int64(t.Minute)*secondsPerMinute +
		int64(t.Second)
}

// String formats the timestamp as "YYYY-MM-DD hh:mm:ss".
func (t Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// Format formats the timestamp with a nanosecond fraction appended,
// "YYYY-MM-DD hh:mm:ss.nnnnnnnnn". The fraction never carries into the
// integer fields.
func (t Timestamp) Format(nanos int64) string {
	return fmt.Sprintf("%s.%09d", t.String(), nanos)
}
