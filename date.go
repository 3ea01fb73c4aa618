package xls

import (
	"math"
	"time"
)

// DateEpoch selects the day that serial 0 refers to.
type DateEpoch uint8

const (
	// Epoch1900 is the default system. Serial 1 is 1900-01-01 counted from 1899-12-30,
	// so serials before March 1900 keep Excel's leap-year offset.
	Epoch1900 DateEpoch = iota
	// Epoch1904 is selected by a DATEMODE record with value 1.
	Epoch1904
)

func (e DateEpoch) base() time.Time {
	if e == Epoch1904 {
		return time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	}

	return time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
}

func (e DateEpoch) String() string {
	if e == Epoch1904 {
		return "1904"
	}

	return "1900"
}

// Instant is a decoded date serial. A TimeOnly instant carries a clock
// time on the zero date (year 0, January 1), the same shape time.Parse
// produces for a layout without a date.
type Instant struct {
	Time     time.Time
	TimeOnly bool
}

const (
	secondsPerDay = 24 * 60 * 60
	msPerDay      = secondsPerDay * 1000
)

// SerialToCalendar converts an Excel date serial. Serials up to and
// including 1 are a fraction of a day with no date; larger serials are
// days since the epoch plus a fraction of a day.
func SerialToCalendar(serial float64, epoch DateEpoch) Instant {
	if serial <= 1 {
		h, m, s := timeOfDay(serial - math.Floor(serial))
		return Instant{
			Time:     time.Date(0, 1, 1, h, m, s, 0, time.UTC),
			TimeOnly: true,
		}
	}

	days := math.Floor(serial)
	h, m, s, ms := clockOfDay(serial - days)
	t := epoch.base().AddDate(0, 0, int(days))

	return Instant{Time: time.Date(t.Year(), t.Month(), t.Day(), h, m, s, ms*int(time.Millisecond), time.UTC)}
}

// timeOfDay truncates a fraction of a day to whole seconds. A fraction
// of exactly one day wraps to midnight, there being no date to carry into.
func timeOfDay(fraction float64) (int, int, int) {
	// 1e-6 absorbs representation error, e.g. 1/3 of a day is 8:00:00
	total := int(math.Floor(fraction*secondsPerDay+1e-6)) % secondsPerDay

	hours := total / 3600
	minutes := total/60 - hours*60
	seconds := total - hours*3600 - minutes*60

	return hours, minutes, seconds
}

// Return the hour, minute, second and millisecond that comprise a given
// fraction of a day. Rounding to the millisecond keeps values such as 1/3
// from landing one second short.
func clockOfDay(fraction float64) (int, int, int, int) {
	total := int64(math.Round(fraction * msPerDay))

	ms := int(total % 1000)
	total /= 1000
	seconds := int(total % 60)
	total /= 60
	minutes := int(total % 60)
	hours := int(total / 60)

	return hours, minutes, seconds, ms
}
