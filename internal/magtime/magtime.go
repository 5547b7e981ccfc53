// Package magtime converts MJD2000 day numbers into the angular time arguments used by
// the magnetospheric models: fraction of the calendar year and magnetic universal time.
package magtime

import (
	"math"
	"time"
)

const (
	// secondsPerDay is the length of one MJD2000 day.
	secondsPerDay = 86400.0

	// unixDaysAtMJD2000 is the number of days between 1970-01-01 and 2000-01-01.
	unixDaysAtMJD2000 = 10957
)

// Epoch is the origin of the MJD2000 day count (2000-01-01T00:00:00Z).
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// MJD2000 converts t to a fractional day number counted from Epoch.
func MJD2000(t time.Time) float64 {
	seconds := float64(t.Unix()) + float64(t.Nanosecond())*1e-9
	return seconds/secondsPerDay - unixDaysAtMJD2000
}

// Time converts an MJD2000 day number back to a UTC instant.
func Time(mjd2000 float64) time.Time {
	seconds := (mjd2000 + unixDaysAtMJD2000) * secondsPerDay
	whole := math.Floor(seconds)
	nanos := math.Round((seconds - whole) * 1e9)
	return time.Unix(int64(whole), int64(nanos)).UTC()
}

// DecimalYear converts an MJD2000 day number to a decimal year, e.g. 2018.5.
// Leap years are respected so that January 1st of any year maps to an integer.
func DecimalYear(mjd2000 float64) float64 {
	year, fraction := splitYear(mjd2000)
	return float64(year) + fraction
}

// YearFraction returns the position of mjd2000 within its calendar year in [0, 1).
// Non-finite input yields NaN.
func YearFraction(mjd2000 float64) float64 {
	_, fraction := splitYear(mjd2000)
	return fraction
}

func splitYear(mjd2000 float64) (int, float64) {
	if math.IsNaN(mjd2000) || math.IsInf(mjd2000, 0) {
		return 0, math.NaN()
	}
	year := Time(math.Floor(mjd2000)).Year()
	start := MJD2000(time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC))
	end := MJD2000(time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC))
	return year, (mjd2000 - start) / (end - start)
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
