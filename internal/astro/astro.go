// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package astro implements date-derived astronomical approximations: Julian
// day numbers, Northern Hemisphere seasons and a synodic lunar cycle anchored
// to the proleptic Gregorian ordinal.
//
// The lunar calculations are a fixed 29.53-day mathematical approximation,
// not an ephemeris. They drift from the real lunar phase over long horizons,
// which is fine for the canned-text replies they feed.
//
// All functions are pure and interpret their input in UTC.
package astro

import (
	"math"
	"time"
)

// SynodicMonth is the average period between successive new moons, in days,
// used as a fixed approximation constant.
const SynodicMonth = 29.53

// Season is a season of the year, Northern Hemisphere convention.
type Season int

// Seasons, in calendar order starting from the March equinox.
const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// String implements the fmt.Stringer interface.
func (s Season) String() string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	case Winter:
		return "Winter"
	}
	return "Unknown"
}

// Phase is a quadrant of the approximate lunar cycle.
type Phase int

// Phases, in cycle order starting from the new moon.
const (
	New Phase = iota
	Waxing
	Full
	Waning
)

// String implements the fmt.Stringer interface.
func (p Phase) String() string {
	switch p {
	case New:
		return "New"
	case Waxing:
		return "Waxing"
	case Full:
		return "Full"
	case Waning:
		return "Waning"
	}
	return "Unknown"
}

// Snapshot is the full set of calculations for a single instant. It has no
// identity beyond its values and is recomputed on every Take call.
type Snapshot struct {
	JulianDay     float64
	DayOfYear     int
	Season        Season
	LunarProgress float64 // percent of the synodic month elapsed, in [0, 100)
	Phase         Phase
	NextNewMoon   time.Time // UTC date, midnight
	NextFullMoon  time.Time // UTC date, midnight
}

// Take computes a Snapshot for the instant t.
func Take(t time.Time) Snapshot {
	return Snapshot{
		JulianDay:     JulianDay(t),
		DayOfYear:     DayOfYear(t),
		Season:        SeasonOf(t),
		LunarProgress: LunarProgress(t),
		Phase:         PhaseOf(t),
		NextNewMoon:   NextNewMoon(t),
		NextFullMoon:  NextFullMoon(t),
	}
}

// JulianDay returns the Julian day number of t, with the fractional part
// encoding the UTC time of day.
func JulianDay(t time.Time) float64 {
	t = t.UTC()
	y, m, d := t.Date()
	frac := (float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600) / 24
	// jdn is noon-anchored: civil midnight of the same date sits half a day
	// earlier on the Julian day scale.
	return float64(jdn(y, int(m), d)) - 0.5 + frac
}

// jdn returns the Julian day number of a Gregorian calendar date at noon.
// Every term stays positive for the supported positive-year range, so Go's
// truncating integer division is floor division here.
func jdn(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// ordinal returns the proleptic Gregorian ordinal of the date of t, with
// 0001-01-01 being ordinal 1. This is the anchor of the lunar cycle modulo
// arithmetic; a different anchor would shift the phase by a constant offset.
func ordinal(t time.Time) int {
	y, m, d := t.UTC().Date()
	return jdn(y, int(m), d) - 1721425
}

// DayOfYear returns the 1-based ordinal day of t within its calendar year.
func DayOfYear(t time.Time) int { return t.UTC().YearDay() }

// SeasonOf returns the season of t, using fixed Northern Hemisphere calendar
// boundaries (March 20, June 21, September 22, December 21).
func SeasonOf(t time.Time) Season {
	t = t.UTC()
	m, d := t.Month(), t.Day()
	switch {
	case (m == time.March && d >= 20) || m == time.April || m == time.May || (m == time.June && d < 21):
		return Spring
	case (m == time.June && d >= 21) || m == time.July || m == time.August || (m == time.September && d < 22):
		return Summer
	case (m == time.September && d >= 22) || m == time.October || m == time.November || (m == time.December && d < 21):
		return Autumn
	}
	return Winter
}

// LunarProgress returns how far t is into the approximate synodic month, as a
// percentage in [0, 100).
func LunarProgress(t time.Time) float64 {
	return mod(float64(ordinal(t)), SynodicMonth) / SynodicMonth * 100
}

// PhaseOf returns the lunar phase quadrant of t.
func PhaseOf(t time.Time) Phase { return PhaseFromProgress(LunarProgress(t)) }

// PhaseFromProgress maps a cycle progress percentage to a phase quadrant:
// [0, 25) is New, [25, 50) is Waxing, [50, 75) is Full, [75, 100) is Waning.
func PhaseFromProgress(progress float64) Phase {
	switch {
	case progress < 25:
		return New
	case progress < 50:
		return Waxing
	case progress < 75:
		return Full
	}
	return Waning
}

// NextNewMoon returns the UTC date of the next approximate new moon, which is
// never before the date of t and at most 30 days after it.
func NextNewMoon(t time.Time) time.Time {
	days := mod(SynodicMonth-mod(float64(ordinal(t)), SynodicMonth), SynodicMonth)
	return dateAfter(t, days)
}

// NextFullMoon returns the UTC date of the next approximate full moon, which
// is never before the date of t and at most 30 days after it.
func NextFullMoon(t time.Time) time.Time {
	days := mod(SynodicMonth/2-mod(float64(ordinal(t)), SynodicMonth), SynodicMonth)
	return dateAfter(t, days)
}

// mod is a floored modulo: the result is always in [0, m) for positive m,
// unlike math.Mod which keeps the sign of the dividend.
func mod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// dateAfter returns the UTC date (at midnight) of t advanced by a possibly
// fractional number of days.
func dateAfter(t time.Time, days float64) time.Time {
	nt := t.UTC().Add(time.Duration(days * 24 * float64(time.Hour)))
	y, m, d := nt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
