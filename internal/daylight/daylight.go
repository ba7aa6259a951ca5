// Package daylight estimates ambient light from the sun's position so the
// board can follow the real day at the player's location.
package daylight

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// Themes
const (
	ThemeDay     = "day"
	ThemeNight   = "night"
	ThemeReal    = "real"
	ThemeDefault = ThemeDay
)

// civilTwilight is the solar altitude in degrees where dawn starts and dusk ends.
const civilTwilight = -6.0

// Location is where the light is measured.
type Location struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

// Light returns the board light in [0, 1] for a theme.
func Light(theme string, now time.Time, loc Location) float64 {
	switch theme {
	case ThemeNight:
		return 0
	case ThemeReal:
		return Level(now, loc)
	default:
		return 1
	}
}

// Level returns ambient light in [0, 1] at loc: 0 at night, 1 between sunrise
// and sunset, ramping through civil twilight. Polar days and nights are
// decided by the noon altitude. An unknown timezone counts as night.
func Level(now time.Time, loc Location) float64 {
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		return 0
	}
	local := now.In(tz)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)

	ev, ok := dayEvents(day, loc.Lat, loc.Lon)
	if !ok {
		noon := day.Add(12 * time.Hour)
		if altitude(noon.UTC(), loc.Lat, loc.Lon) > civilTwilight {
			return 1
		}
		return 0
	}

	switch {
	case local.Before(ev.dawn):
		return 0
	case local.Before(ev.sunrise):
		return ramp(ev.dawn, ev.sunrise, local)
	case local.Before(ev.sunset):
		return 1
	case local.Before(ev.dusk):
		return 1 - ramp(ev.sunset, ev.dusk, local)
	default:
		return 0
	}
}

type events struct {
	dawn, sunrise, sunset, dusk time.Time
}

// dayEvents finds twilight and horizon crossings for day. It reports false when
// the sun does not cross civil twilight in the usual order.
func dayEvents(day time.Time, lat, lon float64) (events, bool) {
	var ev events
	var dawnOK, duskOK bool
	ev.dawn, dawnOK = crossing(day, lat, lon, civilTwilight, false)
	ev.sunrise, _ = crossing(day, lat, lon, 0, false)
	ev.sunset, _ = crossing(day, lat, lon, 0, true)
	ev.dusk, duskOK = crossing(day, lat, lon, civilTwilight, true)
	if !dawnOK || !duskOK || ev.dawn.After(ev.dusk) {
		return events{}, false
	}
	return ev, true
}

// crossing bisects day for the minute the sun passes alt, rising or setting.
func crossing(day time.Time, lat, lon, alt float64, setting bool) (time.Time, bool) {
	start := day
	end := start.Add(24 * time.Hour)
	noon := start.Add(12 * time.Hour)

	atMidnight := altitude(start.UTC(), lat, lon)
	atNoon := altitude(noon.UTC(), lat, lon)
	if (atMidnight-alt)*(atNoon-alt) > 0 {
		return time.Time{}, false
	}

	for end.Sub(start) > time.Minute {
		mid := start.Add(end.Sub(start) / 2)
		if (altitude(mid.UTC(), lat, lon) > alt) == setting {
			start = mid
		} else {
			end = mid
		}
	}
	return start.Round(time.Minute), true
}

// altitude returns the solar altitude in degrees at UTC time t.
func altitude(t time.Time, lat, lon float64) float64 {
	jd := julian.TimeToJD(t)
	ra, dec := solar.ApparentEquatorial(jd)

	hourAngle := sidereal.Apparent(jd).Rad() + lon*math.Pi/180 - ra.Rad()
	hourAngle = math.Mod(hourAngle+2*math.Pi, 2*math.Pi)
	phi := lat * math.Pi / 180
	delta := dec.Rad()

	sinAlt := math.Sin(phi)*math.Sin(delta) + math.Cos(phi)*math.Cos(delta)*math.Cos(hourAngle)
	return math.Asin(sinAlt) * 180 / math.Pi
}

// ramp maps cur linearly onto [0, 1] between start and end.
func ramp(start, end, cur time.Time) float64 {
	if !end.After(start) {
		return 1
	}
	return max(0, min(1, cur.Sub(start).Seconds()/end.Sub(start).Seconds()))
}
