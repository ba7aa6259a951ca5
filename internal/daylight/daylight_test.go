package daylight

import (
	"math"
	"testing"
	"time"
)

var (
	sanFrancisco = Location{Lat: 34.03, Lon: -118.15, Timezone: "America/Los_Angeles"}
	northPole    = Location{Lat: 90, Lon: 0, Timezone: "UTC"}
)

func mustTZ(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func TestLevel(t *testing.T) {
	la := mustTZ("America/Los_Angeles")
	tests := []struct {
		name     string
		time     time.Time
		loc      Location
		min, max float64
	}{
		{"midnight", time.Date(2022, 1, 1, 0, 0, 0, 0, la), sanFrancisco, 0, 0},
		{"dawn", time.Date(2022, 1, 1, 6, 41, 0, 0, la), sanFrancisco, 0.3, 0.37},
		{"noon", time.Date(2022, 1, 1, 12, 0, 0, 0, la), sanFrancisco, 1, 1},
		{"dusk", time.Date(2022, 1, 1, 17, 21, 0, 0, la), sanFrancisco, 0.01, 0.08},
		{"night after dusk", time.Date(2022, 1, 1, 19, 0, 0, 0, la), sanFrancisco, 0, 0},
		{"polar day", time.Date(2022, 6, 21, 12, 0, 0, 0, time.UTC), northPole, 1, 1},
		{"polar night", time.Date(2022, 12, 21, 12, 0, 0, 0, time.UTC), northPole, 0, 0},
		{"unknown timezone", time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC), Location{Lat: 34, Lon: -118, Timezone: "Invalid/Zone"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Level(tt.time, tt.loc)
			if got < tt.min || got > tt.max {
				t.Errorf("Level() = %f; want in [%f, %f]", got, tt.min, tt.max)
			}
		})
	}
}

func TestAltitude(t *testing.T) {
	la := mustTZ("America/Los_Angeles")
	tests := []struct {
		name  string
		time  time.Time
		loc   Location
		want  float64
		delta float64
	}{
		{"midnight", time.Date(2022, 1, 1, 0, 0, 0, 0, la), sanFrancisco, -79, 0.5},
		{"noon", time.Date(2022, 1, 1, 12, 0, 0, 0, la), sanFrancisco, 33, 0.5},
		{"polar day", time.Date(2022, 6, 21, 12, 0, 0, 0, time.UTC), northPole, 23.4, 0.5},
		{"polar night", time.Date(2022, 12, 21, 12, 0, 0, 0, time.UTC), northPole, -23.4, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := altitude(tt.time.UTC(), tt.loc.Lat, tt.loc.Lon)
			if math.Abs(got-tt.want) > tt.delta {
				t.Errorf("altitude() = %f; want %f±%f", got, tt.want, tt.delta)
			}
		})
	}
}

func TestRamp(t *testing.T) {
	start := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	tests := []struct {
		name       string
		start, end time.Time
		cur        time.Time
		want       float64
	}{
		{"end before start", end, start, start, 1},
		{"before start", start, end, start.Add(-time.Hour), 0},
		{"at start", start, end, start, 0},
		{"halfway", start, end, start.Add(30 * time.Minute), 0.5},
		{"at end", start, end, end, 1},
		{"after end", start, end, end.Add(time.Hour), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ramp(tt.start, tt.end, tt.cur); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ramp() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestLight(t *testing.T) {
	midnight := time.Date(2022, 1, 1, 0, 0, 0, 0, mustTZ("America/Los_Angeles"))
	if got := Light(ThemeDay, midnight, sanFrancisco); got != 1 {
		t.Errorf("day theme = %f", got)
	}
	if got := Light(ThemeNight, midnight, sanFrancisco); got != 0 {
		t.Errorf("night theme = %f", got)
	}
	if got := Light(ThemeReal, midnight, sanFrancisco); got != 0 {
		t.Errorf("real theme at midnight = %f", got)
	}
	if got := Light("", midnight, sanFrancisco); got != 1 {
		t.Errorf("unset theme = %f", got)
	}
}
