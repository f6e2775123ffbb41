// Package level advances the per-world state that isn't owned by any one
// chunk or player: the day/night clock and the weather state machine,
// stepped once per server tick (§4.9 items 1-2) and broadcast to connected
// players on the cadence the protocol expects.
package level

import "math"

// TicksPerTimeUpdate is how often (in ticks) a Time Update packet goes out
// to watching players, matching vanilla's 20-tick (1 second) cadence.
const TicksPerTimeUpdate = 20

// weatherDriftPerTick bounds how far RainLevel/ThunderLevel can move in a
// single tick, so transitions fade in/out instead of snapping.
const weatherDriftPerTick = 1.0 / 600 // a full fade takes 600 ticks (30s)

// WeatherSource decides the next weather period once the current one
// expires: whether it rains/thunders, and for how many ticks.
type WeatherSource interface {
	NextPeriod() (raining, thundering bool, durationTicks int64)
}

// Weather tracks the rain/thunder levels vanilla broadcasts via Game Event
// packets, drifting toward a boolean target sampled from a WeatherSource
// each time the current period runs out.
type Weather struct {
	Raining    bool
	Thundering bool

	RainLevel    float64
	ThunderLevel float64

	source         WeatherSource
	ticksRemaining int64
}

// NewWeather returns clear weather that will ask source for its first
// period on the next Tick.
func NewWeather(source WeatherSource) *Weather {
	return &Weather{source: source}
}

// Tick advances the weather machine by one server tick, returning whether
// the raining/thundering flags flipped this tick (i.e. a weather-change
// packet is due).
func (w *Weather) Tick() (changed bool) {
	was, wasThunder := w.Raining, w.Thundering
	if w.ticksRemaining <= 0 && w.source != nil {
		raining, thundering, dur := w.source.NextPeriod()
		w.Raining, w.Thundering = raining, thundering
		if dur <= 0 {
			dur = 1
		}
		w.ticksRemaining = dur
	}
	w.ticksRemaining--

	w.RainLevel = driftToward(w.RainLevel, boolTarget(w.Raining), weatherDriftPerTick)
	w.ThunderLevel = driftToward(w.ThunderLevel, boolTarget(w.Thundering), weatherDriftPerTick)
	return was != w.Raining || wasThunder != w.Thundering
}

func boolTarget(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func driftToward(cur, target, maxDelta float64) float64 {
	if cur < target {
		return math.Min(cur+maxDelta, target)
	}
	if cur > target {
		return math.Max(cur-maxDelta, target)
	}
	return cur
}

// Level holds one world's clock and weather, advanced by Driver.
type Level struct {
	// Age is the total number of ticks since the world was created,
	// matching the protocol's "world age" field (never wraps).
	Age int64
	// TimeOfDay cycles [0, 24000) once per vanilla day.
	TimeOfDay int64

	Weather *Weather

	ticksSinceBroadcast int
}

// NewLevel returns a Level at tick 0, dawn, with weather driven by source.
func NewLevel(source WeatherSource) *Level {
	return &Level{Weather: NewWeather(source)}
}

// Tick advances the level's clock and weather by one server tick. It
// reports whether a Time Update broadcast is due this tick (every
// TicksPerTimeUpdate ticks) and whether the weather flags changed (a
// separate, immediate broadcast regardless of the time-update cadence).
func (l *Level) Tick() (timeUpdateDue, weatherChanged bool) {
	l.Age++
	l.TimeOfDay = (l.TimeOfDay + 1) % 24000
	weatherChanged = l.Weather.Tick()

	l.ticksSinceBroadcast++
	if l.ticksSinceBroadcast >= TicksPerTimeUpdate {
		l.ticksSinceBroadcast = 0
		timeUpdateDue = true
	}
	return timeUpdateDue, weatherChanged
}
