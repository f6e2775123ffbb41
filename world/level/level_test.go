package level

import "testing"

type fixedWeather struct {
	raining, thundering bool
	duration            int64
	calls               int
}

func (f *fixedWeather) NextPeriod() (bool, bool, int64) {
	f.calls++
	return f.raining, f.thundering, f.duration
}

func TestLevelTickAdvancesClockAndWraps(t *testing.T) {
	l := NewLevel(&fixedWeather{duration: 1000})
	l.TimeOfDay = 23999
	l.Tick()
	if l.TimeOfDay != 0 {
		t.Fatalf("expected time of day to wrap to 0, got %d", l.TimeOfDay)
	}
	if l.Age != 1 {
		t.Fatalf("expected world age to advance to 1, got %d", l.Age)
	}
}

func TestLevelTimeUpdateDueEveryTwentyTicks(t *testing.T) {
	l := NewLevel(&fixedWeather{duration: 1000})
	var dueCount int
	for i := 0; i < TicksPerTimeUpdate*3; i++ {
		due, _ := l.Tick()
		if due {
			dueCount++
		}
	}
	if dueCount != 3 {
		t.Fatalf("expected a time update every %d ticks over %d ticks, got %d", TicksPerTimeUpdate, TicksPerTimeUpdate*3, dueCount)
	}
}

func TestWeatherDriftsTowardTargetAndReportsChange(t *testing.T) {
	src := &fixedWeather{raining: true, duration: 1}
	w := NewWeather(src)
	changed := w.Tick()
	if !changed {
		t.Fatalf("expected the first tick to report a weather change (clear -> raining)")
	}
	if w.RainLevel <= 0 {
		t.Fatalf("expected rain level to start drifting upward, got %f", w.RainLevel)
	}
	if w.RainLevel >= 1 {
		t.Fatalf("expected a single tick not to jump straight to full rain, got %f", w.RainLevel)
	}
}

func TestWeatherStaysOnSamePeriodUntilDurationElapses(t *testing.T) {
	src := &fixedWeather{raining: true, duration: 5}
	w := NewWeather(src)
	for i := 0; i < 5; i++ {
		w.Tick()
	}
	if src.calls != 1 {
		t.Fatalf("expected exactly one NextPeriod call across a 5-tick period, got %d", src.calls)
	}
	w.Tick()
	if src.calls != 2 {
		t.Fatalf("expected a second NextPeriod call once the period elapsed, got %d", src.calls)
	}
}

func TestWeatherLevelReachesFullAfterEnoughTicks(t *testing.T) {
	src := &fixedWeather{raining: true, duration: 10000}
	w := NewWeather(src)
	for i := 0; i < 1000; i++ {
		w.Tick()
	}
	if w.RainLevel != 1 {
		t.Fatalf("expected rain level to reach 1 after many ticks, got %f", w.RainLevel)
	}
}
