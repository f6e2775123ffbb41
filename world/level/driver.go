package level

import (
	"sync"
	"time"

	"github.com/kilnmc/kiln/internal/logging"
)

// TickInterval is the nominal server tick duration (20 ticks/second),
// matching player.TickInterval; level and player ticking run on
// independent drivers so this is kept local rather than importing player
// just for the constant.
const TickInterval = 50 * time.Millisecond

// Broadcaster delivers the level's periodic state to every connected
// player. Implementations translate these into the Time Update and Game
// Event (rain/thunder level change) packets; errors are logged, not
// propagated, since a single broadcast failure must not stop the clock.
type Broadcaster interface {
	BroadcastTime(worldAge, timeOfDay int64) error
	BroadcastWeather(w *Weather) error
}

// Driver steps a Level once per TickInterval on its own goroutine and
// broadcasts time/weather updates on the cadence §4.9 describes, following
// the teacher's ticker-goroutine-with-stop-channel shape used for
// background chunk saves.
type Driver struct {
	level       *Level
	broadcaster Broadcaster
	log         *logging.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewDriver returns a Driver for level, delivering updates through b.
func NewDriver(level *Level, b Broadcaster, log *logging.Logger) *Driver {
	return &Driver{level: level, broadcaster: b, log: log}
}

// Start begins ticking the level on a background goroutine.
func (d *Driver) Start() {
	d.stopCh = make(chan struct{})
	d.wg.Add(1)
	go d.run()
}

func (d *Driver) run() {
	defer d.wg.Done()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			d.tick()
		case <-d.stopCh:
			return
		}
	}
}

func (d *Driver) tick() {
	timeUpdateDue, weatherChanged := d.level.Tick()
	if weatherChanged {
		if err := d.broadcaster.BroadcastWeather(d.level.Weather); err != nil {
			d.log.Warn("level: broadcast weather: %v", err)
		}
	}
	if timeUpdateDue {
		if err := d.broadcaster.BroadcastTime(d.level.Age, d.level.TimeOfDay); err != nil {
			d.log.Warn("level: broadcast time: %v", err)
		}
	}
}

// Stop halts the driver's goroutine and waits for it to exit.
func (d *Driver) Stop() {
	if d.stopCh == nil {
		return
	}
	close(d.stopCh)
	d.wg.Wait()
	d.stopCh = nil
}
