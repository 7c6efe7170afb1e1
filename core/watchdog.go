package core

import "errors"

// Watchdog timeout limits
const (
	MinWatchdogMillis = 1
	MaxWatchdogMillis = 8300 // RP2040 limit, the tightest of the supported targets
)

var (
	ErrWatchdogTimeout = errors.New("watchdog timeout out of range")
	ErrWatchdogStarted = errors.New("watchdog already started")
)

// Watchdog feeds a hardware watchdog from the idle phase. A foreground
// that stops reaching idle (a handler stuck in a loop) resets the chip.
type Watchdog struct {
	driver        WatchdogDriver
	timeoutMillis uint32
	started       bool
	feeds         uint32
}

// NewWatchdog creates a watchdog wrapper; nothing touches the hardware
// until Start.
func NewWatchdog(driver WatchdogDriver, timeoutMillis uint32) (*Watchdog, error) {
	if timeoutMillis < MinWatchdogMillis || timeoutMillis > MaxWatchdogMillis {
		return nil, ErrWatchdogTimeout
	}
	return &Watchdog{driver: driver, timeoutMillis: timeoutMillis}, nil
}

// Start configures and enables the hardware watchdog
func (w *Watchdog) Start() error {
	if w.started {
		return ErrWatchdogStarted
	}
	if err := w.driver.Configure(w.timeoutMillis); err != nil {
		return err
	}
	if err := w.driver.Start(); err != nil {
		return err
	}
	w.started = true
	return nil
}

// Feed resets the watchdog countdown. A no-op before Start.
func (w *Watchdog) Feed() {
	if !w.started {
		return
	}
	w.driver.Update()
	w.feeds++
}

// Feeds returns how many times the watchdog has been fed
func (w *Watchdog) Feeds() uint32 {
	return w.feeds
}

// AttachIdle feeds the watchdog on every idle pass of loop
func (w *Watchdog) AttachIdle(loop *EventLoop) {
	loop.OnIdle(w.Feed)
}
