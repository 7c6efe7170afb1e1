package core

import (
	"errors"
	"testing"
)

type fakeWatchdog struct {
	timeout    uint32
	started    bool
	updates    int
	startError error
}

func (f *fakeWatchdog) Configure(timeoutMillis uint32) error {
	f.timeout = timeoutMillis
	return nil
}

func (f *fakeWatchdog) Start() error {
	if f.startError != nil {
		return f.startError
	}
	f.started = true
	return nil
}

func (f *fakeWatchdog) Update() { f.updates++ }

func TestWatchdogTimeoutRange(t *testing.T) {
	for _, ms := range []uint32{0, MaxWatchdogMillis + 1} {
		if _, err := NewWatchdog(&fakeWatchdog{}, ms); !errors.Is(err, ErrWatchdogTimeout) {
			t.Errorf("timeout=%d: expected ErrWatchdogTimeout, got %v", ms, err)
		}
	}
}

func TestWatchdogStartAndFeed(t *testing.T) {
	drv := &fakeWatchdog{}
	w, err := NewWatchdog(drv, 500)
	if err != nil {
		t.Fatalf("NewWatchdog failed: %v", err)
	}

	w.Feed()
	if drv.updates != 0 {
		t.Error("Feed before Start must not touch the hardware")
	}

	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !drv.started || drv.timeout != 500 {
		t.Errorf("Expected started with 500ms, got started=%v timeout=%d", drv.started, drv.timeout)
	}
	if err := w.Start(); !errors.Is(err, ErrWatchdogStarted) {
		t.Errorf("Expected ErrWatchdogStarted, got %v", err)
	}

	w.Feed()
	w.Feed()
	if drv.updates != 2 || w.Feeds() != 2 {
		t.Errorf("Expected 2 feeds, got %d/%d", drv.updates, w.Feeds())
	}
}

func TestWatchdogStartError(t *testing.T) {
	boom := errors.New("boom")
	w, _ := NewWatchdog(&fakeWatchdog{startError: boom}, 100)

	if err := w.Start(); !errors.Is(err, boom) {
		t.Errorf("Expected driver error, got %v", err)
	}
	// Not started, so a retry is allowed
	if err := w.Start(); errors.Is(err, ErrWatchdogStarted) {
		t.Error("Failed start must not mark the watchdog started")
	}
}

func TestWatchdogFedFromIdle(t *testing.T) {
	drv := &fakeWatchdog{}
	w, _ := NewWatchdog(drv, 100)
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	loop := NewEventLoop(NewEventQueue())
	w.AttachIdle(loop)
	loop.RunPending()

	if drv.updates != 1 {
		t.Errorf("Expected idle pass to feed the watchdog, got %d updates", drv.updates)
	}
}
