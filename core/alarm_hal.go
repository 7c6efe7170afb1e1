package core

// AlarmCounter is the 8-bit free-running counter whose overflow drives the
// timer interrupt. Target code provides the implementation; the scheduler
// is its only writer.
type AlarmCounter interface {
	// Elapsed reads the counter.
	Elapsed() uint8

	// Reload writes the counter and acknowledges any pending overflow.
	// The counter loses TimerConfig.Compensation ticks around the write,
	// so it overflows 256 - value + Compensation ticks later.
	Reload(value uint8)

	// EnableAlarm turns the overflow interrupt on or off. The counter keeps
	// running either way.
	EnableAlarm(enabled bool)
}

// Poster queues an event for the foreground loop. Post is called from the
// timer interrupt, so it must not block; its outcome is never inspected.
type Poster interface {
	Post(id EventID)
}

// EventID identifies an event in the event queue
type EventID uint8
