package core

import (
	"errors"
	"fmt"
)

// Limits on build-time timer declarations
const (
	MaxTimerDelay = 127 // Longest delay a single Start or restart may request
	MaxTimers     = 255 // Slots are addressed with a TimerSlot byte

	// Timer0Compensation is the number of ticks PIC-style Timer0 counters
	// lose when the register is written (increment inhibited for two cycles).
	Timer0Compensation = 2
)

var (
	ErrNoTimers          = errors.New("no timers declared")
	ErrTooManyTimers     = errors.New("too many timers declared")
	ErrRestartRange      = errors.New("restart delay out of range")
	ErrToleranceRange    = errors.New("tolerance window out of range")
	ErrCompensationRange = errors.New("commit compensation out of range")
)

// TimerSlot indexes a declared timer
type TimerSlot uint8

// TimerDecl declares one logical timer
type TimerDecl struct {
	Name    string  // Used in debug output only
	Event   EventID // Posted on every expiry
	Restart uint8   // Periodic restart delay, 0 = one-shot
}

// TimerConfig is the build-time declaration of a TimerMux
type TimerConfig struct {
	Timers []TimerDecl

	// Tolerance is how many ticks past the installed target a deadline may
	// lie and still count as expired in the same interrupt. It absorbs
	// interrupt-response latency.
	Tolerance uint8

	// Compensation is added to every counter reload to cover the ticks the
	// hardware loses around the write. Timer0Compensation for PIC Timer0,
	// 0 for counters that can be written without losing counts.
	Compensation uint8

	// Diagnostics enables the best-effort missed-deadline event.
	Diagnostics bool
	MissedEvent EventID
}

// Validate checks the declaration. Every violation here would otherwise be
// undefined behaviour at runtime.
func (c *TimerConfig) Validate() error {
	if len(c.Timers) == 0 {
		return ErrNoTimers
	}
	if len(c.Timers) > MaxTimers {
		return fmt.Errorf("%d timers: %w", len(c.Timers), ErrTooManyTimers)
	}
	if c.Tolerance > MaxTimerDelay {
		return fmt.Errorf("tolerance=%d: %w", c.Tolerance, ErrToleranceRange)
	}
	for i, decl := range c.Timers {
		if decl.Restart > MaxTimerDelay {
			return fmt.Errorf("timer %d (%s) restart=%d: %w", i, decl.Name, decl.Restart, ErrRestartRange)
		}
		// An early expiry pushes the next deadline up to Tolerance further out
		if decl.Restart != 0 && int(decl.Restart)+int(c.Tolerance) > MaxTimerDelay {
			return fmt.Errorf("timer %d (%s) restart=%d tolerance=%d: %w",
				i, decl.Name, decl.Restart, c.Tolerance, ErrRestartRange)
		}
	}
	if c.Compensation > MaxTimerDelay {
		return fmt.Errorf("compensation=%d: %w", c.Compensation, ErrCompensationRange)
	}
	return nil
}
