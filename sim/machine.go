package sim

import (
	"tickmux/core"
)

// Firing is one event posted while the machine ran
type Firing struct {
	Time  uint32       // Simulated ticks since the machine started
	Event core.EventID // Posted event
}

// Machine couples a TimerMux to a simulated counter and records every
// posted event with its simulated time.
type Machine struct {
	counter    *Counter
	mux        *core.TimerMux
	queue      *core.EventQueue
	start      uint8
	firings    []Firing
	interrupts uint32
}

// New builds a machine whose rolling clock reads start at time zero. The
// counter loses cfg.Compensation ticks per reload, so commits land exactly.
func New(cfg core.TimerConfig, start uint8) (*Machine, error) {
	m := &Machine{
		counter: NewCounter(start, cfg.Compensation),
		start:   start,
	}
	mux, err := core.NewTimerMux(cfg, m.counter, m)
	if err != nil {
		return nil, err
	}
	m.mux = mux
	for i := 0; i < mux.NumTimers(); i++ {
		mux.Init(core.TimerSlot(i))
	}
	return m, nil
}

// Mux returns the scheduler under simulation
func (m *Machine) Mux() *core.TimerMux {
	return m.mux
}

// Counter returns the simulated hardware
func (m *Machine) Counter() *Counter {
	return m.counter
}

// AttachQueue forwards every posted event to q as well
func (m *Machine) AttachQueue(q *core.EventQueue) {
	m.queue = q
}

// Post implements core.Poster
func (m *Machine) Post(id core.EventID) {
	m.firings = append(m.firings, Firing{Time: m.counter.Time(), Event: id})
	if m.queue != nil {
		m.queue.Post(id)
	}
}

// Time returns the simulated ticks since start
func (m *Machine) Time() uint32 {
	return m.counter.Time()
}

// TrueNow is the rolling time the scheduler should report right now
func (m *Machine) TrueNow() uint8 {
	return m.start + uint8(m.counter.Time())
}

// Step advances one tick, running the interrupt pass if the counter
// overflowed with the alarm enabled. Reports whether it ran.
func (m *Machine) Step() bool {
	if !m.counter.Tick() {
		return false
	}
	m.counter.Ack()
	m.interrupts++
	m.mux.HandleAlarm()
	return true
}

// Advance runs n ticks
func (m *Machine) Advance(n int) {
	for i := 0; i < n; i++ {
		m.Step()
	}
}

// AdvanceUntil runs ticks until fn returns true or limit ticks have passed.
// Reports whether fn was satisfied.
func (m *Machine) AdvanceUntil(limit int, fn func() bool) bool {
	for i := 0; i < limit; i++ {
		if fn() {
			return true
		}
		m.Step()
	}
	return fn()
}

// Interrupts returns how many interrupt passes ran
func (m *Machine) Interrupts() uint32 {
	return m.interrupts
}

// Firings returns the recorded events, oldest first
func (m *Machine) Firings() []Firing {
	out := make([]Firing, len(m.firings))
	copy(out, m.firings)
	return out
}

// FiringsOf returns the times at which id was posted
func (m *Machine) FiringsOf(id core.EventID) []uint32 {
	var times []uint32
	for _, f := range m.firings {
		if f.Event == id {
			times = append(times, f.Time)
		}
	}
	return times
}

// ResetFirings forgets the recorded events
func (m *Machine) ResetFirings() {
	m.firings = m.firings[:0]
}
