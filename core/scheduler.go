package core

// timerState is one slot of the registry. Every deadline value is legal;
// armed says whether it means anything.
type timerState struct {
	deadline uint8
	armed    bool
}

// TimerMux multiplexes the declared software timers onto one AlarmCounter.
//
// The rolling clock is checkpoint + counter, mod 256. The counter is always
// programmed to overflow at the checkpoint of the slot that won the last
// election (the owner), and the interrupt pass rechecks every slot on each
// overflow, so no sorted queue is kept.
type TimerMux struct {
	cfg    TimerConfig
	hw     AlarmCounter
	poster Poster

	timers       []timerState
	checkpoint   uint8
	alarmEnabled bool
	owner        TimerSlot
	hasOwner     bool

	// firedTarget is the checkpoint the running interrupt pass was entered
	// with. Commits during the pass move checkpoint, so expiry is judged
	// against this copy.
	firedTarget uint8
}

// NewTimerMux validates cfg and returns a scheduler with every slot
// disarmed and the alarm off. The slot array is the only allocation.
func NewTimerMux(cfg TimerConfig, hw AlarmCounter, poster Poster) (*TimerMux, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &TimerMux{
		cfg:    cfg,
		hw:     hw,
		poster: poster,
		timers: make([]timerState, len(cfg.Timers)),
	}
	hw.EnableAlarm(false)
	return m, nil
}

// NumTimers returns the number of declared slots
func (m *TimerMux) NumTimers() int {
	return len(m.timers)
}

// Now returns the rolling time. Both operands are sampled as one unit.
func (m *TimerMux) Now() uint8 {
	state := disableInterrupts()
	now := m.now()
	restoreInterrupts(state)
	return now
}

func (m *TimerMux) now() uint8 {
	return m.checkpoint + m.hw.Elapsed()
}

// Init disarms slot i. Used once at startup.
func (m *TimerMux) Init(i TimerSlot) {
	m.timers[i] = timerState{}
}

// Start arms slot i to expire delay ticks from now. Foreground only.
// delay must lie in [1, MaxTimerDelay].
func (m *TimerMux) Start(i TimerSlot, delay uint8) {
	if delay == 0 || delay > MaxTimerDelay {
		panic("core: timer delay out of range")
	}

	state := disableInterrupts()
	t := &m.timers[i]
	t.deadline = m.now() + delay
	t.armed = true
	RecordTiming(EvtTimerStart, uint8(i), t.deadline, uint32(delay), 0)
	restoreInterrupts(state)

	m.schedule(i, true)
}

// Stop disarms slot i. The hardware is left alone: if i owned the alarm it
// still fires at the installed target and the interrupt pass re-elects.
func (m *TimerMux) Stop(i TimerSlot) {
	state := disableInterrupts()
	if m.timers[i].armed {
		m.timers[i].armed = false
		RecordTiming(EvtTimerStop, uint8(i), m.timers[i].deadline, 0, 0)
	}
	restoreInterrupts(state)
}

// schedule runs the election for slot i against the installed target.
// Ties go to the candidate. atomic is for foreground callers; the
// interrupt pass relies on its own non-reentrancy.
func (m *TimerMux) schedule(i TimerSlot, atomic bool) {
	var state State
	if atomic {
		state = disableInterrupts()
	}

	t := &m.timers[i]
	// The interrupt may have consumed the slot between arming and here.
	if t.armed && (!m.alarmEnabled || int8(m.checkpoint-t.deadline) >= 0) {
		m.owner = i
		m.hasOwner = true
		m.commit(i)
		if !m.alarmEnabled {
			m.alarmEnabled = true
			m.hw.EnableAlarm(true)
		}
	}

	if atomic {
		restoreInterrupts(state)
	}
}

// commit reprograms the counter to overflow when the rolling time reaches
// slot i's deadline, keeping checkpoint + counter equal to now.
func (m *TimerMux) commit(i TimerSlot) {
	target := m.timers[i].deadline
	reload := m.now() - target + m.cfg.Compensation
	m.checkpoint = target
	m.hw.Reload(reload)
	RecordTiming(EvtTimerCommit, uint8(i), target, uint32(reload), 0)

	// Only overshoot visible right now is caught; the counter may still
	// slip past the target after this point.
	if m.cfg.Diagnostics && int8(reload) >= 0 {
		RecordTiming(EvtDeadlineMissed, uint8(i), target, uint32(reload), 0)
		m.poster.Post(m.cfg.MissedEvent)
	}
}

// Armed reports whether slot i is armed
func (m *TimerMux) Armed(i TimerSlot) bool {
	state := disableInterrupts()
	armed := m.timers[i].armed
	restoreInterrupts(state)
	return armed
}

// Deadline returns slot i's deadline and whether it is armed
func (m *TimerMux) Deadline(i TimerSlot) (uint8, bool) {
	state := disableInterrupts()
	t := m.timers[i]
	restoreInterrupts(state)
	return t.deadline, t.armed
}

// Owner returns the slot the alarm is currently programmed for, if any
func (m *TimerMux) Owner() (TimerSlot, bool) {
	state := disableInterrupts()
	owner, ok := m.owner, m.hasOwner && m.alarmEnabled
	restoreInterrupts(state)
	return owner, ok
}

// Checkpoint returns the installed target
func (m *TimerMux) Checkpoint() uint8 {
	state := disableInterrupts()
	cp := m.checkpoint
	restoreInterrupts(state)
	return cp
}

// AlarmEnabled reports whether some slot owns the alarm
func (m *TimerMux) AlarmEnabled() bool {
	state := disableInterrupts()
	enabled := m.alarmEnabled
	restoreInterrupts(state)
	return enabled
}

// DumpState writes the slot table through the debug writer. Foreground
// only.
func (m *TimerMux) DumpState() {
	if debugPrintln == nil {
		return
	}

	state := disableInterrupts()
	now := m.now()
	cp := m.checkpoint
	enabled := m.alarmEnabled
	owner, hasOwner := m.owner, m.hasOwner
	restoreInterrupts(state)

	line := "[TIMERS] now=0x" + hex2(now) + " checkpoint=0x" + hex2(cp)
	if enabled && hasOwner {
		line += " owner=" + utoa(uint32(owner))
	} else {
		line += " owner=none"
	}
	debugPrintln(line)

	for i, decl := range m.cfg.Timers {
		deadline, armed := m.Deadline(TimerSlot(i))
		line := "[TIMERS] " + utoa(uint32(i)) + " " + decl.Name
		if armed {
			line += " deadline=0x" + hex2(deadline) + " in=" + itoa(int(int8(deadline-now)))
		} else {
			line += " disarmed"
		}
		debugPrintln(line)
	}
}
