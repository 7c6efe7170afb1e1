package core

// BeginAlarm is the prologue of the timer interrupt pass. The alarm stays
// off unless some slot re-commits during the pass.
func (m *TimerMux) BeginAlarm() {
	m.firedTarget = m.checkpoint
	m.alarmEnabled = false
	m.hw.EnableAlarm(false)
}

// Recheck examines slot i after an overflow. Interrupt context only, once
// per declared slot in declaration order, after BeginAlarm.
//
// An expired slot posts its event and is either disarmed or, with a
// non-zero restart, advanced by restart ticks from its old deadline. Every
// slot still armed afterwards stands for election, so the earliest one
// ends up owning the alarm.
func (m *TimerMux) Recheck(i TimerSlot, restart uint8) {
	if restart > MaxTimerDelay || (restart != 0 && int(restart)+int(m.cfg.Tolerance) > MaxTimerDelay) {
		panic("core: restart delay out of range")
	}

	t := &m.timers[i]
	if !t.armed {
		return
	}

	if m.expired(t.deadline) {
		RecordTiming(EvtTimerFire, uint8(i), t.deadline, uint32(m.firedTarget), uint32(restart))
		m.poster.Post(m.cfg.Timers[i].Event)
		if restart == 0 {
			t.armed = false
			return
		}
		t.deadline += restart
	}

	m.schedule(i, false)
}

// Check is Recheck for a one-shot slot
func (m *TimerMux) Check(i TimerSlot) {
	m.Recheck(i, 0)
}

// HandleAlarm runs the whole interrupt pass with the declared restart
// delays. Call it from the counter's overflow interrupt.
func (m *TimerMux) HandleAlarm() {
	m.BeginAlarm()
	for i := range m.timers {
		m.Recheck(TimerSlot(i), m.cfg.Timers[i].Restart)
	}
}

// expired reports whether deadline is at or before the target that fired,
// or within the tolerance window after it.
func (m *TimerMux) expired(deadline uint8) bool {
	d := int8(m.firedTarget - deadline)
	if d >= 0 {
		return true
	}
	return -int(d) <= int(m.cfg.Tolerance)
}
