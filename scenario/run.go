package scenario

import (
	"fmt"

	"tickmux/core"
	"tickmux/sim"
)

// Entry kinds
const (
	KindStart  = "start"
	KindStop   = "stop"
	KindFire   = "fire"
	KindMissed = "missed"
)

// Entry is one line of a run trace
type Entry struct {
	Time  uint32 // Ticks since the run began
	Now   uint8  // Rolling time
	Kind  string
	Timer string // Empty for missed-deadline entries
	Delay uint8  // Start entries only
}

func (e Entry) String() string {
	line := fmt.Sprintf("t=%5d now=0x%02x %-6s", e.Time, e.Now, e.Kind)
	if e.Timer != "" {
		line += " " + e.Timer
	}
	if e.Kind == KindStart {
		line += fmt.Sprintf(" delay=%d", e.Delay)
	}
	return line
}

// Result is the outcome of a run
type Result struct {
	Entries    []Entry
	Interrupts uint32
	Reloads    uint32
	Dispatched int            // Events drained through the event loop
	Fired      map[string]int // Expiries per timer, counted by the handlers
	Missed     int
}

// Run executes s on a simulated counter. Events go through a real
// EventQueue and EventLoop, drained after every tick the way a firmware
// main loop keeps up with the interrupt. With core debug output enabled
// every action is echoed and the slot table is dumped on a missed
// deadline and at the end.
func Run(s *Scenario) (*Result, error) {
	m, err := sim.New(s.TimerConfig(), s.Start)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	res := &Result{Fired: make(map[string]int)}
	loop := core.NewEventLoop(core.NewEventQueue())
	m.AttachQueue(loop.Queue())
	for i := range s.Timers {
		name := s.Timers[i].Name
		loop.Handle(core.EventID(i+1), func(core.EventID) { res.Fired[name]++ })
	}

	flush := func() {
		for _, f := range m.Firings() {
			e := Entry{Time: f.Time, Now: s.Start + uint8(f.Time), Kind: KindFire}
			if f.Event == MissedEvent {
				e.Kind = KindMissed
				res.Missed++
				if core.IsDebugEnabled() {
					core.DebugPrintln("[SIM] missed deadline at t=" + fmt.Sprint(f.Time))
					m.Mux().DumpState()
				}
			} else {
				e.Timer = s.Timers[f.Event-1].Name
			}
			res.Entries = append(res.Entries, e)
		}
		m.ResetFirings()
		res.Dispatched += loop.RunPending()
	}

	advance := func(until uint32) {
		for m.Time() < until {
			if m.Step() {
				flush()
			}
		}
	}

	for _, a := range s.Actions {
		advance(a.At)

		e := Entry{Time: m.Time(), Now: m.TrueNow()}
		if a.Start != "" {
			e.Kind, e.Timer, e.Delay = KindStart, a.Start, a.Delay
			res.Entries = append(res.Entries, e)
			m.Mux().Start(s.slot(a.Start), a.Delay)
		} else {
			e.Kind, e.Timer = KindStop, a.Stop
			res.Entries = append(res.Entries, e)
			m.Mux().Stop(s.slot(a.Stop))
		}
		core.DebugPrintln("[SIM] " + e.String())
		flush()
	}
	advance(s.Duration)
	if core.IsDebugEnabled() {
		m.Mux().DumpState()
	}

	res.Interrupts = m.Interrupts()
	res.Reloads = m.Counter().Reloads()
	return res, nil
}
