package scenario

import "tickmux/protocol"

// Reports converts the run into trace reports as the firmware would send
// them, announcement first.
func (r *Result) Reports(s *Scenario) []protocol.Report {
	out := []protocol.Report{{Kind: protocol.KindHello, Slot: uint8(len(s.Timers)), Value: protocol.Version}}
	for i, t := range s.Timers {
		out = append(out, protocol.Report{Kind: protocol.KindTimer, Slot: uint8(i), Name: t.Name})
	}

	for _, e := range r.Entries {
		rep := protocol.Report{Clock: e.Now}
		if e.Timer != "" {
			rep.Slot = uint8(s.slot(e.Timer))
		}
		switch e.Kind {
		case KindStart:
			rep.Kind, rep.Value = protocol.KindStart, uint32(e.Delay)
		case KindStop:
			rep.Kind = protocol.KindStop
		case KindFire:
			rep.Kind, rep.Value = protocol.KindFire, uint32(s.Timers[rep.Slot].Restart)
		case KindMissed:
			rep.Kind = protocol.KindMissed
		}
		out = append(out, rep)
	}
	return out
}
