package protocol

import "errors"

var ErrUnknownReport = errors.New("unknown report kind")

// Report kinds. The scheduler kinds share their values with the core
// timing event codes so firmware can forward ring entries unchanged.
const (
	KindStart  = 1 // Slot armed; Value = delay
	KindStop   = 2 // Armed slot disarmed
	KindCommit = 3 // Counter reprogrammed; Value = reload
	KindFire   = 4 // Slot expired; Value = restart
	KindMissed = 5 // Reload already past the target
	KindHello  = 6 // Slot = timer count, Value = protocol version
	KindTimer  = 7 // Slot = index, Name = declared name
	KindEvent  = 8 // Event dispatched; Value = event id
	KindFeed   = 9 // Watchdog fed; Value = feed count
	kindLimit  = 10
)

// Report is one trace record
type Report struct {
	Kind  uint8
	Slot  uint8
	Clock uint8
	Value uint32
	Name  string
}

// KindName returns a short label for a report kind
func KindName(kind uint8) string {
	switch kind {
	case KindStart:
		return "start"
	case KindStop:
		return "stop"
	case KindCommit:
		return "commit"
	case KindFire:
		return "fire"
	case KindMissed:
		return "missed"
	case KindHello:
		return "hello"
	case KindTimer:
		return "timer"
	case KindEvent:
		return "event"
	case KindFeed:
		return "feed"
	default:
		return "unknown"
	}
}

// EncodeReport appends r to a frame payload. Names are only carried by
// KindTimer reports.
func EncodeReport(out OutputBuffer, r Report) {
	EncodeVLQUint(out, uint32(r.Kind))
	EncodeVLQUint(out, uint32(r.Slot))
	EncodeVLQUint(out, uint32(r.Clock))
	EncodeVLQUint(out, r.Value)
	if r.Kind == KindTimer {
		EncodeVLQString(out, r.Name)
	}
}

// DecodeReports parses every report in a frame payload. Reports decoded
// before an error are returned with it.
func DecodeReports(payload []byte) ([]Report, error) {
	var reports []Report
	for len(payload) > 0 {
		var fields [4]uint32
		for i := range fields {
			v, err := DecodeVLQUint(&payload)
			if err != nil {
				return reports, err
			}
			fields[i] = v
		}
		if fields[0] == 0 || fields[0] >= kindLimit {
			return reports, ErrUnknownReport
		}

		r := Report{
			Kind:  uint8(fields[0]),
			Slot:  uint8(fields[1]),
			Clock: uint8(fields[2]),
			Value: fields[3],
		}
		if r.Kind == KindTimer {
			name, err := DecodeVLQString(&payload)
			if err != nil {
				return reports, err
			}
			r.Name = name
		}
		reports = append(reports, r)
	}
	return reports, nil
}
