package protocol

import (
	"io"

	"tickmux/core"
)

// Tracer frames reports into a scratch buffer and writes them out on
// Flush. Foreground only: never call it from the timer interrupt.
type Tracer struct {
	w       io.Writer
	enc     FrameEncoder
	out     ScratchOutput
	Errors  uint32 // Failed writes
	Dropped uint32 // Reports that did not fit a frame
}

// NewTracer returns a tracer writing to w
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// Report queues one report in its own frame, flushing first when the
// scratch buffer is nearly full.
func (t *Tracer) Report(r Report) {
	if t.out.Free() < MessageLengthMax {
		t.Flush()
	}
	if err := t.enc.Encode(&t.out, func(o OutputBuffer) { EncodeReport(o, r) }); err != nil {
		t.Dropped++
	}
}

// Hello announces the protocol version and the declared timer names
func (t *Tracer) Hello(cfg core.TimerConfig) {
	t.Report(Report{Kind: KindHello, Slot: uint8(len(cfg.Timers)), Value: Version})
	for i, decl := range cfg.Timers {
		t.Report(Report{Kind: KindTimer, Slot: uint8(i), Name: decl.Name})
	}
}

// Timing forwards the scheduler's timing ring, oldest first
func (t *Tracer) Timing(events []core.TimingEvent) {
	for _, evt := range events {
		t.Report(TimingReport(evt))
	}
}

// Flush writes every queued frame
func (t *Tracer) Flush() {
	data := t.out.Result()
	for len(data) > 0 {
		n, err := t.w.Write(data)
		if err != nil {
			t.Errors++
			break
		}
		data = data[n:]
	}
	t.out.Reset()
}

// TimingReport converts a timing ring entry. Kind values are shared.
func TimingReport(evt core.TimingEvent) Report {
	return Report{
		Kind:  evt.EventType,
		Slot:  evt.Slot,
		Clock: evt.Clock,
		Value: evt.Value1,
	}
}
