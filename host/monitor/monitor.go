// Package monitor decodes the trace stream of a tickmux board
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tickmux/protocol"
)

// Board is what the firmware announced about itself: the hello report
// followed by one timer report per declared slot.
type Board struct {
	Version uint32
	Timers  []string
}

// Name returns the declared name of slot, or its number
func (b *Board) Name(slot uint8) string {
	if int(slot) < len(b.Timers) && b.Timers[slot] != "" {
		return b.Timers[slot]
	}
	return fmt.Sprintf("#%d", slot)
}

// Stats counts link health
type Stats struct {
	Frames      uint32
	Dropped     uint32
	Lost        uint32
	BadPayloads uint32
}

// Monitor pulls bytes from a port and hands decoded reports to a callback
type Monitor struct {
	r       io.Reader
	fifo    *protocol.FifoBuffer
	dec     protocol.FrameDecoder
	board   Board
	bad     uint32
	handler func(protocol.Report)
	stopEOF bool
	readBuf [256]byte
}

// New returns a monitor reading from r
func New(r io.Reader) *Monitor {
	return &Monitor{
		r:    r,
		fifo: protocol.NewFifoBuffer(4 * protocol.MessageMax),
	}
}

// OnReport sets the callback for every decoded report
func (m *Monitor) OnReport(fn func(protocol.Report)) {
	m.handler = fn
}

// StopAtEOF makes Run return once the reader reports io.EOF. Use it for
// recorded traces. Serial ports report io.EOF on every read timeout, so a
// live monitor leaves it off and keeps polling.
func (m *Monitor) StopAtEOF(stop bool) {
	m.stopEOF = stop
}

// Poll performs one read and processes every complete frame. A read
// timeout returning no data is not an error.
func (m *Monitor) Poll() error {
	room := m.fifo.Free()
	if room > len(m.readBuf) {
		room = len(m.readBuf)
	}
	n, err := m.r.Read(m.readBuf[:room])
	if n > 0 {
		m.fifo.Write(m.readBuf[:n])
		m.dec.Receive(m.fifo, m.handleFrame)
	}
	return err
}

// Run polls until ctx is cancelled or a read fails. io.EOF is a clean
// stop with StopAtEOF and an idle poll otherwise.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := m.Poll()
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			if m.stopEOF {
				return nil
			}
			continue
		}
		return fmt.Errorf("read trace: %w", err)
	}
}

func (m *Monitor) handleFrame(seq uint8, payload []byte) {
	reports, err := protocol.DecodeReports(payload)
	if err != nil {
		m.bad++
	}
	for _, r := range reports {
		m.learn(r)
		if m.handler != nil {
			m.handler(r)
		}
	}
}

func (m *Monitor) learn(r protocol.Report) {
	switch r.Kind {
	case protocol.KindHello:
		m.board = Board{Version: r.Value, Timers: make([]string, r.Slot)}
	case protocol.KindTimer:
		for int(r.Slot) >= len(m.board.Timers) {
			m.board.Timers = append(m.board.Timers, "")
		}
		m.board.Timers[r.Slot] = r.Name
	}
}

// Board returns what the firmware has announced so far
func (m *Monitor) Board() Board {
	return m.board
}

// Stats returns the link counters
func (m *Monitor) Stats() Stats {
	return Stats{
		Frames:      m.dec.Frames,
		Dropped:     m.dec.Dropped,
		Lost:        m.dec.Lost,
		BadPayloads: m.bad,
	}
}

// Format renders r as one line using the announced timer names
func (m *Monitor) Format(r protocol.Report) string {
	kind := protocol.KindName(r.Kind)
	switch r.Kind {
	case protocol.KindHello:
		return fmt.Sprintf("%-7s version=%d timers=%d", kind, r.Value, r.Slot)
	case protocol.KindTimer:
		return fmt.Sprintf("%-7s slot=%d name=%s", kind, r.Slot, r.Name)
	case protocol.KindEvent:
		return fmt.Sprintf("%-7s id=%d", kind, r.Value)
	case protocol.KindFeed:
		return fmt.Sprintf("%-7s count=%d", kind, r.Value)
	default:
		return fmt.Sprintf("%-7s slot=%s clock=0x%02x value=%d", kind, m.board.Name(r.Slot), r.Clock, r.Value)
	}
}
