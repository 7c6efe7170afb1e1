package core

import "errors"

// Countdown widths
const (
	MinCountdownBytes = 1
	MaxCountdownBytes = 4
)

var ErrCountdownWidth = errors.New("countdown width out of range")

// Countdown is a multi-byte decrementing counter that posts an event when
// it reaches zero. Bytes are stored least significant first and the borrow
// is carried byte by byte.
type Countdown struct {
	value  [MaxCountdownBytes]uint8
	width  uint8
	event  EventID
	poster Poster
}

// NewCountdown creates a zeroed counter of width bytes
func NewCountdown(width uint8, event EventID, poster Poster) (*Countdown, error) {
	if width < MinCountdownBytes || width > MaxCountdownBytes {
		return nil, ErrCountdownWidth
	}
	return &Countdown{width: width, event: event, poster: poster}, nil
}

// Load sets the counter, truncated to its width
func (c *Countdown) Load(n uint32) {
	state := disableInterrupts()
	for i := uint8(0); i < MaxCountdownBytes; i++ {
		if i < c.width {
			c.value[i] = uint8(n >> (8 * i))
		} else {
			c.value[i] = 0
		}
	}
	restoreInterrupts(state)
}

// Value returns the current count
func (c *Countdown) Value() uint32 {
	state := disableInterrupts()
	var n uint32
	for i := uint8(0); i < c.width; i++ {
		n |= uint32(c.value[i]) << (8 * i)
	}
	restoreInterrupts(state)
	return n
}

// IsZero reports whether the counter has run out
func (c *Countdown) IsZero() bool {
	return c.Value() == 0
}

// Decrement counts down by one and posts the event on the transition to
// zero. A counter already at zero stays there and posts nothing. Safe from
// interrupt context.
func (c *Countdown) Decrement() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if c.isZero() {
		return false
	}
	for i := uint8(0); i < c.width; i++ {
		c.value[i]--
		if c.value[i] != 0xFF {
			break
		}
	}
	if c.isZero() {
		c.poster.Post(c.event)
		return true
	}
	return false
}

func (c *Countdown) isZero() bool {
	for i := uint8(0); i < c.width; i++ {
		if c.value[i] != 0 {
			return false
		}
	}
	return true
}
