// Package sim simulates the 8-bit overflow counter behind core.TimerMux
// so the scheduler can run on a host, tick by tick.
package sim

// Counter is a simulated 8-bit up-counter with an overflow interrupt.
//
// Time only moves in Tick and Reload. Code between ticks (foreground calls,
// the interrupt handler) takes no simulated time, except that every Reload
// costs Latency ticks during which the register does not count, the way a
// PIC Timer0 write inhibits two increments.
type Counter struct {
	value   uint8
	enabled bool
	pending bool
	latency uint8
	time    uint32
	reloads uint32
}

// NewCounter creates a counter holding start with the alarm disabled
func NewCounter(start, latency uint8) *Counter {
	return &Counter{value: start, latency: latency}
}

// Elapsed reads the register
func (c *Counter) Elapsed() uint8 {
	return c.value
}

// Reload writes the register and acknowledges a pending overflow
func (c *Counter) Reload(value uint8) {
	c.value = value
	c.pending = false
	c.time += uint32(c.latency)
	c.reloads++
}

// EnableAlarm turns the overflow interrupt on or off
func (c *Counter) EnableAlarm(enabled bool) {
	c.enabled = enabled
}

// AlarmEnabled reports the interrupt enable bit
func (c *Counter) AlarmEnabled() bool {
	return c.enabled
}

// Tick advances one tick and reports whether the overflow interrupt should
// be taken now. An overflow while disabled stays pending.
func (c *Counter) Tick() bool {
	c.time++
	c.value++
	if c.value == 0 {
		c.pending = true
	}
	return c.pending && c.enabled
}

// Ack clears the pending overflow, as interrupt glue does before running
// the handler.
func (c *Counter) Ack() {
	c.pending = false
}

// Time returns the ticks elapsed since the counter was created
func (c *Counter) Time() uint32 {
	return c.time
}

// Reloads returns how many times the register was written
func (c *Counter) Reloads() uint32 {
	return c.reloads
}
