package core

// MaxEvents is the number of distinct event ids a queue can hold
const MaxEvents = 256

// EventQueue is a set of pending events, one bit per id. Posting an event
// that is already pending is absorbed. Lower ids are taken first, so the
// id doubles as the priority.
type EventQueue struct {
	bits    [MaxEvents / 8]uint8
	pending uint16 // Number of set bits
}

// NewEventQueue creates an empty queue
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Post marks id pending. Safe from interrupt context.
func (q *EventQueue) Post(id EventID) {
	state := disableInterrupts()
	mask := uint8(1) << (id % 8)
	if q.bits[id/8]&mask == 0 {
		q.bits[id/8] |= mask
		q.pending++
	}
	restoreInterrupts(state)
}

// IsPending reports whether id is pending
func (q *EventQueue) IsPending(id EventID) bool {
	state := disableInterrupts()
	set := q.bits[id/8]&(uint8(1)<<(id%8)) != 0
	restoreInterrupts(state)
	return set
}

// Pending reports whether any event is pending
func (q *EventQueue) Pending() bool {
	state := disableInterrupts()
	busy := q.pending != 0
	restoreInterrupts(state)
	return busy
}

// Take removes and returns the lowest pending id
func (q *EventQueue) Take() (EventID, bool) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if q.pending == 0 {
		return 0, false
	}
	for i, b := range q.bits {
		if b == 0 {
			continue
		}
		for bit := uint8(0); bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				q.bits[i] &^= 1 << bit
				q.pending--
				return EventID(uint8(i)*8 + bit), true
			}
		}
	}
	return 0, false
}

// Clear drops every pending event
func (q *EventQueue) Clear() {
	state := disableInterrupts()
	q.bits = [MaxEvents / 8]uint8{}
	q.pending = 0
	restoreInterrupts(state)
}
