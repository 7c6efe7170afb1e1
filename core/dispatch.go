package core

// EventHandler handles one dispatched event
type EventHandler func(id EventID)

// EventLoop dispatches queued events to their handlers from the foreground.
// Handlers are registered once at startup, like the command registry.
type EventLoop struct {
	queue    *EventQueue
	handlers [MaxEvents]EventHandler
	idle     []func()
}

// NewEventLoop creates a loop draining queue
func NewEventLoop(queue *EventQueue) *EventLoop {
	return &EventLoop{queue: queue}
}

// Queue returns the queue the loop drains
func (l *EventLoop) Queue() *EventQueue {
	return l.queue
}

// Handle registers fn for id, replacing any previous handler
func (l *EventLoop) Handle(id EventID, fn EventHandler) {
	l.handlers[id] = fn
}

// OnIdle registers fn to run whenever a pass finds nothing pending
func (l *EventLoop) OnIdle(fn func()) {
	l.idle = append(l.idle, fn)
}

// RunPending dispatches pending events, lowest id first, until the queue
// is empty. Events posted by handlers are dispatched in the same call.
// Returns the number of events dispatched. Events without a handler are
// dropped.
func (l *EventLoop) RunPending() int {
	n := 0
	for {
		id, ok := l.queue.Take()
		if !ok {
			break
		}
		if fn := l.handlers[id]; fn != nil {
			fn(id)
		}
		n++
	}
	if n == 0 {
		for _, fn := range l.idle {
			fn()
		}
	}
	return n
}

// Run dispatches forever. Target main loops call it last.
func (l *EventLoop) Run() {
	for {
		l.RunPending()
	}
}
