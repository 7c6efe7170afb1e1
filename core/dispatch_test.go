package core

import "testing"

func TestEventLoopDispatchOrder(t *testing.T) {
	loop := NewEventLoop(NewEventQueue())

	var order []EventID
	handler := func(id EventID) { order = append(order, id) }
	loop.Handle(5, handler)
	loop.Handle(1, handler)
	loop.Handle(9, handler)

	loop.Queue().Post(9)
	loop.Queue().Post(5)
	loop.Queue().Post(1)

	if n := loop.RunPending(); n != 3 {
		t.Errorf("Expected 3 dispatched events, got %d", n)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 5 || order[2] != 9 {
		t.Errorf("Expected order [1 5 9], got %v", order)
	}
}

func TestEventLoopHandlerPostsEvent(t *testing.T) {
	loop := NewEventLoop(NewEventQueue())

	var got []EventID
	loop.Handle(4, func(id EventID) {
		got = append(got, id)
		loop.Queue().Post(2)
	})
	loop.Handle(2, func(id EventID) { got = append(got, id) })

	loop.Queue().Post(4)
	loop.RunPending()

	if len(got) != 2 || got[1] != 2 {
		t.Errorf("Event posted by a handler should run in the same pass, got %v", got)
	}
}

func TestEventLoopUnhandledDropped(t *testing.T) {
	loop := NewEventLoop(NewEventQueue())

	loop.Queue().Post(42)
	if n := loop.RunPending(); n != 1 {
		t.Errorf("Expected 1 event consumed, got %d", n)
	}
	if loop.Queue().Pending() {
		t.Error("Unhandled event should be dropped")
	}
}

func TestEventLoopIdleHooks(t *testing.T) {
	loop := NewEventLoop(NewEventQueue())

	idles := 0
	loop.OnIdle(func() { idles++ })
	loop.Handle(1, func(EventID) {})

	loop.RunPending()
	loop.Queue().Post(1)
	loop.RunPending()
	loop.RunPending()

	if idles != 2 {
		t.Errorf("Expected 2 idle passes, got %d", idles)
	}
}
