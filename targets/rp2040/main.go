//go:build rp2040

package main

import (
	"machine"

	"tickmux/core"
	"tickmux/protocol"
)

// Events, lowest id dispatched first
const (
	evMissed core.EventID = iota + 1
	evBase
	evHeartbeat
	evBlinkOff
	evFlush
)

// Timer slots
const (
	slotBase core.TimerSlot = iota
	slotFlush
)

const (
	baseTicks      = 125  // 250us at 2us per tick
	heartbeatBases = 4000 // 1s
	blinkBases     = 200  // 50ms
	flushDelay     = 100  // Coalesce reports for 200us before writing
	watchdogMillis = 500
)

// ledPin drives the onboard WS2812 of RP2040-Zero style boards
const ledPin = machine.GPIO16

var timerConfig = core.TimerConfig{
	Timers: []core.TimerDecl{
		{Name: "base", Event: evBase, Restart: baseTicks},
		{Name: "flush", Event: evFlush},
	},
	Diagnostics: true,
	MissedEvent: evMissed,
}

var (
	mux       *core.TimerMux
	loop      *core.EventLoop
	tracer    *protocol.Tracer
	led       *statusLED
	watchdog  *core.Watchdog
	heartbeat *core.Countdown
	blink     *core.Countdown
)

func main() {
	// Clear any watchdog state left over from before the reset
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	machine.Serial.Configure(machine.UARTConfig{})
	tracer = protocol.NewTracer(machine.Serial)
	led = newStatusLED(ledPin)

	loop = core.NewEventLoop(core.NewEventQueue())
	queue := loop.Queue()

	var err error
	mux, err = core.NewTimerMux(timerConfig, initCounter(), queue)
	if err != nil {
		halt()
	}
	for i := 0; i < mux.NumTimers(); i++ {
		mux.Init(core.TimerSlot(i))
	}

	heartbeat, err = core.NewCountdown(2, evHeartbeat, queue)
	if err != nil {
		halt()
	}
	blink, err = core.NewCountdown(1, evBlinkOff, queue)
	if err != nil {
		halt()
	}
	heartbeat.Load(heartbeatBases)

	loop.Handle(evMissed, onMissed)
	loop.Handle(evBase, onBase)
	loop.Handle(evHeartbeat, onHeartbeat)
	loop.Handle(evBlinkOff, func(core.EventID) { led.off() })
	loop.Handle(evFlush, func(core.EventID) { tracer.Flush() })

	watchdog, err = core.NewWatchdog(hwWatchdog{}, watchdogMillis)
	if err != nil {
		halt()
	}
	watchdog.AttachIdle(loop)

	tracer.Hello(timerConfig)
	tracer.Flush()

	mux.Start(slotBase, baseTicks)
	if err := watchdog.Start(); err != nil {
		halt()
	}
	loop.Run()
}

func onBase(core.EventID) {
	heartbeat.Decrement()
	blink.Decrement()
}

func onHeartbeat(core.EventID) {
	heartbeat.Load(heartbeatBases)
	blink.Load(blinkBases)
	led.on()
	report(protocol.Report{Kind: protocol.KindFeed, Value: watchdog.Feeds()})
}

// onMissed ships the timing ring so the host sees what led up to it
func onMissed(core.EventID) {
	led.alarm()
	tracer.Timing(core.TimingEvents())
	core.ClearTimingRing()
	report(protocol.Report{Kind: protocol.KindEvent, Value: uint32(evMissed)})
}

// report queues r and arms the flush timer if it is idle
func report(r protocol.Report) {
	tracer.Report(r)
	if !mux.Armed(slotFlush) {
		mux.Start(slotFlush, flushDelay)
	}
}

func halt() {
	for {
		led.alarm()
	}
}
