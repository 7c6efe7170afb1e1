//go:build rp2040

package main

import "machine"

// hwWatchdog adapts machine.Watchdog to core.WatchdogDriver
type hwWatchdog struct{}

func (hwWatchdog) Configure(timeoutMillis uint32) error {
	return machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: timeoutMillis})
}

func (hwWatchdog) Start() error { return machine.Watchdog.Start() }
func (hwWatchdog) Update()      { machine.Watchdog.Update() }
