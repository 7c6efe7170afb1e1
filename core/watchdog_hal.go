package core

// WatchdogDriver is the hardware watchdog. TinyGo's machine.Watchdog is
// wrapped by target code to satisfy it.
type WatchdogDriver interface {
	// Configure sets the timeout. It must be called before Start.
	Configure(timeoutMillis uint32) error

	// Start enables the watchdog. Most hardware cannot stop it again.
	Start() error

	// Update feeds the watchdog
	Update()
}
