// Package serial opens the USB CDC port a tickmux board traces on
package serial

import (
	"errors"
	"io"
)

var ErrNoDevice = errors.New("serial: no device given")

// Port is the byte stream the monitor reads frames from
type Port interface {
	io.ReadWriteCloser

	// Flush discards anything the driver buffered before we attached
	Flush() error
}

// Config describes a port. USB CDC ignores the baud rate but the driver
// still wants one.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout int // milliseconds, 0 blocks
}

// DefaultConfig returns the settings the firmware's USB console uses
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
