//go:build rp2040

package main

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

var (
	colorOff   = color.RGBA{}
	colorBeat  = color.RGBA{G: 0x10}
	colorAlarm = color.RGBA{R: 0x20}
)

// statusLED is a single WS2812 pixel showing the heartbeat, red once a
// deadline has been missed.
type statusLED struct {
	dev    ws2812.Device
	pixel  [1]color.RGBA
	missed bool
}

func newStatusLED(pin machine.Pin) *statusLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l := &statusLED{dev: ws2812.New(pin)}
	l.set(colorOff)
	return l
}

func (l *statusLED) on() {
	if l.missed {
		l.set(colorAlarm)
		return
	}
	l.set(colorBeat)
}

func (l *statusLED) off() { l.set(colorOff) }

func (l *statusLED) alarm() {
	l.missed = true
	l.set(colorAlarm)
}

func (l *statusLED) set(c color.RGBA) {
	l.pixel[0] = c
	l.dev.WriteColors(l.pixel[:])
}
