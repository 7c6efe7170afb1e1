//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
)

// PWM slice 0 runs free as the 8-bit alarm counter: TOP=255 so the wrap
// interrupt fires on the 255 -> 0 overflow, and the integer divider sets
// the tick.
const (
	counterDivider = 250 // 125 MHz / 250 = 500 kHz, 2us per tick
	wrapMask       = 1 << 0
)

// pwmCounter implements core.AlarmCounter on PWM slice 0
type pwmCounter struct{}

func initCounter() *pwmCounter {
	rp.PWM.CH0_CSR.Set(0)
	rp.PWM.CH0_TOP.Set(0xFF)
	rp.PWM.CH0_DIV.Set(counterDivider << rp.PWM_CH0_DIV_INT_Pos)
	rp.PWM.CH0_CTR.Set(0)
	rp.PWM.INTE.ClearBits(wrapMask)
	rp.PWM.INTR.Set(wrapMask)

	intr := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, handleWrap)
	intr.SetPriority(0x00)
	intr.Enable()

	rp.PWM.CH0_CSR.SetBits(rp.PWM_CH0_CSR_EN)
	return &pwmCounter{}
}

func (c *pwmCounter) Elapsed() uint8 {
	return uint8(rp.PWM.CH0_CTR.Get())
}

// Reload writes the counter and drops a wrap that is already pending
func (c *pwmCounter) Reload(value uint8) {
	rp.PWM.CH0_CTR.Set(uint32(value))
	rp.PWM.INTR.Set(wrapMask)
}

func (c *pwmCounter) EnableAlarm(enabled bool) {
	if enabled {
		rp.PWM.INTE.SetBits(wrapMask)
	} else {
		rp.PWM.INTE.ClearBits(wrapMask)
	}
}

func handleWrap(interrupt.Interrupt) {
	rp.PWM.INTR.Set(wrapMask)
	mux.HandleAlarm()
}
