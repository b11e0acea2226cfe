//go:build tinygo

package screen

import (
	"machine"

	"tinygo.org/x/drivers/sh1106"
)

const ADDR = 0x3C

// NewSH1106 configures an SH1106 OLED on bus.
func NewSH1106(bus *machine.I2C) *sh1106.Device {
	disp := sh1106.NewI2C(bus)
	disp.Configure(sh1106.Config{
		Width:    WIDTH,
		Height:   HEIGHT,
		VccState: sh1106.SWITCHCAPVCC,
		Address:  ADDR,
	})
	disp.ClearBuffer()
	return &disp
}
