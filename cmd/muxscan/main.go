//go:build tinygo

// muxscan walks every channel, checks the select lines read back as the
// channel just driven and prints the raw samples.
package main

import (
	"machine"
	"strconv"
	"time"

	"analog-mux/board"
	"analog-mux/multiplexer"
)

func main() {
	time.Sleep(time.Second * 2)

	mux := multiplexer.NewAnalogMux(board.New())
	err := mux.Begin(multiplexer.Pin(machine.ADC0),
		multiplexer.Pin(machine.GPIO2),
		multiplexer.Pin(machine.GPIO3),
		multiplexer.Pin(machine.GPIO4),
		multiplexer.Pin(machine.GPIO5),
	)
	if err != nil {
		panic(err)
	}

	for {
		println("Scanning", mux.ChannelCount(), "channels")
		for ch := uint(0); ch < mux.ChannelCount(); ch++ {
			v, err := mux.ReadChannel(ch)
			if err != nil {
				panic(err)
			}
			current, err := mux.CurrentChannel()
			if err != nil {
				panic(err)
			}
			if current != ch {
				println("Select lines read back", current, "after driving", ch, "- check wiring")
			}
			println("Channel", ch, "raw", v, "0x"+strconv.FormatUint(uint64(v), 16))
		}
		time.Sleep(time.Second * 10)
	}
}
