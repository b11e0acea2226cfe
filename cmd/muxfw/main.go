//go:build tinygo

package main

import (
	"machine"
	"time"

	"analog-mux/board"
	"analog-mux/multiplexer"
	"analog-mux/protocol"
	screenlib "analog-mux/screen"
)

const (
	analogPin    = multiplexer.Pin(machine.ADC0)
	samplePeriod = 50 * time.Millisecond
	fullScale    = 4095
	// sweeps each screen page stays up
	pageSweeps   = 40
)

var (
	// 4067: S0..S3, S0 is the least significant bit
	selectPins = []multiplexer.Pin{
		multiplexer.Pin(machine.GPIO2),
		multiplexer.Pin(machine.GPIO3),
		multiplexer.Pin(machine.GPIO4),
		multiplexer.Pin(machine.GPIO5),
	}
	names = []string{"Game", "Chat", "Media", "Aux", "Speak"}
)

func main() {
	time.Sleep(time.Second * 2)

	mux := multiplexer.NewAnalogMux(board.New())
	if err := protocol.CheckSelectCount(len(selectPins)); err != nil {
		panic(err)
	}
	if err := mux.Begin(analogPin, selectPins...); err != nil {
		panic(err)
	}
	println("Multiplexer ready with", mux.ChannelCount(), "channels")

	screen := initScreen()

	serial := machine.Serial
	send := func(f *protocol.Frame) {
		if _, err := serial.Write(protocol.Marshal(*f)); err != nil {
			println("ERROR: ", err.Error())
		}
	}
	send(protocol.NewInfo(uint8(mux.SelectCount()), uint16(mux.SignalPin())))

	buffer := make([]byte, 0, protocol.FRAME_SIZE)
	values := make([]multiplexer.Value, 0, mux.ChannelCount())
	raw := make([]uint16, 0, mux.ChannelCount())
	lastSample := time.Time{}
	sweeps := 0

	for {
		// Handle incoming serial data
		for serial.Buffered() > 0 {
			b, err := serial.ReadByte()
			if err != nil {
				println("Error reading serial:", err.Error())
				break
			}
			buffer = append(buffer, b)
			if len(buffer) == 2 && !protocol.IsFrameAtStart(buffer) {
				buffer = buffer[1:]
				continue
			}
			if len(buffer) < protocol.FRAME_SIZE {
				continue
			}

			frame, ok := protocol.Unmarshal(buffer)
			buffer = buffer[:0]
			if !ok {
				println("Invalid frame received")
				continue
			}
			handleFrame(mux, frame, send)
		}

		if time.Since(lastSample) < samplePeriod {
			time.Sleep(time.Millisecond * 3)
			continue
		}
		lastSample = time.Now()

		var err error
		values, err = mux.ReadAll(values[:0])
		if err != nil {
			println("Error sampling:", err.Error())
			continue
		}
		raw = raw[:0]
		for ch, v := range values {
			send(protocol.NewSample(uint8(ch), uint16(v)))
			raw = append(raw, uint16(v))
		}
		if screen != nil {
			screen.DrawPage(raw, sweeps/pageSweeps)
		}
		sweeps++
	}
}

func handleFrame(mux *multiplexer.AnalogMux, f protocol.Frame, send func(*protocol.Frame)) {
	switch f.Type {
	case protocol.FRAME_TYPE_READ:
		v, err := mux.ReadChannel(uint(f.Channel))
		if err != nil {
			println("Error reading channel", f.Channel, err.Error())
			return
		}
		// truncated channels are reported as the channel actually sampled
		ch, err := mux.CurrentChannel()
		if err != nil {
			ch = uint(f.Channel)
		}
		send(protocol.NewSample(uint8(ch), uint16(v)))
	default:
		println("Received unexpected frame:", f.String())
	}
}

func initScreen() *screenlib.Screen {
	i2c := machine.I2C0
	err := i2c.Configure(machine.I2CConfig{
		SDA:       machine.GPIO0,
		SCL:       machine.GPIO1,
		Frequency: 400000,
	})
	if err != nil {
		println("Failed to configure I2C bus, running without screen")
		return nil
	}
	if i2c.Tx(screenlib.ADDR, []byte{0x00}, nil) != nil {
		println("No screen found at 0x3C")
		return nil
	}

	s := screenlib.NewScreen(screenlib.NewSH1106(i2c), names, fullScale)
	s.Splash("analog-mux")
	println("Display initialized")
	return s
}
