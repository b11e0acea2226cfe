package protocol

import (
	"errors"
	"strconv"

	"github.com/sigurn/crc8"
)

type FrameType uint8

const (
	// device -> host
	FRAME_TYPE_SAMPLE FrameType = iota + 1
	FRAME_TYPE_INFO

	// host -> device
	FRAME_TYPE_READ
)

const (
	SIGNATURE  uint8 = 0x69
	FRAME_SIZE       = 7

	// channel numbers travel in one byte
	MAX_SELECT_PINS = 8
)

var ErrTooManySelectPins = errors.New("protocol: channel numbers of more than 8 select pins do not fit a frame")

// CheckSelectCount reports whether every channel of a mux with selectCount
// select pins can be sent in a frame.
func CheckSelectCount(selectCount int) error {
	if selectCount > MAX_SELECT_PINS {
		return ErrTooManySelectPins
	}
	return nil
}

var crcTable = crc8.MakeTable(crc8.Params{
	Poly: 0x9B,
	Init: 0x12,
	Name: "CRC-8/AnalogMux",
})

// Frame is one fixed size message on the serial link. For INFO frames
// Channel carries the select pin count and Value the analog pin.
type Frame struct {
	Type    FrameType
	Channel uint8
	Value   uint16
}

func Marshal(f Frame) []byte {
	data := []byte{SIGNATURE, SIGNATURE, uint8(f.Type), f.Channel, uint8(f.Value >> 8), uint8(f.Value), 0}
	data[6] = crc8.Checksum(data[2:6], crcTable)
	return data
}

func Unmarshal(data []byte) (Frame, bool) {
	if len(data) != FRAME_SIZE {
		return Frame{}, false
	}
	if !IsFrameAtStart(data) {
		return Frame{}, false
	}
	if crc8.Checksum(data[2:6], crcTable) != data[6] {
		return Frame{}, false
	}
	return Frame{
		Type:    FrameType(data[2]),
		Channel: data[3],
		Value:   uint16(data[4])<<8 | uint16(data[5]),
	}, true
}

func NewSample(channel uint8, value uint16) *Frame {
	return &Frame{Type: FRAME_TYPE_SAMPLE, Channel: channel, Value: value}
}

func NewRead(channel uint8) *Frame {
	return &Frame{Type: FRAME_TYPE_READ, Channel: channel}
}

func NewInfo(selectCount uint8, analogPin uint16) *Frame {
	return &Frame{Type: FRAME_TYPE_INFO, Channel: selectCount, Value: analogPin}
}

func (f *Frame) String() string {
	channel := strconv.Itoa(int(f.Channel))
	value := strconv.Itoa(int(f.Value))

	switch f.Type {
	case FRAME_TYPE_SAMPLE:
		return "Sample ch" + channel + " " + value
	case FRAME_TYPE_INFO:
		return "Info   sel" + channel + " ain" + value
	case FRAME_TYPE_READ:
		return "Read   ch" + channel
	default:
		return "Unknown ch" + channel + " " + value
	}
}

func IsFrameAtStart(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	if data[0] != SIGNATURE || data[1] != SIGNATURE {
		return false
	}
	return true
}
