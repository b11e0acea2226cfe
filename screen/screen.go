// Package screen renders mux channel levels on a small monochrome OLED.
package screen

import (
	"image/color"
	"strconv"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
)

const (
	WIDTH  = 128
	HEIGHT = 64

	MAX_ROWS    = 8
	LABEL_WIDTH = 24
)

var (
	onColor = color.RGBA{255, 255, 255, 255}
)

// Display is what the screen needs from a display driver.
type Display interface {
	drivers.Displayer
	ClearBuffer()
}

type Screen struct {
	display   Display
	names     []string
	fullScale uint16
}

func NewScreen(display Display, names []string, fullScale uint16) *Screen {
	return &Screen{display: display, names: names, fullScale: fullScale}
}

// Splash shows a centered title, used while the firmware starts.
func (s *Screen) Splash(title string) error {
	s.display.ClearBuffer()
	_, outBox := tinyfont.LineWidth(&freemono.Regular9pt7b, title)
	x := int16(0)
	if outBox < WIDTH {
		x = int16((WIDTH - outBox) / 2)
	}
	tinyfont.WriteLine(s.display, &freemono.Regular9pt7b, x, HEIGHT/2+4, title, onColor)
	return s.display.Display()
}

// Pages returns how many screens of MAX_ROWS rows n channels need.
func Pages(n int) int {
	if n <= 0 {
		return 1
	}
	return (n + MAX_ROWS - 1) / MAX_ROWS
}

// Draw renders the first page of channels.
func (s *Screen) Draw(values []uint16) error {
	return s.DrawPage(values, 0)
}

// DrawPage renders channels page*MAX_ROWS up to MAX_ROWS further channels,
// one row each: the name and a bar filled in proportion to the raw value.
// Pages past the end wrap around.
func (s *Screen) DrawPage(values []uint16, page int) error {
	s.display.ClearBuffer()
	if len(values) == 0 {
		return s.display.Display()
	}

	first := (page % Pages(len(values))) * MAX_ROWS
	rows := len(values) - first
	if rows > MAX_ROWS {
		rows = MAX_ROWS
	}
	rowHeight := int16(HEIGHT / rows)

	for i := 0; i < rows; i++ {
		top := int16(i) * rowHeight
		tinyfont.WriteLine(s.display, &tinyfont.TomThumb, 0, top+rowHeight/2+3, s.name(first+i), onColor)
		s.bar(top+1, top+rowHeight-2, values[first+i])
	}
	return s.display.Display()
}

func (s *Screen) name(i int) string {
	if i < len(s.names) && s.names[i] != "" {
		return s.names[i]
	}
	return "ch" + strconv.Itoa(i)
}

// Width of the filled part of a bar for value.
func (s *Screen) fill(value uint16) int16 {
	inner := int32(WIDTH - LABEL_WIDTH - 2)
	if s.fullScale == 0 || value >= s.fullScale {
		return int16(inner)
	}
	return int16(int32(value) * inner / int32(s.fullScale))
}

func (s *Screen) bar(topY, bottomY int16, value uint16) {
	var leftX int16 = LABEL_WIDTH
	var rightX int16 = WIDTH - 1

	if bottomY <= topY {
		bottomY = topY
	}

	for x := leftX; x <= rightX; x++ {
		s.display.SetPixel(x, topY, onColor)
		s.display.SetPixel(x, bottomY, onColor)
	}
	for y := topY; y <= bottomY; y++ {
		s.display.SetPixel(leftX, y, onColor)
		s.display.SetPixel(rightX, y, onColor)
	}

	fill := s.fill(value)
	for x := leftX + 1; x < leftX+1+fill; x++ {
		for y := topY + 1; y < bottomY; y++ {
			s.display.SetPixel(x, y, onColor)
		}
	}
}
