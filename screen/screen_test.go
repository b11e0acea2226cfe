package screen

import (
	"image/color"
	"testing"
)

type fakeDisplay struct {
	pixels   map[[2]int16]bool
	cleared  int
	displays int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{pixels: make(map[[2]int16]bool)}
}

func (d *fakeDisplay) Size() (int16, int16) { return WIDTH, HEIGHT }

func (d *fakeDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.pixels[[2]int16{x, y}] = c.R != 0
}

func (d *fakeDisplay) Display() error {
	d.displays++
	return nil
}

func (d *fakeDisplay) ClearBuffer() {
	d.cleared++
	d.pixels = make(map[[2]int16]bool)
}

func (d *fakeDisplay) on(x, y int16) bool {
	return d.pixels[[2]int16{x, y}]
}

func TestFill(t *testing.T) {
	s := NewScreen(newFakeDisplay(), nil, 4095)
	inner := int16(WIDTH - LABEL_WIDTH - 2)

	testCases := []struct {
		value uint16
		want  int16
	}{
		{0, 0},
		{4095, inner},
		{65535, inner},
		{2048, int16(2048 * int32(inner) / 4095)},
	}
	for _, tc := range testCases {
		if got := s.fill(tc.value); got != tc.want {
			t.Errorf("fill(%d): expected %d, got %d", tc.value, tc.want, got)
		}
	}
}

func TestDrawBars(t *testing.T) {
	d := newFakeDisplay()
	s := NewScreen(d, []string{"A", "B"}, 100)

	if err := s.Draw([]uint16{0, 100}); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if d.cleared != 1 || d.displays != 1 {
		t.Errorf("Expected one clear and one flush, got %d/%d", d.cleared, d.displays)
	}

	// row 0 spans y 0..31, row 1 spans y 32..63
	mid0, mid1 := int16(16), int16(48)
	x := int16(LABEL_WIDTH + 10)
	if d.on(x, mid0) {
		t.Error("Empty bar must not be filled")
	}
	if !d.on(x, mid1) {
		t.Error("Full bar must be filled")
	}
	if !d.on(LABEL_WIDTH, mid0) || !d.on(WIDTH-1, mid0) {
		t.Error("Bar outline missing")
	}
}

func TestDrawLimitsRows(t *testing.T) {
	d := newFakeDisplay()
	s := NewScreen(d, nil, 4095)

	values := make([]uint16, 16)
	for i := range values {
		values[i] = 4095
	}
	if err := s.Draw(values); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	for p, on := range d.pixels {
		if on && (p[1] < 0 || p[1] >= HEIGHT) {
			t.Fatalf("Pixel drawn outside the display at %d,%d", p[0], p[1])
		}
	}
	if s.name(3) != "ch3" {
		t.Errorf("Expected default name ch3, got %q", s.name(3))
	}
}

func TestDrawEmpty(t *testing.T) {
	d := newFakeDisplay()
	s := NewScreen(d, nil, 4095)
	if err := s.Draw(nil); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	if len(d.pixels) != 0 {
		t.Errorf("Expected blank screen, got %d pixels", len(d.pixels))
	}
}

func TestDrawPage(t *testing.T) {
	values := make([]uint16, 16)
	for i := 8; i < 16; i++ {
		values[i] = 4095
	}
	x, y := int16(LABEL_WIDTH+10), int16(4)

	d := newFakeDisplay()
	s := NewScreen(d, nil, 4095)
	if err := s.DrawPage(values, 0); err != nil {
		t.Fatalf("DrawPage failed: %v", err)
	}
	if d.on(x, y) {
		t.Error("Page 0 must show the empty channels 0-7")
	}

	if err := s.DrawPage(values, 1); err != nil {
		t.Fatalf("DrawPage failed: %v", err)
	}
	if !d.on(x, y) {
		t.Error("Page 1 must show the full channels 8-15")
	}

	if err := s.DrawPage(values, 2); err != nil {
		t.Fatalf("DrawPage failed: %v", err)
	}
	if d.on(x, y) {
		t.Error("Page 2 must wrap around to channels 0-7")
	}
}

func TestPagesAndNames(t *testing.T) {
	testCases := []struct{ n, pages int }{{0, 1}, {1, 1}, {8, 1}, {9, 2}, {16, 2}, {256, 32}}
	for _, tc := range testCases {
		if got := Pages(tc.n); got != tc.pages {
			t.Errorf("Pages(%d): expected %d, got %d", tc.n, tc.pages, got)
		}
	}

	s := NewScreen(newFakeDisplay(), []string{"Game"}, 4095)
	for i, want := range map[int]string{0: "Game", 9: "ch9", 10: "ch10", 15: "ch15", 255: "ch255"} {
		if got := s.name(i); got != want {
			t.Errorf("name(%d): expected %q, got %q", i, want, got)
		}
	}
}
