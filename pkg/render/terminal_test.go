package render

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func TestFramebufferDraw(t *testing.T) {
	fb := NewFramebuffer(3, 3)
	fb.Clear(ColorBlue)
	fb.SetPixel(0, 0, ColorRed)
	fb.SetPixel(0, 1, ColorGreen)

	scr := uv.NewScreenBuffer(3, 2)
	fb.Draw(scr, scr.Bounds())

	cell := scr.CellAt(0, 0)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell (0, 0) = %+v, want a half block", cell)
	}
	if cell.Style.Fg != ColorRed || cell.Style.Bg != ColorGreen {
		t.Errorf("cell (0, 0) colors = %v / %v, want red over green", cell.Style.Fg, cell.Style.Bg)
	}

	// Odd height: the last terminal row has no bottom pixel.
	last := scr.CellAt(1, 1)
	if last == nil || last.Style.Fg != ColorBlue || last.Style.Bg != nil {
		t.Errorf("cell (1, 1) = %+v, want blue over nothing", last)
	}
}

func TestFramebufferDrawOffset(t *testing.T) {
	fb := NewFramebuffer(2, 2)
	fb.Clear(ColorWhite)

	scr := uv.NewScreenBuffer(6, 3)
	fb.Draw(scr, uv.Rect(3, 1, 2, 1))

	if c := scr.CellAt(3, 1); c == nil || c.Style.Fg != ColorWhite {
		t.Errorf("cell (3, 1) = %+v, want the framebuffer origin", c)
	}
	if c := scr.CellAt(0, 0); c != nil && c.Content == "▀" {
		t.Errorf("cell (0, 0) drawn outside the area")
	}
}
