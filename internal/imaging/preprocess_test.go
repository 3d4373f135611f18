package imaging

import (
	"image"
	"image/color"
	"testing"
)

func uniformGrid(width, height int, c color.RGBA) *PixelGrid {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return &PixelGrid{Img: img, Format: "png", Height: height, Width: width, Channels: 3}
}

func TestPrepareShapeAndRange(t *testing.T) {
	for _, dims := range [][2]int{{10, 10}, {640, 480}, {300, 200}, {1, 1}, {1024, 3}} {
		grid := uniformGrid(dims[0], dims[1], color.RGBA{R: 120, G: 45, B: 200, A: 255})

		out := Prepare(grid, TargetSize)
		if len(out) != TargetSize*TargetSize*3 {
			t.Fatalf("input %dx%d: got %d values, want %d", dims[0], dims[1], len(out), TargetSize*TargetSize*3)
		}
		for i, v := range out {
			if v < 0 || v > 1 {
				t.Fatalf("input %dx%d: value %f at index %d outside [0,1]", dims[0], dims[1], v, i)
			}
		}
	}
}

func TestPrepareNormalization(t *testing.T) {
	white := Prepare(uniformGrid(50, 40, color.RGBA{255, 255, 255, 255}), TargetSize)
	for i, v := range white {
		if v != 1.0 {
			t.Fatalf("white image: got %f at index %d, want 1.0", v, i)
		}
	}

	black := Prepare(uniformGrid(50, 40, color.RGBA{0, 0, 0, 255}), TargetSize)
	for i, v := range black {
		if v != 0.0 {
			t.Fatalf("black image: got %f at index %d, want 0.0", v, i)
		}
	}
}

func TestPrepareChannelOrder(t *testing.T) {
	// Pure red input: every pixel should come out as (1, 0, 0) interleaved.
	out := Prepare(uniformGrid(30, 30, color.RGBA{R: 255, A: 255}), TargetSize)
	for i := 0; i < len(out); i += 3 {
		if out[i] != 1.0 || out[i+1] != 0.0 || out[i+2] != 0.0 {
			t.Fatalf("pixel %d: got (%f, %f, %f), want (1, 0, 0)", i/3, out[i], out[i+1], out[i+2])
		}
	}
}

func TestPrepareDeterministic(t *testing.T) {
	grid := uniformGrid(123, 77, color.RGBA{R: 10, G: 200, B: 99, A: 255})

	first := Prepare(grid, TargetSize)
	second := Prepare(grid, TargetSize)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("outputs differ at index %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestPrepareDefaultSize(t *testing.T) {
	out := Prepare(uniformGrid(10, 10, color.RGBA{A: 255}), 0)
	if len(out) != TargetSize*TargetSize*3 {
		t.Fatalf("got %d values, want default target size output", len(out))
	}
}
