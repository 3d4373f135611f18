package imaging

import (
	"github.com/nfnt/resize"
)

// TargetSize is the model's fixed input resolution.
const TargetSize = 256

const channels = 3

// Prepare resizes a PixelGrid to size x size with bilinear interpolation and
// rescales every channel into [0,1]. Aspect ratio is not preserved; the model
// was trained on squashed 256x256 crops. The output is NHWC-interleaved
// float32 of length size*size*3 regardless of the source dimensions.
func Prepare(grid *PixelGrid, size int) []float32 {
	if size <= 0 {
		size = TargetSize
	}

	resized := resize.Resize(uint(size), uint(size), grid.Img, resize.Bilinear)
	bounds := resized.Bounds()

	out := make([]float32, size*size*channels)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			i := (y*size + x) * channels
			out[i] = float32(r>>8) / 255.0
			out[i+1] = float32(g>>8) / 255.0
			out[i+2] = float32(b>>8) / 255.0
		}
	}

	return out
}
