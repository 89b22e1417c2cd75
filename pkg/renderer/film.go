package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"sync/atomic"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

// pixel accumulates per-pixel samples. Each pixel has a single writer
// during tiled rendering, so no synchronization is needed here.
type pixel struct {
	colorSum    core.Vec3
	sampleCount int
}

// splatChannel is one float64 color channel updated by atomic
// compare-and-swap on its bit pattern
type splatChannel struct {
	bits uint64
}

func (sc *splatChannel) add(v float64) {
	for {
		oldBits := atomic.LoadUint64(&sc.bits)
		newBits := math.Float64bits(math.Float64frombits(oldBits) + v)
		if atomic.CompareAndSwapUint64(&sc.bits, oldBits, newBits) {
			return
		}
	}
}

func (sc *splatChannel) load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&sc.bits))
}

type splatPixel struct {
	r, g, b splatChannel
}

// Film accumulates radiance from both rendering modes: per-pixel
// samples from tiled rendering, and splats arriving concurrently at
// arbitrary raster positions
type Film struct {
	width, height int
	pixels        []pixel
	splats        []splatPixel
}

// NewFilm creates a film of the given dimensions
func NewFilm(width, height int) *Film {
	return &Film{
		width:  width,
		height: height,
		pixels: make([]pixel, width*height),
		splats: make([]splatPixel, width*height),
	}
}

// Width returns the image width in pixels
func (f *Film) Width() int { return f.width }

// Height returns the image height in pixels
func (f *Film) Height() int { return f.height }

// AddSample accumulates a pixel sample. Safe only when each pixel has a
// single writer, which the tile renderer guarantees.
func (f *Film) AddSample(x, y int, color core.Vec3) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	p := &f.pixels[y*f.width+x]
	p.colorSum = p.colorSum.Add(color)
	p.sampleCount++
}

// AddSplat atomically accumulates a splat contribution at the given
// raster position. Safe for concurrent use.
func (f *Film) AddSplat(raster core.Vec2, color core.Vec3) {
	// Floor rather than truncate so positions just left of or above the
	// film fall outside the bounds check instead of binning into row or
	// column zero.
	x := int(math.Floor(raster.X))
	y := int(math.Floor(raster.Y))
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	if color.HasNaN() {
		return
	}
	sp := &f.splats[y*f.width+x]
	sp.r.add(color.X)
	sp.g.add(color.Y)
	sp.b.add(color.Z)
}

// PixelRadiance returns the reconstructed radiance of a pixel: the
// sample mean plus the scaled splat accumulation
func (f *Film) PixelRadiance(x, y int, splatScale float64) core.Vec3 {
	p := &f.pixels[y*f.width+x]
	var radiance core.Vec3
	if p.sampleCount > 0 {
		radiance = p.colorSum.Multiply(1.0 / float64(p.sampleCount))
	}
	sp := &f.splats[y*f.width+x]
	splat := core.NewVec3(sp.r.load(), sp.g.load(), sp.b.load())
	return radiance.Add(splat.Multiply(splatScale))
}

// Image converts the film into an 8-bit RGBA image with gamma 2
// correction
func (f *Film) Image(splatScale float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			radiance := f.PixelRadiance(x, y, splatScale)
			corrected := radiance.Clamp(0, 1).GammaCorrect(2.0)
			img.Set(x, y, color.RGBA{
				R: uint8(corrected.X * 255.999),
				G: uint8(corrected.Y * 255.999),
				B: uint8(corrected.Z * 255.999),
				A: 255,
			})
		}
	}
	return img
}

// WritePNG writes the film to a PNG file
func (f *Film) WritePNG(path string, splatScale float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, f.Image(splatScale)); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
