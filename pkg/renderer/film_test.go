package renderer

import (
	"math"
	"sync"
	"testing"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
)

func TestFilm_AddSampleAveraging(t *testing.T) {
	film := NewFilm(4, 4)

	film.AddSample(1, 2, core.NewVec3(1, 0, 0))
	film.AddSample(1, 2, core.NewVec3(0, 1, 0))

	got := film.PixelRadiance(1, 2, 0)
	want := core.NewVec3(0.5, 0.5, 0)
	if got != want {
		t.Errorf("PixelRadiance = %v, want %v", got, want)
	}
}

func TestFilm_SplatScaling(t *testing.T) {
	film := NewFilm(4, 4)

	film.AddSplat(core.NewVec2(2.7, 3.2), core.NewVec3(1, 2, 3))

	got := film.PixelRadiance(2, 3, 0.5)
	want := core.NewVec3(0.5, 1, 1.5)
	if got != want {
		t.Errorf("PixelRadiance = %v, want %v", got, want)
	}
}

func TestFilm_SplatOutOfBoundsIgnored(t *testing.T) {
	film := NewFilm(4, 4)

	film.AddSplat(core.NewVec2(-1, 0), core.NewVec3(1, 1, 1))
	film.AddSplat(core.NewVec2(0, 4), core.NewVec3(1, 1, 1))
	film.AddSplat(core.NewVec2(4, 0), core.NewVec3(1, 1, 1))

	// Fractional positions just outside the film must not round into
	// the edge pixels.
	film.AddSplat(core.NewVec2(-0.5, 1.5), core.NewVec3(1, 1, 1))
	film.AddSplat(core.NewVec2(1.5, -0.5), core.NewVec3(1, 1, 1))

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if r := film.PixelRadiance(x, y, 1); !r.IsZero() {
				t.Errorf("pixel (%d,%d) = %v, want zero", x, y, r)
			}
		}
	}
}

func TestFilm_ConcurrentSplats(t *testing.T) {
	film := NewFilm(2, 2)

	const workers = 8
	const splatsPerWorker = 1000

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < splatsPerWorker; i++ {
				film.AddSplat(core.NewVec2(0.5, 0.5), core.NewVec3(1, 0.5, 0.25))
			}
		}()
	}
	wg.Wait()

	got := film.PixelRadiance(0, 0, 1)
	want := float64(workers * splatsPerWorker)
	if math.Abs(got.X-want) > 1e-6 {
		t.Errorf("red channel = %v, want %v, atomic accumulation lost splats", got.X, want)
	}
	if math.Abs(got.Y-want*0.5) > 1e-6 {
		t.Errorf("green channel = %v, want %v", got.Y, want*0.5)
	}
}
