package integrator_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/integrator"
	"github.com/df07/go-bidirectional-tracer/pkg/renderer"
	"github.com/df07/go-bidirectional-tracer/pkg/scene"
)

func smallMLTConfig() integrator.MLTConfig {
	return integrator.MLTConfig{
		MaxDepth:             3,
		MutationsPerPixel:    2,
		BootstrapPaths:       200,
		Chains:               8,
		Sigma:                0.01,
		LargeStepProbability: 0.3,
		Workers:              2,
	}
}

func TestMLT_BrightnessIsReproducible(t *testing.T) {
	sc := scene.NewCornellScene(16, 16)

	render := func() float64 {
		mlt := integrator.NewMLTIntegrator(smallMLTConfig(), core.NewMetrics(nil))
		film := renderer.NewFilm(16, 16)
		b, err := mlt.Render(context.Background(), sc, film)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		return b
	}

	b1 := render()
	b2 := render()
	if b1 != b2 {
		t.Errorf("bootstrap brightness differs between identical runs: %v vs %v", b1, b2)
	}
	if b1 <= 0 {
		t.Errorf("brightness estimate = %v, want > 0", b1)
	}
}

func TestMLT_RunsBudgetedMutations(t *testing.T) {
	sc := scene.NewCornellScene(16, 16)
	registry := prometheus.NewRegistry()
	metrics := core.NewMetrics(registry)

	config := smallMLTConfig()
	mlt := integrator.NewMLTIntegrator(config, metrics)
	film := renderer.NewFilm(16, 16)

	if _, err := mlt.Render(context.Background(), sc, film); err != nil {
		t.Fatalf("Render: %v", err)
	}

	wantMutations := float64(config.MutationsPerPixel * 16 * 16)
	gotMutations := testutil.ToFloat64(metrics.TotalMutations)
	if gotMutations != wantMutations {
		t.Errorf("TotalMutations = %v, want %v", gotMutations, wantMutations)
	}

	accepted := testutil.ToFloat64(metrics.AcceptedMutations)
	if accepted < 0 || accepted > gotMutations {
		t.Errorf("AcceptedMutations = %v, want value in [0, %v]", accepted, gotMutations)
	}
}

func TestMLT_SplatsLandOnFilm(t *testing.T) {
	sc := scene.NewCornellScene(16, 16)
	mlt := integrator.NewMLTIntegrator(smallMLTConfig(), core.NewMetrics(nil))
	film := renderer.NewFilm(16, 16)

	b, err := mlt.Render(context.Background(), sc, film)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	scale := mlt.SplatScale(b)
	lit := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			radiance := film.PixelRadiance(x, y, scale)
			if radiance.HasNaN() {
				t.Fatalf("pixel (%d,%d) has NaN radiance", x, y)
			}
			if radiance.Luminance() > 0 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no pixel received any splat")
	}
}

func TestMLT_RejectsInvalidConfig(t *testing.T) {
	sc := scene.NewCornellScene(16, 16)
	film := renderer.NewFilm(16, 16)

	config := smallMLTConfig()
	config.LargeStepProbability = 1.5
	mlt := integrator.NewMLTIntegrator(config, nil)
	if _, err := mlt.Render(context.Background(), sc, film); err == nil {
		t.Error("large step probability above 1 accepted")
	}

	config = smallMLTConfig()
	config.Sigma = -0.1
	mlt = integrator.NewMLTIntegrator(config, nil)
	if _, err := mlt.Render(context.Background(), sc, film); err == nil {
		t.Error("negative sigma accepted")
	}
}

func TestMLT_HonorsCancelledContext(t *testing.T) {
	sc := scene.NewCornellScene(16, 16)
	mlt := integrator.NewMLTIntegrator(smallMLTConfig(), core.NewMetrics(nil))
	film := renderer.NewFilm(16, 16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := mlt.Render(ctx, sc, film); err == nil {
		t.Error("Render with cancelled context returned nil error")
	}
}
