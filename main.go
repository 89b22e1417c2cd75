package main

import (
	"context"
	goflag "flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/df07/go-bidirectional-tracer/pkg/core"
	"github.com/df07/go-bidirectional-tracer/pkg/integrator"
	"github.com/df07/go-bidirectional-tracer/pkg/renderer"
	"github.com/df07/go-bidirectional-tracer/pkg/scene"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "tracer",
		Short:        "Bidirectional and Metropolis light transport renderer",
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			v.SetEnvPrefix("TRACER")
			v.AutomaticEnv()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v)
		},
	}

	flags := cmd.Flags()
	flags.String("scene", "cornell", "Scene to render (cornell, pointlight)")
	flags.String("integrator", "bdpt", "Integrator (bdpt, mlt)")
	flags.Int("width", 400, "Image width in pixels")
	flags.Int("height", 400, "Image height in pixels")
	flags.Int("max-depth", 5, "Maximum path depth")
	flags.Int("spp", 16, "Samples per pixel (bdpt)")
	flags.Int("tile-size", 32, "Tile size in pixels (bdpt)")
	flags.Int("mutations-per-pixel", 100, "Average mutations per pixel (mlt)")
	flags.Int("bootstrap", 100000, "Bootstrap paths per depth level (mlt)")
	flags.Int("chains", 1000, "Number of Markov chains (mlt)")
	flags.Float64("sigma", 0.01, "Small step perturbation size (mlt)")
	flags.Float64("large-step-prob", 0.3, "Large step probability (mlt)")
	flags.Int("workers", runtime.NumCPU(), "Concurrent render workers")
	flags.Int64("seed", 42, "Random seed (bdpt)")
	flags.String("output", "render.png", "Output PNG path")

	// glog registers its flags (-v, -logtostderr, ...) on the standard
	// flag package.
	flags.AddGoFlagSet(goflag.CommandLine)

	return cmd
}

func run(ctx context.Context, v *viper.Viper) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	width := v.GetInt("width")
	height := v.GetInt("height")

	sc, err := createScene(v.GetString("scene"), width, height)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics := core.NewMetrics(registry)

	film := renderer.NewFilm(width, height)
	start := time.Now()

	var splatScale float64
	switch v.GetString("integrator") {
	case "bdpt":
		bdpt := integrator.NewBDPTIntegrator(v.GetInt("max-depth"), metrics)
		tr := renderer.NewTileRenderer(bdpt, renderer.TileRendererConfig{
			SamplesPerPixel: v.GetInt("spp"),
			TileSize:        v.GetInt("tile-size"),
			Workers:         v.GetInt("workers"),
			Seed:            v.GetInt64("seed"),
		})
		if err := tr.Render(ctx, sc, film); err != nil {
			return err
		}
		splatScale = tr.SplatScale()

	case "mlt":
		mlt := integrator.NewMLTIntegrator(integrator.MLTConfig{
			MaxDepth:             v.GetInt("max-depth"),
			MutationsPerPixel:    v.GetInt("mutations-per-pixel"),
			BootstrapPaths:       v.GetInt("bootstrap"),
			Chains:               v.GetInt("chains"),
			Sigma:                v.GetFloat64("sigma"),
			LargeStepProbability: v.GetFloat64("large-step-prob"),
			Workers:              v.GetInt("workers"),
		}, metrics)
		b, err := mlt.Render(ctx, sc, film)
		if err != nil {
			return err
		}
		splatScale = mlt.SplatScale(b)

	default:
		return fmt.Errorf("unknown integrator %q", v.GetString("integrator"))
	}

	glog.Infof("render finished in %s", time.Since(start).Round(time.Millisecond))
	logMetrics(registry)

	output := v.GetString("output")
	if err := film.WritePNG(output, splatScale); err != nil {
		return err
	}
	glog.Infof("wrote %s", output)
	glog.Flush()
	return nil
}

func createScene(name string, width, height int) (*scene.Scene, error) {
	switch name {
	case "cornell":
		return scene.NewCornellScene(width, height), nil
	case "pointlight":
		return scene.NewPointLightScene(width, height), nil
	}
	return nil, fmt.Errorf("unknown scene %q", name)
}

func logMetrics(registry *prometheus.Registry) {
	families, err := registry.Gather()
	if err != nil {
		glog.Warningf("gather metrics: %v", err)
		return
	}
	for _, family := range families {
		for _, m := range family.GetMetric() {
			if counter := m.GetCounter(); counter != nil {
				glog.Infof("metric %s = %v", family.GetName(), counter.GetValue())
			}
		}
	}
}
