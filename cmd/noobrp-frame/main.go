// Package main provides a headless frame tool that renders a procedural scene
// through the CPU device and optionally writes the presented image as PNG.
package main

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/okzkx/noobrp/common"
	"github.com/okzkx/noobrp/engine"
	"github.com/okzkx/noobrp/engine/camera"
	"github.com/okzkx/noobrp/engine/config"
	"github.com/okzkx/noobrp/engine/game_object"
	"github.com/okzkx/noobrp/engine/gfx/soft"
	"github.com/okzkx/noobrp/engine/light"
	"github.com/okzkx/noobrp/engine/profiler"
	"github.com/okzkx/noobrp/engine/scene"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "noobrp-frame",
		Short: "Render frames of a procedural scene on the CPU device",
		Long: `noobrp-frame drives the forward pipeline end to end without a window.

It builds a small lit scene (a floor, a grid of boxes, a glass pane and sun,
spot and point lights), renders the requested number of frames while orbiting the
camera, prints per-frame device statistics and can write the last frame as PNG.

Examples:
  noobrp-frame --frames 4 --out frame.png
  noobrp-frame --config pipeline.yaml --width 640 --height 360
  noobrp-frame --mode render_graph --verbose`,
		Version: version,
		RunE:    runFrames,
	}

	rootCmd.Flags().StringP("config", "c", "", "Pipeline settings YAML file")
	rootCmd.Flags().IntP("frames", "n", 3, "Number of frames to render")
	rootCmd.Flags().Int("width", 320, "Camera target width in pixels")
	rootCmd.Flags().Int("height", 180, "Camera target height in pixels")
	rootCmd.Flags().String("mode", "", "Override render mode (steps or render_graph)")
	rootCmd.Flags().StringP("out", "o", "", "Write the last presented frame to this PNG file")
	rootCmd.Flags().Int("workers", 0, "CPU device worker count (0 = automatic)")
	rootCmd.Flags().BoolP("verbose", "v", false, "Log pipeline stages at debug level")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runFrames(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	frames, _ := cmd.Flags().GetInt("frames")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	mode, _ := cmd.Flags().GetString("mode")
	out, _ := cmd.Flags().GetString("out")
	workers, _ := cmd.Flags().GetInt("workers")
	verbose, _ := cmd.Flags().GetBool("verbose")

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	settings := config.Default()
	if configPath != "" {
		s, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = s
	}
	if mode != "" {
		settings.RenderMode = config.RenderMode(mode)
		if err := settings.Validate(); err != nil {
			return err
		}
	}
	if frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", frames)
	}

	deviceOpts := []soft.DeviceOption{soft.WithLogger(logger)}
	if workers > 0 {
		deviceOpts = append(deviceOpts, soft.WithWorkers(workers))
	}
	dev := soft.NewDevice(width, height, deviceOpts...)

	orbit := camera.NewOrbitController(
		camera.WithOrbitRadius(9),
		camera.WithOrbitAngles(0, 0.45),
		camera.WithOrbitTarget(0, 0.5, 0),
		camera.WithOrbitSpeed(0.6),
	)
	cam := camera.NewCamera(
		camera.WithName("main"),
		camera.WithPixelSize(width, height),
		camera.WithClipPlanes(0.1, 60),
		camera.WithBackground(common.Color{R: 0.35, G: 0.5, B: 0.75, A: 1}),
		camera.WithController(orbit),
	)
	cam.Update()

	world := buildScene(logger)
	e := engine.NewEngine(dev,
		engine.WithSettings(settings),
		engine.WithLogger(logger),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger))),
		engine.WithScene(0, world, cam),
	)

	const dt = float32(1.0 / 30)
	spinner := world.Objects()[1]
	e.SetRenderCallback(func(frame int, _ float32) {
		s := dev.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "frame %d: commands=%d draws=%d fullscreen=%d dispatches=%d allocations=%d\n",
			frame, s.Commands, s.Draws, s.Fullscreen, s.Dispatches, s.Allocations)
	})

	var failed int
	for i := 0; i < frames; i++ {
		if err := e.RenderFrame(dt); err != nil {
			failed++
			logger.Warn().Err(err).Int("frame", i).Msg("frame incomplete")
		}
		// Motion for the next frame.
		p := spinner.Position()
		spinner.SetPosition(p.X()+0.15, p.Y(), p.Z())
		orbit.Advance(dt)
		cam.Update()
	}

	if out != "" {
		if err := writePNG(out, dev); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d frames had failed cameras", failed, frames)
	}
	return nil
}

// buildScene creates the procedural test scene.
func buildScene(logger zerolog.Logger) scene.Scene {
	objects := []game_object.GameObject{
		game_object.NewGameObject(
			game_object.WithName("floor"),
			game_object.WithPosition(0, -0.05, 0),
			game_object.WithScale(12, 0.1, 12),
			game_object.WithColor(common.Color{R: 0.6, G: 0.6, B: 0.6, A: 1}),
			game_object.WithCastsShadows(true),
		),
		game_object.NewGameObject(
			game_object.WithName("spinner"),
			game_object.WithPosition(-2, 0.75, 0),
			game_object.WithScale(1.5, 1.5, 1.5),
			game_object.WithColor(common.Color{R: 1, G: 0.4, B: 0.1, A: 1}),
			game_object.WithCastsShadows(true),
			game_object.WithMotionVectors(true),
		),
	}
	for i := 0; i < 6; i++ {
		x := float32(i%3)*2 - 2
		z := float32(i/3)*2 + 1
		objects = append(objects, game_object.NewGameObject(
			game_object.WithName(fmt.Sprintf("box-%d", i)),
			game_object.WithPosition(x, 0.5, z),
			game_object.WithColor(common.Color{R: 0.2 + 0.13*float32(i), G: 0.8, B: 0.3, A: 1}),
			game_object.WithCastsShadows(true),
		))
	}
	objects = append(objects, game_object.NewGameObject(
		game_object.WithName("glass"),
		game_object.WithPosition(1.5, 1, -1.5),
		game_object.WithScale(2, 2, 0.1),
		game_object.WithColor(common.Color{R: 0.3, G: 0.6, B: 1, A: 0.4}),
		game_object.WithRenderQueue(game_object.RenderQueueTransparent),
		game_object.WithPassTags("MultiPass0"),
	))

	lights := []light.Light{
		light.NewLight(light.LightTypeDirectional,
			light.WithDirection(-0.4, -1, 0.3),
			light.WithColor(1, 0.95, 0.85),
			light.WithIntensity(1.2),
			light.WithCastsShadows(true),
		),
		light.NewLight(light.LightTypeSpot,
			light.WithPosition(0, 5, 0),
			light.WithDirection(0, -1, 0),
			light.WithSpotAngle(45),
			light.WithRange(12),
			light.WithCastsShadows(true),
		),
		light.NewLight(light.LightTypePoint,
			light.WithPosition(2, 2, 2),
			light.WithColor(1, 0.5, 0.2),
			light.WithRange(6),
			light.WithCastsShadows(true),
		),
	}

	return scene.NewScene("procedural",
		scene.WithObjects(objects...),
		scene.WithLights(lights...),
		scene.WithLogger(logger),
	)
}

func writePNG(path string, dev *soft.Device) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, dev.Present(0, 0)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
