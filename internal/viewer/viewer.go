// Package viewer implements the interactive model viewer loop.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/skinrig/internal/assets"
	"github.com/Faultbox/skinrig/internal/config"
	"github.com/Faultbox/skinrig/internal/engine/camera"
	"github.com/Faultbox/skinrig/internal/engine/importer"
	"github.com/Faultbox/skinrig/internal/engine/input"
	"github.com/Faultbox/skinrig/internal/engine/model"
	"github.com/Faultbox/skinrig/internal/engine/renderer"
	"github.com/Faultbox/skinrig/internal/engine/screenshot"
	"github.com/Faultbox/skinrig/internal/engine/texture"
	"github.com/Faultbox/skinrig/internal/engine/window"
	"github.com/Faultbox/skinrig/internal/logger"
	"github.com/Faultbox/skinrig/pkg/math"
)

// Viewer owns the window, renderer and the single displayed instance.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	textures *texture.Cache
	library  *assets.Library
	asset    *model.Asset
	instance *model.Instance
	camera   *camera.OrbitCamera
	shots    *screenshot.Capture
	shotDue  bool
	controls Controls
	log      *zap.Logger
}

// New opens the window and loads the configured asset. A missing or broken
// asset is logged and leaves an empty scene rather than failing.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		config:   cfg,
		controls: Controls{Speed: cfg.Playback.Speed, Paused: cfg.Playback.Paused},
		log:      logger.Named("viewer"),
	}
	v.log.Info("initializing viewer",
		zap.String("asset", cfg.Asset.Path),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
	)

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		Samples:    cfg.Window.Samples,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The renderer needs the GL context the window just created.
	fbw, fbh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      fbw,
		Height:     fbh,
		ClearColor: [3]float32{0.12, 0.12, 0.16},
		Wireframe:  cfg.Camera.Wireframe,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shots = screenshot.New(cfg.Window.ScreenshotDir, "skinview")
	v.textures = texture.NewCache(cfg.TextureDir(), v.renderer)
	v.library = assets.NewLibrary(func(path string) (*model.Asset, error) {
		return importer.Load(path, importer.Options{Textures: v.textures})
	})
	v.load(cfg.Asset.Path)
	return v, nil
}

func (v *Viewer) load(path string) {
	asset := &model.Asset{}
	if path != "" {
		var err error
		asset, err = v.library.Load(path)
		if err != nil {
			v.log.Error("failed to load asset", zap.String("path", path), zap.Error(err))
		}
	}
	v.asset = asset
	v.renderer.Prepare(asset)
	v.instance = model.NewInstance(asset)
	v.instance.SetTime(v.config.Playback.StartTime)

	v.camera = camera.NewOrbitCamera()
	if !asset.Empty() {
		b := asset.Bounds()
		v.camera.FitToBounds(b.Center(), b.Radius())
	}
	if d := v.config.Camera.Distance; d > 0 {
		v.camera.Distance = d
	}
	v.camera.RotationX = v.config.Camera.Pitch
	v.camera.RotationY = v.config.Camera.Yaw
}

// Run starts the main loop and returns when the window closes.
func (v *Viewer) Run() error {
	v.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting viewer loop")

	for v.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if v.input.Update() {
			v.running = false
			break
		}
		v.handleInput()

		v.instance.Update(v.controls.Step(dt))
		v.render()
		if v.shotDue {
			v.screenshot()
			v.shotDue = false
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(v.title(frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (v *Viewer) handleInput() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			fbw, fbh := v.window.DrawableSize()
			w, h := v.window.Size()
			v.renderer.Resize(fbw, fbh)
			v.log.Debug("window resized",
				zap.Int("width", w), zap.Int("height", h),
				zap.Int("drawable_width", fbw), zap.Int("drawable_height", fbh))
		case input.EventKeyDown:
			if event.Repeat {
				continue
			}
			switch v.controls.Key(event.Key) {
			case ActionQuit:
				v.running = false
			case ActionReset:
				v.instance.SetTime(0)
			case ActionWireframe:
				v.config.Camera.Wireframe = !v.config.Camera.Wireframe
				v.renderer.SetWireframe(v.config.Camera.Wireframe)
			case ActionScreenshot:
				v.shotDue = true
			}
		}
	}

	if dx, dy := v.input.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		v.camera.HandleDrag(dx, dy)
	}
	if wheel := v.input.Wheel(); wheel != 0 {
		v.camera.HandleZoom(wheel)
	}
}

func (v *Viewer) render() {
	v.renderer.Begin(
		v.camera.ProjectionMatrix(v.renderer.Aspect()),
		v.camera.ViewMatrix(),
		math.Identity(),
	)
	v.instance.Draw(v.renderer)
}

func (v *Viewer) title(fps int) string {
	name := v.config.Window.Title
	if !v.asset.Empty() {
		name = fmt.Sprintf("%s - %s", name, v.asset.Name)
	}
	state := "playing"
	if v.controls.Paused {
		state = "paused"
	}
	return fmt.Sprintf("%s [%s %.2fs x%.2g] %d fps", name, state, v.instance.Time(), v.controls.Speed, fps)
}

// screenshot saves the frame just rendered, before it is presented.
func (v *Viewer) screenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	name, err := v.shots.Save(pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("file", name))
}

// Close releases the renderer and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer", zap.Int("textures", v.textures.Len()))

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
