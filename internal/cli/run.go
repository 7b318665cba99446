package cli

import (
	"context"
	"errors"
	"time"

	"github.com/Carmen-Shannon/apiary/engine"
	"github.com/Carmen-Shannon/apiary/engine/gpu"
	"github.com/Carmen-Shannon/apiary/engine/renderer/shader"
	"github.com/Carmen-Shannon/apiary/internal/ipc"
	"github.com/charmbracelet/log"
)

// The window stack (GLFW and wgpu-native) needs cgo while the pure-Go headless
// backend needs CGO_ENABLED=0, so each binary carries exactly one of them.
var (
	errHeadlessUnavailable = errors.New("built without headless support; rebuild with -tags headless and CGO_ENABLED=0")
	errWindowUnavailable   = errors.New("built for headless rendering only; rebuild without the headless tag to open a window")
)

// engineOptions translates cfg into engine options shared by both hosts.
func engineOptions(cfg Config) ([]engine.EngineBuilderOption, error) {
	vertex, err := shader.SourceOrDefault(cfg.Shaders.Vertex, shader.TriangleVertexWGSL)
	if err != nil {
		return nil, err
	}
	fragment, err := shader.SourceOrDefault(cfg.Shaders.Fragment, shader.RedFragmentWGSL)
	if err != nil {
		return nil, err
	}
	presentMode, err := gpu.ParsePresentMode(cfg.PresentMode)
	if err != nil {
		return nil, err
	}

	return []engine.EngineBuilderOption{
		engine.WithTitle(cfg.Title),
		engine.WithAutoplay(cfg.Autoplay),
		engine.WithProfiling(cfg.Profiling),
		engine.WithReconfigureOnResize(cfg.ReconfigureOnResize),
		engine.WithShaderSources(vertex, fragment),
		engine.WithShaderValidation(cfg.ValidateShaders),
		engine.WithPresentMode(presentMode),
		engine.WithForceSoftwareRenderer(cfg.ForceSoftware),
		engine.WithDropHandler(func(paths []string) {
			log.Infof("dropped %d file(s): %v", len(paths), paths)
		}),
	}, nil
}

// startControl serves the control socket for e until the returned stop func is called.
func startControl(cfg Config, e engine.Engine) (stop func()) {
	if !cfg.Control.Enabled {
		return func() {}
	}

	if _, err := ipc.NewClient(cfg.Control.Socket).FetchStatus(); err == nil {
		log.Warn("another apiary is serving the control socket; control disabled for this instance")
		return func() {}
	}

	server, err := ipc.NewServer(e, cfg.Control.Socket)
	if err != nil {
		log.Warnf("control socket disabled: %v", err)
		return func() {}
	}

	go func() {
		if err := server.Serve(); err != nil {
			log.Errorf("control socket: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warnf("control socket shutdown: %v", err)
		}
	}
}
