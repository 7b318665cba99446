//go:build !headless

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/apiary/engine"
	"github.com/Carmen-Shannon/apiary/engine/gpu/wgpubackend"
	"github.com/Carmen-Shannon/apiary/engine/window"
	"github.com/charmbracelet/log"
)

// runWindow opens the GLFW window and blocks until it is closed.
func runWindow(cfg Config) error {
	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}

	w, err := window.NewWindow(
		window.WithTitle(cfg.Title),
		window.WithWidth(cfg.Width),
		window.WithHeight(cfg.Height),
		window.WithSizeLimits(cfg.MinWidth, cfg.MinHeight, cfg.MaxWidth, cfg.MaxHeight),
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer func() {
		if err := w.Close(); err != nil {
			log.Debugf("close window: %v", err)
		}
	}()

	backend := wgpubackend.New(w.SurfaceDescriptor())
	e := engine.NewEngine(w, backend, opts...)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := e.Mount(ctx); err != nil {
		return err
	}
	defer e.Unmount()

	stop := startControl(cfg, e)
	defer stop()

	go func() {
		<-ctx.Done()
		w.RequestClose()
	}()

	e.Run()
	log.Info("window closed")
	return nil
}

func runHeadless(Config, uint64, string) error {
	return errHeadlessUnavailable
}
