//go:build headless

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/apiary/engine"
	"github.com/Carmen-Shannon/apiary/engine/gpu/headless"
	"github.com/charmbracelet/log"
)

// runHeadless renders offscreen until frames have been drawn, or forever when frames is zero.
// A PNG of the last frame is written to snapshot when it is set.
func runHeadless(cfg Config, frames uint64, snapshot string) error {
	opts, err := engineOptions(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	host := headless.NewHost(ctx, headless.WithSize(cfg.Width, cfg.Height))
	backend := headless.New(headless.WithBackends(headless.ParseBackends(cfg.Headless.API)))

	if frames > 0 {
		opts = append(opts, engine.WithFrameCallback(func(idx uint64) {
			if idx >= frames {
				host.Close()
			}
		}))
	}

	e := engine.NewEngine(host, backend, opts...)
	if err := e.Mount(ctx); err != nil {
		return err
	}
	defer e.Unmount()

	stop := startControl(cfg, e)
	defer stop()

	e.Run()

	st := e.Status()
	log.Info("headless run finished", "state", st.State, "frames", st.FrameIndex, "fps", st.FPS)
	if st.Error != "" {
		return fmt.Errorf("initialization failed: %s", st.Error)
	}

	if snapshot != "" {
		snapCtx, snapCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer snapCancel()
		if err := backend.WriteSnapshot(snapCtx, snapshot); err != nil {
			return err
		}
		log.Infof("wrote %s", snapshot)
	}
	return nil
}

func runWindow(Config) error {
	return errWindowUnavailable
}
