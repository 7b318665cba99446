package headless

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/apiary/engine/scheduler"
	"github.com/charmbracelet/log"
)

// Host is a windowless message loop. It ticks at a fixed interval, reports a
// settable size and logs title changes instead of drawing them.
type Host struct {
	scheduler.FrameQueue

	mu       sync.Mutex
	width    int
	height   int
	title    string
	interval time.Duration
	onResize func(width, height int)
	onUpdate func()

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHost creates a headless host that runs until ctx is done or Close is called.
//
// Parameters:
//   - ctx: stops the message loop when done
//   - options: functional options for host configuration
//
// Returns:
//   - *Host: the host
func NewHost(ctx context.Context, options ...HostOption) *Host {
	h := &Host{
		width:    1280,
		height:   720,
		interval: time.Second / 60,
	}
	for _, opt := range options {
		opt(h)
	}
	h.ctx, h.cancel = context.WithCancel(ctx)
	return h
}

func (h *Host) SetResizeCallback(callback func(width, height int)) {
	h.mu.Lock()
	h.onResize = callback
	h.mu.Unlock()
}

func (h *Host) Width() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width
}

func (h *Host) Height() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.height
}

func (h *Host) SetUpdateCallback(callback func()) {
	h.mu.Lock()
	h.onUpdate = callback
	h.mu.Unlock()
}

// SetKeyDownCallback is a no-op: there is no keyboard.
func (h *Host) SetKeyDownCallback(func(keyCode uint32)) {}

// SetDropCallback is a no-op: nothing can be dropped.
func (h *Host) SetDropCallback(func(paths []string)) {}

func (h *Host) SetTitle(title string) {
	h.mu.Lock()
	changed := title != h.title
	h.title = title
	h.mu.Unlock()
	if changed {
		log.Debug("title", "value", title)
	}
}

// Title returns the last title set.
func (h *Host) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

// Resize changes the reported size and notifies the resize listener. Safe from any goroutine.
//
// Parameters:
//   - width: new width in pixels
//   - height: new height in pixels
func (h *Host) Resize(width, height int) {
	h.mu.Lock()
	h.width, h.height = width, height
	cb := h.onResize
	h.mu.Unlock()
	if cb != nil {
		cb(width, height)
	}
}

// ProcessMessages ticks until the host is closed, calling the update callback and
// then flushing animation-frame callbacks on every tick.
func (h *Host) ProcessMessages() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case now := <-ticker.C:
			h.mu.Lock()
			update := h.onUpdate
			h.mu.Unlock()
			if update != nil {
				update()
			}
			h.Flush(now)
		}
	}
}

// Close stops the message loop.
func (h *Host) Close() {
	h.cancel()
}
