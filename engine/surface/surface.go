package surface

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrAlreadyObserving is returned by a second Observe on the same Monitor.
	ErrAlreadyObserving = errors.New("surface monitor is already observing")

	// ErrClosed is returned by Observe after Close.
	ErrClosed = errors.New("surface monitor is closed")
)

// Observable is anything that reports its drawable size and notifies on resize.
// The GLFW window and the headless host both satisfy it.
type Observable interface {
	// SetResizeCallback registers the resize listener, replacing any previous one.
	SetResizeCallback(callback func(width, height int))
	Width() int
	Height() int
}

// Dimensions is the drawable size of the render surface in pixels.
type Dimensions struct {
	Width  int
	Height int
	// AspectRatio is Width/Height, or NaN when Height is zero.
	AspectRatio float64
}

// NewDimensions builds Dimensions and derives the aspect ratio.
//
// Parameters:
//   - width: drawable width in pixels
//   - height: drawable height in pixels
//
// Returns:
//   - Dimensions: the dimensions with AspectRatio set (NaN when height is zero)
func NewDimensions(width, height int) Dimensions {
	aspect := math.NaN()
	if height != 0 {
		aspect = float64(width) / float64(height)
	}
	return Dimensions{Width: width, Height: height, AspectRatio: aspect}
}

// Valid reports whether both sides are non-zero, i.e. the surface can be configured.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

func (d Dimensions) String() string {
	if math.IsNaN(d.AspectRatio) {
		return fmt.Sprintf("%dx%d (n/a)", d.Width, d.Height)
	}
	return fmt.Sprintf("%dx%d (%.3f)", d.Width, d.Height, d.AspectRatio)
}

// Monitor turns resize notifications from an Observable into a coalescing stream of Dimensions.
// Only the most recent unread value is kept: a consumer that falls behind sees the latest size,
// never a backlog.
type Monitor struct {
	mu        sync.Mutex
	src       Observable
	updates   chan Dimensions
	latest    Dimensions
	observing bool
	closed    bool
}

// NewMonitor creates an idle Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		latest: NewDimensions(0, 0),
	}
}

// Observe attaches to src, publishes its current size, and returns the update stream.
// The stream is infinite until Close and cannot be restarted.
//
// Parameters:
//   - src: the surface to observe
//
// Returns:
//   - <-chan Dimensions: stream of size updates, closed by Close
//   - error: ErrAlreadyObserving or ErrClosed
func (m *Monitor) Observe(src Observable) (<-chan Dimensions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	if m.observing {
		return nil, ErrAlreadyObserving
	}

	m.observing = true
	m.src = src
	m.updates = make(chan Dimensions, 1)
	m.publishLocked(NewDimensions(src.Width(), src.Height()))

	src.SetResizeCallback(func(width, height int) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed {
			return
		}
		m.publishLocked(NewDimensions(width, height))
	})

	return m.updates, nil
}

// publishLocked records d and offers it on the stream, replacing a pending unread value.
func (m *Monitor) publishLocked(d Dimensions) {
	m.latest = d
	select {
	case m.updates <- d:
	default:
		select {
		case <-m.updates:
		default:
		}
		m.updates <- d
	}
}

// Latest returns the most recently observed dimensions.
func (m *Monitor) Latest() Dimensions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest
}

// Close detaches from the source and closes the stream. Safe to call multiple times.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	if m.src != nil {
		m.src.SetResizeCallback(nil)
	}
	if m.updates != nil {
		close(m.updates)
	}
}
