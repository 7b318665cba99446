package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/Carmen-Shannon/apiary/engine/lifecycle"
)

// Status is a point-in-time snapshot of everything the user-facing surface shows.
// It is safe to read from any goroutine.
type Status struct {
	State       lifecycle.State
	Error       string
	Running     bool
	FPS         int
	Width       int
	Height      int
	AspectRatio float64
	FrameIndex  uint64
	Format      string
}

// Title renders the status as a window title prefixed with name.
//
// Parameters:
//   - name: the application name shown first
//
// Returns:
//   - string: e.g. "Apiary | 60 fps | 1280x720 (1.778) | Playing"
func (s Status) Title(name string) string {
	switch s.State {
	case lifecycle.Error:
		return fmt.Sprintf("%s | error: %s", name, s.Error)
	case lifecycle.Loading:
		return fmt.Sprintf("%s | loading", name)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s | %d fps | %dx%d", name, s.FPS, s.Width, s.Height)
	if math.IsNaN(s.AspectRatio) {
		sb.WriteString(" (n/a)")
	} else {
		fmt.Fprintf(&sb, " (%.3f)", s.AspectRatio)
	}
	if s.Running {
		sb.WriteString(" | Playing")
	} else {
		sb.WriteString(" | Paused")
	}
	return sb.String()
}
