package engine

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/apiary/engine/lifecycle"
)

func TestStatusTitle(t *testing.T) {
	tests := []struct {
		name string
		s    Status
		want string
	}{
		{"loading", Status{State: lifecycle.Loading}, "Apiary | loading"},
		{"error", Status{State: lifecycle.Error, Error: "WebGPU not supported"}, "Apiary | error: WebGPU not supported"},
		{"playing", Status{State: lifecycle.Ready, Running: true, FPS: 60, Width: 1280, Height: 720, AspectRatio: 1280.0 / 720.0}, "Apiary | 60 fps | 1280x720 (1.778) | Playing"},
		{"paused", Status{State: lifecycle.Ready, Width: 800, Height: 0, AspectRatio: math.NaN()}, "Apiary | 0 fps | 800x0 (n/a) | Paused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Title("Apiary"); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}
