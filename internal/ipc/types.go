package ipc

import (
	"math"

	"github.com/Carmen-Shannon/apiary/engine"
)

type CommandType string

const (
	CommandPlay   CommandType = "play"
	CommandPause  CommandType = "pause"
	CommandToggle CommandType = "toggle"
	CommandStatus CommandType = "status"
)

type Command struct {
	Type CommandType `json:"type"`
	Args []string    `json:"args"`
}

// Controller is the part of the engine the control socket may touch.
type Controller interface {
	Status() engine.Status
	Enqueue(cmd engine.Command) bool
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type StatusResponse struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Version     string   `json:"version"`
	PID         int      `json:"pid"`
	Socket      string   `json:"socket"`
	Config      string   `json:"config"`
	State       string   `json:"state"`
	Error       string   `json:"error,omitempty"`
	Running     bool     `json:"running"`
	FPS         int      `json:"fps"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	AspectRatio *float64 `json:"aspect_ratio"`
	FrameIndex  uint64   `json:"frame_index"`
	Format      string   `json:"format,omitempty"`
}

// aspectRatio returns nil for NaN, which JSON cannot encode.
func aspectRatio(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
