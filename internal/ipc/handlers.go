package ipc

import (
	"net/http"
	"os"
	"strings"

	"github.com/Carmen-Shannon/apiary"
	"github.com/Carmen-Shannon/apiary/engine"
	"github.com/labstack/echo/v4"
	"github.com/spf13/viper"
)

func buildStatus(c Controller, socket string) StatusResponse {
	s := c.Status()
	return StatusResponse{
		Status:      "ok",
		Message:     "apiary is running",
		Version:     strings.Trim(apiary.Version, "\n\r "),
		PID:         os.Getpid(),
		Socket:      socket,
		Config:      viper.ConfigFileUsed(),
		State:       s.State.String(),
		Error:       s.Error,
		Running:     s.Running,
		FPS:         s.FPS,
		Width:       s.Width,
		Height:      s.Height,
		AspectRatio: aspectRatio(s.AspectRatio),
		FrameIndex:  s.FrameIndex,
		Format:      s.Format,
	}
}

// GET /status
func statusHandler(c Controller, socket string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSONPretty(http.StatusOK, buildStatus(c, socket), "  ")
	}
}

// POST /play, /pause, /toggle
func enqueueHandler(c Controller, cmd engine.Command) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !c.Enqueue(cmd) {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "error", "error": "command queue full"})
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}

// POST /command
func commandHandler(c Controller, socket string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var cmd Command
		if err := ctx.Bind(&cmd); err != nil {
			return ctx.JSON(http.StatusBadRequest, Response{Status: "error", Message: "invalid command body"})
		}

		if cmd.Type == CommandStatus {
			return ctx.JSON(http.StatusOK, Response{Status: "ok", Data: buildStatus(c, socket)})
		}

		ec, err := engine.ParseCommand(string(cmd.Type))
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, Response{Status: "error", Message: err.Error()})
		}
		if !c.Enqueue(ec) {
			return ctx.JSON(http.StatusServiceUnavailable, Response{Status: "error", Message: "command queue full"})
		}
		return ctx.JSON(http.StatusOK, Response{Status: "ok", Message: string(cmd.Type) + " queued"})
	}
}
