package ipc

import (
	"github.com/Carmen-Shannon/apiary/engine"
	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, c Controller, socket string) {
	e.GET("/status", statusHandler(c, socket))
	e.POST("/play", enqueueHandler(c, engine.CommandPlay))
	e.POST("/pause", enqueueHandler(c, engine.CommandPause))
	e.POST("/toggle", enqueueHandler(c, engine.CommandToggle))
	e.POST("/command", commandHandler(c, socket))
}
