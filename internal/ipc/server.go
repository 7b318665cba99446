package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
)

// SocketPath returns the default control socket path.
func SocketPath() string {
	sockDir := os.Getenv("XDG_RUNTIME_DIR")
	if sockDir == "" {
		sockDir = os.TempDir()
	}
	return filepath.Join(sockDir, "apiary.sock")
}

// Server serves the control API on a unix socket.
type Server struct {
	echo *echo.Echo
	path string
}

// NewServer binds the control socket, replacing a stale one, and registers the routes.
//
// Parameters:
//   - c: the engine to control
//   - sockPath: socket path, SocketPath() when empty
//
// Returns:
//   - *Server: the bound server, not yet serving
//   - error: error if the socket cannot be bound
func NewServer(c Controller, sockPath string) (*Server, error) {
	if sockPath == "" {
		sockPath = SocketPath()
	}

	if _, err := os.Stat(sockPath); err == nil {
		_ = os.Remove(sockPath)
	}

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", sockPath, err)
	}

	e := newEcho(c, sockPath)
	e.Listener = listener

	return &Server{echo: e, path: sockPath}, nil
}

func newEcho(c Controller, socket string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(CharmLog())
	RegisterRoutes(e, c, socket)
	return e
}

// Path returns the bound socket path.
func (s *Server) Path() string {
	return s.path
}

// Serve blocks until Shutdown.
//
// Returns:
//   - error: nil after Shutdown, otherwise the server error
func (s *Server) Serve() error {
	log.Infof("control socket listening on %s", s.path)
	if err := s.echo.StartServer(s.echo.Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops serving and removes the socket file.
//
// Parameters:
//   - ctx: bounds the graceful shutdown
//
// Returns:
//   - error: error if shutdown fails
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}
