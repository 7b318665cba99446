// Package apiary holds build-time assets shared by the command line and the control socket.
package apiary

import _ "embed"

//go:embed VERSION
var Version string

//go:embed apiary.toml
var DefaultConfig string
