package gpu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned when no GPU API is exposed at all.
	ErrUnsupportedPlatform = errors.New("WebGPU not supported")

	// ErrNoAdapter is returned when adapter acquisition yields nothing.
	ErrNoAdapter = errors.New("no appropriate GPU adapter found")

	// ErrNoDevice is returned when device acquisition yields nothing.
	ErrNoDevice = errors.New("no GPU device available")

	// ErrCompilation matches every *CompilationError through errors.Is.
	ErrCompilation = errors.New("shader compilation failed")

	// ErrSurfaceConfigure is returned when the presentable surface cannot be configured.
	ErrSurfaceConfigure = errors.New("surface configuration failed")

	// ErrFrameAcquire is returned when the current presentable view cannot be acquired.
	ErrFrameAcquire = errors.New("failed to acquire frame")

	// ErrSubmit is returned when command encoding, submission or presentation fails.
	ErrSubmit = errors.New("failed to submit frame")
)

// CompilationError reports a shader stage that failed to compile or a pipeline that failed to link.
type CompilationError struct {
	// Stage is "vertex", "fragment" or "link".
	Stage string
	// Label is the shader or pipeline label.
	Label string
	Err   error
}

func (e *CompilationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s shader %q: %v", e.Stage, e.Label, e.Err)
	}
	return fmt.Sprintf("%s shader: %v", e.Stage, e.Err)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}
