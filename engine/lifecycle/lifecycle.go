package lifecycle

import (
	"errors"
	"sync"
)

// ErrAlreadySettled is returned when a machine that already left Loading is transitioned again.
var ErrAlreadySettled = errors.New("lifecycle already settled")

// State is the initialization state of the component.
type State int

const (
	// Loading is the state from mount until initialization finishes.
	Loading State = iota

	// Ready means the device, presentation context and pipeline all exist.
	Ready

	// Error means initialization failed; the message says why. The frame loop never starts.
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Machine holds the lifecycle state. It makes exactly one transition out of Loading.
type Machine struct {
	mu       sync.RWMutex
	state    State
	message  string
	onChange func(State, string)
}

// NewMachine creates a Machine in Loading.
//
// Parameters:
//   - onChange: optional hook fired after the transition out of Loading
//
// Returns:
//   - *Machine: the new machine
func NewMachine(onChange func(State, string)) *Machine {
	return &Machine{onChange: onChange}
}

// Ready transitions Loading to Ready.
//
// Returns:
//   - error: ErrAlreadySettled if the machine is not Loading
func (m *Machine) Ready() error {
	return m.settle(Ready, "")
}

// Fail transitions Loading to Error with err's message.
//
// Parameters:
//   - err: the failure
//
// Returns:
//   - error: ErrAlreadySettled if the machine is not Loading
func (m *Machine) Fail(err error) error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return m.settle(Error, msg)
}

func (m *Machine) settle(to State, msg string) error {
	m.mu.Lock()
	if m.state != Loading {
		m.mu.Unlock()
		return ErrAlreadySettled
	}
	m.state = to
	m.message = msg
	onChange := m.onChange
	m.mu.Unlock()

	if onChange != nil {
		onChange(to, msg)
	}
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Message returns the error message, empty unless the state is Error.
func (m *Machine) Message() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.message
}
