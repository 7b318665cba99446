//go:build headless

package cli

import (
	"errors"
	"testing"
)

func TestRunWindowUnavailable(t *testing.T) {
	cfg, err := LoadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if err := runWindow(cfg); !errors.Is(err, errWindowUnavailable) {
		t.Errorf("runWindow = %v, want %v", err, errWindowUnavailable)
	}
}
