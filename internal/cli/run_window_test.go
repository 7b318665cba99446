//go:build !headless

package cli

import (
	"errors"
	"testing"
)

func TestRunHeadlessNeedsTag(t *testing.T) {
	cfg, err := LoadConfig(newViper())
	if err != nil {
		t.Fatal(err)
	}
	if err := runHeadless(cfg, 1, ""); !errors.Is(err, errHeadlessUnavailable) {
		t.Errorf("runHeadless = %v, want %v", err, errHeadlessUnavailable)
	}
}
