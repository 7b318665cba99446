package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/apiary"
	"github.com/charmbracelet/log"
	"github.com/tidwall/pretty"
)

func CanonicalPath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" {
		return os.Getenv("HOME")
	}

	if strings.HasPrefix(path, "~/") {
		return strings.Replace(path, "~", os.Getenv("HOME"), 1)
	}

	return path
}

func PrintJSONColored(data any) {
	j, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Errorf("Error marshalling JSON: %v", err)
		return
	}

	log.Info(string(pretty.Color(j, nil)))
}

// ConfigPath is where InstallDefaultConfig writes, under $XDG_CONFIG_HOME or ~/.config.
func ConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "apiary", "apiary.toml")
}

// InstallDefaultConfig writes the bundled config to ConfigPath.
// An existing file is left alone and an empty path is returned.
func InstallDefaultConfig() (string, error) {
	configPath := ConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		log.Warnf("Config file already exists at %v", configPath)
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(apiary.DefaultConfig), 0644); err != nil {
		return "", fmt.Errorf("error writing config file: %w", err)
	}

	return configPath, nil
}
