package fsm

import (
	"fmt"
	"os"
)

// LoadConfigAuto loads a graph with priority: customPath > embedded
// A custom path that does not exist is an error, not a silent fallback
func LoadConfigAuto[T any](m *Machine[T], customPath string, embedded []byte) error {
	if customPath != "" {
		return LoadConfigFromPath(m, customPath)
	}
	if len(embedded) == 0 {
		return fmt.Errorf("no graph source")
	}
	return m.LoadConfig(embedded)
}

// LoadConfigFromPath loads a graph from an arbitrary file path
func LoadConfigFromPath[T any](m *Machine[T], configPath string) error {
	if !fileExists(configPath) {
		return fmt.Errorf("config file not found: %s", configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	if err := m.LoadConfig(data); err != nil {
		return fmt.Errorf("failed to load FSM config from %s: %w", configPath, err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
