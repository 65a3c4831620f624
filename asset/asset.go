package asset

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/lixenwraith/field-medic/config"
)

//go:embed injuries/*.toml
var injuryGraphs embed.FS

//go:embed scenarios/default.yaml
var defaultScenario []byte

// Graphs resolves injury graph files, preferring Dir over the embedded copies
// Graphs missing from Dir fall back to the embedded default of the same name
type Graphs struct {
	Dir string
}

// Graph returns the override path when one exists, and the embedded bytes
func (g Graphs) Graph(name string) (path string, embedded []byte) {
	embedded, _ = injuryGraphs.ReadFile("injuries/" + name)
	if g.Dir == "" {
		return "", embedded
	}
	p := filepath.Join(g.Dir, name)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p, embedded
	}
	return "", embedded
}

// GraphNames lists the embedded graph files
func GraphNames() []string {
	entries, _ := injuryGraphs.ReadDir("injuries")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// DefaultScenarioYAML returns the embedded scenario document
func DefaultScenarioYAML() []byte {
	return defaultScenario
}

// LoadScenario reads the scenario at path, or the embedded default when path is empty
func LoadScenario(path string) (*config.Scenario, error) {
	if path != "" {
		return config.LoadScenario(path)
	}
	return config.ParseScenario(defaultScenario)
}
