package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/field-medic/clothing"
)

func TestGraphs_EmbeddedDefaults(t *testing.T) {
	names := GraphNames()
	assert.ElementsMatch(t, []string{"broken_limb.toml", "white_phosphorus.toml"}, names)

	for _, name := range names {
		path, embedded := Graphs{}.Graph(name)
		assert.Empty(t, path)
		assert.NotEmpty(t, embedded, name)
	}

	_, embedded := Graphs{}.Graph("missing.toml")
	assert.Empty(t, embedded)
}

func TestGraphs_DirOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "broken_limb.toml")
	require.NoError(t, os.WriteFile(override, []byte("initial = \"X\""), 0o644))

	path, embedded := Graphs{Dir: dir}.Graph("broken_limb.toml")
	assert.Equal(t, override, path)
	assert.NotEmpty(t, embedded)

	path, _ = Graphs{Dir: dir}.Graph("white_phosphorus.toml")
	assert.Empty(t, path, "graphs missing from the directory use the embedded copy")
}

func TestLoadScenario_Default(t *testing.T) {
	s, err := LoadScenario("")
	require.NoError(t, err)
	assert.Equal(t, "field-casualty", s.Name)
	require.Len(t, s.Injuries, 2)
	assert.Equal(t, "broken_limb", s.Injuries[0].Kind)
	require.NotNil(t, s.Injuries[1].WhitePhosphorus)
	assert.Equal(t, 0.2, s.Injuries[1].WhitePhosphorus.Proximity)

	outfit, err := s.Patient.Outfit.Build()
	require.NoError(t, err)
	assert.False(t, outfit.RegionAccessible(clothing.LeftArm))
	assert.False(t, outfit.RegionAccessible(clothing.LeftHand))
	assert.True(t, outfit.RegionAccessible(clothing.RightHand))
}
