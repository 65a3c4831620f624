package audio

import (
	"github.com/lixenwraith/field-medic/injury"
)

// Config holds playback settings
type Config struct {
	Enabled      bool
	MasterVolume float64            // 0.0 to 1.0
	SampleRate   int                // Hz
	ClipVolumes  map[string]float64 // Per-clip gain, missing clips play at 1.0
}

// DefaultConfig returns playback settings with every clip at full gain
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		MasterVolume: 0.8,
		SampleRate:   48000,
		ClipVolumes: map[string]float64{
			injury.SoundStepComplete:     0.6,
			injury.SoundCompletelyHealed: 0.8,
		},
	}
}

func (c Config) clipVolume(clip string) float64 {
	v, ok := c.ClipVolumes[clip]
	if !ok {
		v = 1
	}
	return v * c.MasterVolume
}
