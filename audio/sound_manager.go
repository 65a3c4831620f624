package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// SoundManager plays treatment clips through the system speaker
// Every method is safe to call before Initialize or after Cleanup; playback is then skipped
type SoundManager struct {
	mu          sync.Mutex
	cfg         Config
	mixer       *beep.Mixer
	initialized bool
	muted       atomic.Bool

	played  atomic.Uint64
	dropped atomic.Uint64
}

// NewSoundManager creates a sound manager; a disabled config starts muted
func NewSoundManager(cfg Config) *SoundManager {
	sm := &SoundManager{
		cfg:   cfg,
		mixer: &beep.Mixer{},
	}
	sm.muted.Store(!cfg.Enabled)
	return sm
}

// Initialize sets up the audio system
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	rate := beep.SampleRate(sm.cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.initialized = false
}

// Play queues a clip and reports whether it was mixed in
func (sm *SoundManager) Play(clip string) bool {
	if sm.muted.Load() {
		sm.dropped.Add(1)
		return false
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		sm.dropped.Add(1)
		return false
	}

	s := Clip(clip, sm.cfg)
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
	sm.played.Add(1)
	return true
}

// ToggleMute flips mute and returns the new state
func (sm *SoundManager) ToggleMute() bool {
	for {
		old := sm.muted.Load()
		if sm.muted.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (sm *SoundManager) IsMuted() bool { return sm.muted.Load() }

// SetVolume changes master volume for clips played afterwards
func (sm *SoundManager) SetVolume(vol float64) {
	vol = max(0, min(1, vol))
	sm.mu.Lock()
	sm.cfg.MasterVolume = vol
	sm.mu.Unlock()
}

// Stats returns played and dropped clip counts
func (sm *SoundManager) Stats() (played, dropped uint64) {
	return sm.played.Load(), sm.dropped.Load()
}
