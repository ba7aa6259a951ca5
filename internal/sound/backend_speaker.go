//go:build !linux

package sound

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// initBackend hands the output to beep's speaker, which pulls it on its own goroutine.
func (mgr *Manager) initBackend(sampleRate beep.SampleRate, bufferSize int) error {
	if err := speaker.Init(sampleRate, bufferSize); err != nil {
		return err
	}
	speaker.Play(mgr.out)
	mgr.backend = true
	return nil
}

func (mgr *Manager) closeBackend() {
	if mgr.backend != nil {
		speaker.Clear()
	}
}
