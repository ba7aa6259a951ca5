//go:build linux

package sound

import (
	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/pulse"
)

type pulseBackend struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
}

// initBackend plays through PulseAudio instead of beep/speaker.
func (mgr *Manager) initBackend(sampleRate beep.SampleRate, bufferSize int) error {
	client, err := pulse.NewClient()
	if err != nil {
		return err
	}

	channels := mgr.format.NumChannels
	buf := make([][2]float64, min(bufferSize, 512))
	stream, err := client.NewPlayback(
		pulse.Float32Reader(func(out []float32) (int, error) {
			return mgr.out.interleave(out, buf, channels), nil
		}),
		pulse.PlaybackSampleRate(int(sampleRate)),
		pulse.PlaybackLatency(0.03),
	)
	if err != nil {
		client.Close()
		return err
	}
	stream.Start()

	mgr.backend = &pulseBackend{client: client, stream: stream}
	return nil
}

func (mgr *Manager) closeBackend() {
	if pb, ok := mgr.backend.(*pulseBackend); ok {
		pb.stream.Close()
		pb.client.Close()
	}
}
