// Package sound plays short synthesized cues through a shared mixer.
// A cue restarts from the beginning when played again before it ends.
package sound

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
)

// Sound names
const (
	BOUNCE = "bounce" // marker turned at a wall
	PAUSE  = "pause"
	RESUME = "resume"
)

const CommonSampleRate = 44100

var ErrUnknownSample = errors.New("sound: sample not loaded")

// note is one tone of a cue.
type note struct {
	freq float64
	dur  time.Duration
}

var cues = map[string][]note{
	BOUNCE: {{660, 40 * time.Millisecond}, {990, 50 * time.Millisecond}},
	PAUSE:  {{523.25, 90 * time.Millisecond}, {392, 120 * time.Millisecond}},
	RESUME: {{392, 90 * time.Millisecond}, {523.25, 120 * time.Millisecond}},
}

// Manager controls synthesis and playback of cues.
type Manager struct {
	mu      sync.Mutex
	samples map[string]*beep.Buffer
	ctrl    map[string]*beep.Ctrl
	mix     *beep.Mixer
	vol     *effects.Volume // master volume
	out     *output
	format  beep.Format
	muted   bool

	backend any
}

// output is what the device pulls from. It guards the mixer against Play
// on the UI goroutine and turns to silence once stopped.
type output struct {
	mu      *sync.Mutex
	s       beep.Streamer
	stopped atomic.Bool
}

func (o *output) Stream(samples [][2]float64) (int, bool) {
	if o.stopped.Load() {
		clear(samples)
		return len(samples), true
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.s.Stream(samples)
}

func (o *output) Err() error { return nil }

// interleave fills out with up to len(out)/channels frames, channel by channel.
func (o *output) interleave(out []float32, buf [][2]float64, channels int) int {
	frames := min(len(out)/channels, len(buf))
	n, _ := o.Stream(buf[:frames])
	idx := 0
	for _, frame := range buf[:n] {
		for ch := 0; ch < channels; ch++ {
			out[idx] = float32(frame[ch])
			idx++
		}
	}
	return idx
}

// NewManager synthesizes all cues and opens the audio device.
func NewManager(sampleRate beep.SampleRate) (*Manager, error) {
	mgr, err := newManager(sampleRate)
	if err != nil {
		return nil, err
	}
	if err := mgr.initBackend(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return mgr, nil
}

// newManager builds a Manager with no device attached.
func newManager(sampleRate beep.SampleRate) (*Manager, error) {
	mgr := &Manager{
		samples: make(map[string]*beep.Buffer),
		ctrl:    make(map[string]*beep.Ctrl),
		mix:     &beep.Mixer{},
		format:  beep.Format{SampleRate: sampleRate, NumChannels: 1, Precision: 2},
	}
	mgr.vol = &effects.Volume{
		Streamer: mgr.mix,
		Base:     2,
		Volume:   -1,
	}
	mgr.out = &output{mu: &mgr.mu, s: mgr.vol}

	for name, notes := range cues {
		buf, err := mgr.synthesize(notes)
		if err != nil {
			return nil, err
		}
		mgr.samples[name] = buf
	}
	return mgr, nil
}

func (mgr *Manager) synthesize(notes []note) (*beep.Buffer, error) {
	sr := mgr.format.SampleRate
	var tones []beep.Streamer
	for _, n := range notes {
		sine, err := generators.SineTone(sr, n.freq)
		if err != nil {
			return nil, err
		}
		tones = append(tones, beep.Take(sr.N(n.dur), sine))
	}
	buf := beep.NewBuffer(mgr.format)
	buf.Append(beep.Seq(tones...))
	return buf, nil
}

// Play interrupts the cue if it is still sounding and plays it from the start.
func (mgr *Manager) Play(name string) error {
	if mgr == nil {
		return nil
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	buf, ok := mgr.samples[name]
	if !ok {
		return ErrUnknownSample
	}
	if mgr.muted {
		return nil
	}

	// Interrupt previous if exists
	if ctrl, exists := mgr.ctrl[name]; exists {
		ctrl.Streamer = nil
	}
	ctrl := &beep.Ctrl{Streamer: buf.Streamer(0, buf.Len())}
	mgr.mix.Add(ctrl)
	mgr.ctrl[name] = ctrl
	return nil
}

// SetMute turns all output off or back on. Muting cuts cues already playing.
func (mgr *Manager) SetMute(muted bool) {
	if mgr == nil {
		return
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.muted = muted
	mgr.vol.Silent = muted
	if muted {
		for name, ctrl := range mgr.ctrl {
			ctrl.Streamer = nil
			delete(mgr.ctrl, name)
		}
	}
}

func (mgr *Manager) Muted() bool {
	if mgr == nil {
		return true
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.muted
}

// Close stops output and frees the device.
func (mgr *Manager) Close() {
	if mgr == nil {
		return
	}
	mgr.out.stopped.Store(true)
	mgr.closeBackend()
}
