package audio

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/logging"
)

// ProbeTone plays a continuous mono sine wave on the default output device.
// Frequency and volume may be changed from any goroutine; the generator picks
// the new values up per sample while keeping the phase continuous, so a
// frequency change never produces an audible click.
type ProbeTone struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	logger logging.Logger

	sampleRate float64
	phase      float64
	freqBits   atomic.Uint64
	volumeBits atomic.Uint64
}

// NewProbeTone initializes a playback device emitting the given frequency
func NewProbeTone(sampleRate int, frequencyHz, volume float64, logger logging.Logger) (*ProbeTone, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	logger = logger.WithFields(logging.Fields{"component": "probe_tone"})

	if frequencyHz <= 0 || frequencyHz >= float64(sampleRate)/2 {
		return nil, common.NewAnalysisError("probe_tone", common.ErrCodeConfiguration,
			"probe frequency outside playable range", nil)
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, common.NewAnalysisError("probe_tone", common.ErrCodeDevice,
			"failed to initialize audio context", err)
	}

	p := &ProbeTone{
		ctx:        ctx,
		logger:     logger,
		sampleRate: float64(sampleRate),
	}
	p.SetFrequency(frequencyHz)
	p.SetVolume(volume)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	onSendFrames := func(pOutputSamples, pInputSamples []byte, frameCount uint32) {
		if len(pOutputSamples) == 0 {
			return
		}
		out := unsafe.Slice((*float32)(unsafe.Pointer(&pOutputSamples[0])), int(frameCount))
		p.fill(out)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSendFrames,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, common.NewAnalysisError("probe_tone", common.ErrCodeDevice,
			"failed to initialize playback device", err)
	}
	p.device = device

	logger.Debug("probe tone initialized", logging.Fields{
		"frequency_hz": frequencyHz,
		"volume":       volume,
	})
	return p, nil
}

// fill generates the next block of sine samples, advancing the phase
func (p *ProbeTone) fill(out []float32) {
	freq := p.Frequency()
	volume := p.Volume()
	step := 2 * math.Pi * freq / p.sampleRate

	for i := range out {
		out[i] = float32(volume * math.Sin(p.phase))
		p.phase += step
		if p.phase >= 2*math.Pi {
			p.phase -= 2 * math.Pi
		}
	}
}

// Frequency returns the currently generated frequency in Hz
func (p *ProbeTone) Frequency() float64 {
	return math.Float64frombits(p.freqBits.Load())
}

// SetFrequency changes the generated frequency, phase-continuously
func (p *ProbeTone) SetFrequency(hz float64) {
	p.freqBits.Store(math.Float64bits(hz))
}

// Volume returns the current output gain in [0, 1]
func (p *ProbeTone) Volume() float64 {
	return math.Float64frombits(p.volumeBits.Load())
}

// SetVolume changes the output gain
func (p *ProbeTone) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volumeBits.Store(math.Float64bits(v))
}

// Start begins playback
func (p *ProbeTone) Start() error {
	if p.device == nil {
		return common.NewAnalysisError("probe_tone", common.ErrCodePrecondition,
			"playback device not initialized", nil)
	}
	if err := p.device.Start(); err != nil {
		return common.NewAnalysisError("probe_tone", common.ErrCodeDevice,
			"failed to start playback device", err)
	}
	return nil
}

// Stop halts playback and releases the device and context
func (p *ProbeTone) Stop() {
	if p.device != nil {
		p.device.Uninit()
		p.device = nil
	}
	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
}
