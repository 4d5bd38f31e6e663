package audio

import (
	"strings"
	"unsafe"

	"github.com/gen2brain/malgo"

	"github.com/teaden/Audiophile/pkg/common"
	"github.com/teaden/Audiophile/pkg/logging"
)

// CaptureCallback receives each block of microphone samples on the device
// thread. It must not block.
type CaptureCallback func(samples []float32)

// Capture manages the microphone device and forwards sample blocks to the
// callback
type Capture struct {
	ctx      *malgo.AllocatedContext
	device   *malgo.Device
	callback CaptureCallback
	logger   logging.Logger
}

// NewCapture initializes a mono float32 capture device at the given sample
// rate. An empty deviceName selects the system default; otherwise the first
// device whose name contains deviceName (case-insensitive) is used.
func NewCapture(sampleRate int, deviceName string, callback CaptureCallback, logger logging.Logger) (*Capture, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	logger = logger.WithFields(logging.Fields{"component": "audio_capture"})

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, common.NewAnalysisError("audio_capture", common.ErrCodeDevice,
			"failed to initialize audio context", err)
	}

	c := &Capture{
		ctx:      ctx,
		callback: callback,
		logger:   logger,
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	if deviceName != "" {
		infos, err := ctx.Devices(malgo.Capture)
		if err == nil {
			for _, info := range infos {
				if strings.Contains(strings.ToLower(info.Name()), strings.ToLower(deviceName)) {
					deviceConfig.Capture.DeviceID = info.ID.Pointer()
					logger.Info("selected capture device", logging.Fields{
						"device": info.Name(),
					})
					break
				}
			}
		}
	}

	onRecvFrames := func(pOutputSamples, pInputSamples []byte, frameCount uint32) {
		if c.callback == nil || len(pInputSamples) == 0 {
			return
		}
		samples := unsafe.Slice((*float32)(unsafe.Pointer(&pInputSamples[0])), int(frameCount))
		c.callback(samples)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onRecvFrames,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, common.NewAnalysisError("audio_capture", common.ErrCodeDevice,
			"failed to initialize capture device", err)
	}
	c.device = device

	logger.Debug("capture device initialized", logging.Fields{
		"sample_rate": device.SampleRate(),
	})
	return c, nil
}

// Start begins delivering samples to the callback
func (c *Capture) Start() error {
	if c.device == nil {
		return common.NewAnalysisError("audio_capture", common.ErrCodePrecondition,
			"capture device not initialized", nil)
	}
	if err := c.device.Start(); err != nil {
		return common.NewAnalysisError("audio_capture", common.ErrCodeDevice,
			"failed to start capture device", err)
	}
	return nil
}

// Stop halts capture and releases the device and context
func (c *Capture) Stop() {
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.ctx != nil {
		_ = c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}
}
