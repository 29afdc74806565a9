package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"

	"meetcap/internal/domain"
	"meetcap/internal/ports"
)

// Capture opens microphone streams through PortAudio. Device selection runs
// fresh on every Open so a mic plugged in between sessions is picked up.
type Capture struct {
	classify Classifier
	log      *logrus.Entry
}

// NewCapture initializes PortAudio and returns the capture adapter. Call
// Terminate when the service shuts down.
func NewCapture(classify Classifier, log *logrus.Logger) (*Capture, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	if classify == nil {
		classify = DefaultClassifier()
	}
	return &Capture{
		classify: classify,
		log:      log.WithField("component", "audio"),
	}, nil
}

// Terminate releases the PortAudio host.
func (c *Capture) Terminate() error {
	return portaudio.Terminate()
}

// Open negotiates a device and starts a blocking-read input stream.
func (c *Capture) Open(req ports.CaptureRequest) (ports.AudioStream, domain.StreamFormat, error) {
	p, err := newPortAudioProber()
	if err != nil {
		return nil, domain.StreamFormat{}, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	sel := selectDevice(p, c.classify, req.SampleRate, req.Channels, req.FramesPerBuffer, c.log)

	buf := make([]int16, sel.FramesPerBuffer*req.Channels)
	params, err := p.streamParameters(sel, req.Channels)
	if err != nil {
		return nil, domain.StreamFormat{}, err
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, domain.StreamFormat{}, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, domain.StreamFormat{}, fmt.Errorf("failed to start input stream: %w", err)
	}

	format := domain.StreamFormat{
		SampleRate:      sel.SampleRate,
		Channels:        req.Channels,
		FramesPerBuffer: sel.FramesPerBuffer,
	}
	return &portAudioStream{stream: stream, buf: buf}, format, nil
}

// portAudioStream adapts a blocking PortAudio stream to ports.AudioStream.
type portAudioStream struct {
	stream *portaudio.Stream
	buf    []int16

	closeOnce sync.Once
	closeErr  error
}

// Read blocks for one buffer and returns it as little-endian PCM16. A
// single input overflow is tolerated: the driver drops samples but the
// stream stays usable, matching how the loop must survive slow flushes.
func (s *portAudioStream) Read() ([]byte, error) {
	if err := s.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, err
	}

	out := make([]byte, len(s.buf)*2)
	for i, v := range s.buf {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out, nil
}

// Close stops and closes the stream. The lifecycle controller guarantees
// the capture loop has exited before this is called.
func (s *portAudioStream) Close() error {
	s.closeOnce.Do(func() {
		if err := s.stream.Stop(); err != nil {
			s.closeErr = err
		}
		if err := s.stream.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}

// portAudioProber implements prober over one enumeration snapshot.
type portAudioProber struct {
	devs []*portaudio.DeviceInfo
}

func newPortAudioProber() (*portAudioProber, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	return &portAudioProber{devs: devs}, nil
}

func (p *portAudioProber) Devices() ([]domain.DeviceDescriptor, error) {
	out := make([]domain.DeviceDescriptor, 0, len(p.devs))
	for i, dev := range p.devs {
		out = append(out, domain.DeviceDescriptor{
			Index:            i,
			Name:             dev.Name,
			DefaultRate:      int(dev.DefaultSampleRate),
			MaxInputChannels: dev.MaxInputChannels,
		})
	}
	return out, nil
}

func (p *portAudioProber) Supports(dev domain.DeviceDescriptor, rate, channels int) bool {
	if dev.Index < 0 || dev.Index >= len(p.devs) {
		return false
	}
	info := p.devs[dev.Index]
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultHighInputLatency,
		},
		SampleRate:      float64(rate),
		FramesPerBuffer: 64,
	}
	probe := make([]int16, 64*channels)
	return portaudio.IsFormatSupported(params, probe) == nil
}

// streamParameters builds open parameters for the selection, resolving a
// nil device to the host's default input.
func (p *portAudioProber) streamParameters(sel Selection, channels int) (portaudio.StreamParameters, error) {
	var info *portaudio.DeviceInfo
	if sel.Device != nil {
		if sel.Device.Index < 0 || sel.Device.Index >= len(p.devs) {
			return portaudio.StreamParameters{}, fmt.Errorf("selected device index %d out of range", sel.Device.Index)
		}
		info = p.devs[sel.Device.Index]
	} else {
		def, err := portaudio.DefaultInputDevice()
		if err != nil {
			return portaudio.StreamParameters{}, fmt.Errorf("failed to get default input device: %w", err)
		}
		info = def
	}

	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultHighInputLatency,
		},
		SampleRate:      float64(sel.SampleRate),
		FramesPerBuffer: sel.FramesPerBuffer,
	}, nil
}
