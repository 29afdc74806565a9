package audio

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"meetcap/internal/domain"
)

type fakeProber struct {
	devices []domain.DeviceDescriptor
	rates   map[int][]int // device index -> supported rates
	err     error
}

func (f *fakeProber) Devices() ([]domain.DeviceDescriptor, error) {
	return f.devices, f.err
}

func (f *fakeProber) Supports(dev domain.DeviceDescriptor, rate, _ int) bool {
	for _, r := range f.rates[dev.Index] {
		if r == rate {
			return true
		}
	}
	return false
}

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("component", "test")
}

func TestSelectDevicePrefersExternalAtTargetRate(t *testing.T) {
	t.Parallel()

	p := &fakeProber{
		devices: []domain.DeviceDescriptor{
			{Index: 0, Name: "Built-in Audio", DefaultRate: 48000, MaxInputChannels: 2},
			{Index: 1, Name: "USB Microphone", DefaultRate: 44100, MaxInputChannels: 1},
		},
		rates: map[int][]int{0: {16000, 48000}, 1: {16000, 44100}},
	}

	sel := selectDevice(p, DefaultClassifier(), 16000, 1, 1024, testLog())
	if sel.Device == nil || sel.Device.Index != 1 {
		t.Fatalf("expected USB device, got %+v", sel.Device)
	}
	if sel.SampleRate != 16000 || sel.FramesPerBuffer != 1024 {
		t.Fatalf("unexpected format: %+v", sel)
	}
}

func TestSelectDeviceNativeRateFallbackScalesBuffer(t *testing.T) {
	t.Parallel()

	// Neither device supports 16 kHz; the external one wins at its native
	// rate with a proportionally scaled buffer.
	p := &fakeProber{
		devices: []domain.DeviceDescriptor{
			{Index: 0, Name: "USB Microphone", DefaultRate: 44100, MaxInputChannels: 1},
			{Index: 1, Name: "Built-in Audio", DefaultRate: 48000, MaxInputChannels: 2},
		},
		rates: map[int][]int{0: {44100}, 1: {48000}},
	}

	sel := selectDevice(p, DefaultClassifier(), 16000, 1, 1024, testLog())
	if sel.Device == nil || sel.Device.Index != 0 {
		t.Fatalf("expected USB device, got %+v", sel.Device)
	}
	if sel.SampleRate != 44100 {
		t.Fatalf("expected native rate 44100, got %d", sel.SampleRate)
	}
	if want := 1024 * 44100 / 16000; sel.FramesPerBuffer != want {
		t.Fatalf("expected scaled buffer %d, got %d", want, sel.FramesPerBuffer)
	}
}

func TestSelectDeviceExhaustionFallsBackToDefault(t *testing.T) {
	t.Parallel()

	p := &fakeProber{
		devices: []domain.DeviceDescriptor{
			{Index: 0, Name: "Broken Mic", DefaultRate: 44100, MaxInputChannels: 1},
		},
		rates: map[int][]int{},
	}

	sel := selectDevice(p, DefaultClassifier(), 16000, 1, 1024, testLog())
	if sel.Device != nil {
		t.Fatalf("expected system default (nil device), got %+v", sel.Device)
	}
	if sel.SampleRate != 16000 || sel.FramesPerBuffer != 1024 {
		t.Fatalf("fallback must keep the requested format: %+v", sel)
	}
}

func TestSelectDeviceSkipsOutputOnlyDevices(t *testing.T) {
	t.Parallel()

	p := &fakeProber{
		devices: []domain.DeviceDescriptor{
			{Index: 0, Name: "HDMI Output", DefaultRate: 48000, MaxInputChannels: 0},
			{Index: 1, Name: "Conference Speakerphone", DefaultRate: 16000, MaxInputChannels: 1},
		},
		rates: map[int][]int{0: {16000}, 1: {16000}},
	}

	sel := selectDevice(p, DefaultClassifier(), 16000, 1, 512, testLog())
	if sel.Device == nil || sel.Device.Index != 1 {
		t.Fatalf("expected input-capable device, got %+v", sel.Device)
	}
}

func TestSelectDeviceEnumerationError(t *testing.T) {
	t.Parallel()

	p := &fakeProber{err: errors.New("host api gone")}
	sel := selectDevice(p, DefaultClassifier(), 16000, 1, 1024, testLog())
	if sel.Device != nil {
		t.Fatalf("expected default fallback on enumeration error")
	}
}

func TestDefaultClassifier(t *testing.T) {
	t.Parallel()

	classify := DefaultClassifier()
	cases := []struct {
		name string
		want DeviceClass
	}{
		{"ReSpeaker 4 Mic Array (UAC1.0)", ClassExternal},
		{"Jabra SPEAK 510 USB", ClassExternal},
		{"bcm2835 Headphones", ClassBuiltIn},
		{"HDA Intel HDMI", ClassBuiltIn},
		{"Mystery Device 3000", ClassUnknown},
	}
	for _, tc := range cases {
		if got := classify(tc.name); got != tc.want {
			t.Fatalf("classify(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}

	// Unknown devices must rank with external ones: better to try a valid
	// mic than to skip it.
	if classRank(ClassUnknown) != classRank(ClassExternal) {
		t.Fatalf("unknown devices must sort with external devices")
	}
}
