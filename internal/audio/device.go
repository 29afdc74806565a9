package audio

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"meetcap/internal/domain"
)

// DeviceClass buckets an input device by where it probably lives.
type DeviceClass int

const (
	ClassExternal DeviceClass = iota
	ClassBuiltIn
	ClassUnknown
)

// Classifier maps a device name to a class. Kept pluggable so the keyword
// tables can grow without touching selection logic.
type Classifier func(name string) DeviceClass

var externalKeywords = []string{
	"usb", "uac", "respeaker", "jabra", "samson", "blue",
	"yeti", "rode", "fifine", "tonor", "boya", "maono",
	"external", "webcam", "camera",
}

var builtinKeywords = []string{
	"hdmi", "built-in", "bcm", "broadcom", "headphone",
	"analog", "spdif", "iec958",
}

// DefaultClassifier matches device names against the known USB/external and
// built-in keyword sets. Any USB meeting mic should work without a config
// change, so unknown names rank with external ones.
func DefaultClassifier() Classifier {
	return func(name string) DeviceClass {
		low := strings.ToLower(name)
		for _, kw := range externalKeywords {
			if strings.Contains(low, kw) {
				return ClassExternal
			}
		}
		for _, kw := range builtinKeywords {
			if strings.Contains(low, kw) {
				return ClassBuiltIn
			}
		}
		return ClassUnknown
	}
}

// prober abstracts device enumeration and capability testing so selection
// can be exercised without audio hardware.
type prober interface {
	Devices() ([]domain.DeviceDescriptor, error)
	Supports(dev domain.DeviceDescriptor, rate, channels int) bool
}

// Selection is the outcome of one device-selection pass. A nil Device means
// "let the host pick its default input and hope"; that is a recoverable,
// expected outcome, not a failure.
type Selection struct {
	Device          *domain.DeviceDescriptor
	SampleRate      int
	FramesPerBuffer int
}

// selectDevice picks the best input device for the requested format.
// External/unknown devices are tried before built-in ones; the exact target
// rate is tried on every candidate before falling back to each candidate's
// declared native rate with a proportionally scaled buffer, so each read
// still spans the same wall-clock duration.
func selectDevice(p prober, classify Classifier, targetRate, channels, baseFrames int, log *logrus.Entry) Selection {
	fallback := Selection{SampleRate: targetRate, FramesPerBuffer: baseFrames}

	devices, err := p.Devices()
	if err != nil {
		log.WithError(err).Warn("device enumeration failed, using system default input")
		return fallback
	}

	candidates := devices[:0:0]
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			candidates = append(candidates, dev)
		}
	}
	if len(candidates) == 0 {
		log.Warn("no input devices found, using system default input")
		return fallback
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return classRank(classify(candidates[i].Name)) < classRank(classify(candidates[j].Name))
	})

	for _, dev := range candidates {
		if p.Supports(dev, targetRate, channels) {
			dev := dev
			log.WithFields(logrus.Fields{"device": dev.Name, "rate": targetRate}).Info("selected input device")
			return Selection{Device: &dev, SampleRate: targetRate, FramesPerBuffer: baseFrames}
		}
	}

	for _, dev := range candidates {
		if dev.DefaultRate <= 0 || !p.Supports(dev, dev.DefaultRate, channels) {
			continue
		}
		dev := dev
		frames := baseFrames * dev.DefaultRate / targetRate
		log.WithFields(logrus.Fields{
			"device": dev.Name,
			"rate":   dev.DefaultRate,
			"frames": frames,
		}).Info("no device supports target rate, capturing at native rate")
		return Selection{Device: &dev, SampleRate: dev.DefaultRate, FramesPerBuffer: frames}
	}

	log.Warnf("no input device supports any usable rate, falling back to system default at %d Hz", targetRate)
	return fallback
}

func classRank(c DeviceClass) int {
	if c == ClassBuiltIn {
		return 1
	}
	return 0
}
