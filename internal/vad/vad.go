// Package vad wraps the webrtc voice activity detector behind the
// pipeline's buffer-in/bool-out contract.
package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
	"github.com/sirupsen/logrus"

	"meetcap/internal/dsp"
)

// The engine only accepts 10/20/30 ms frames at these rates. Anything else
// is resampled to the canonical rate and reshaped to one canonical frame.
const (
	canonicalRate     = 16000
	canonicalFrameMs  = 20
	canonicalSamples  = canonicalRate * canonicalFrameMs / 1000
	canonicalFrameLen = canonicalSamples * 2
)

// engine is the subset of the webrtc VAD the detector needs; it exists so
// failure paths can be exercised without the native library.
type engine interface {
	Process(rate int, frame []byte) (bool, error)
}

// Detector classifies audio buffers as speech or silence.
type Detector struct {
	eng engine
	log *logrus.Entry
}

// New builds a detector at the given webrtc aggressiveness (0-3).
func New(aggressiveness int, log *logrus.Logger) (*Detector, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create vad: %w", err)
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, fmt.Errorf("failed to set vad mode %d: %w", aggressiveness, err)
	}
	return newDetector(v, log), nil
}

func newDetector(eng engine, log *logrus.Logger) *Detector {
	return &Detector{
		eng: eng,
		log: log.WithField("component", "vad"),
	}
}

// IsSpeech reports whether buf likely contains speech. buf is 16-bit PCM at
// rate; buffers at unsupported rates or lengths are resampled to the
// canonical frame first.
func (d *Detector) IsSpeech(buf []byte, rate int) bool {
	frame, frameRate := buf, rate
	if !validRateAndFrame(rate, len(buf)/2) {
		frame = fitFrame(dsp.Resample(buf, rate, canonicalRate))
		frameRate = canonicalRate
	}

	speech, err := d.eng.Process(frameRate, frame)
	if err != nil {
		// Fail open: misclassifying silence as speech only delays a flush,
		// while dropping real speech loses meeting audio for good.
		d.log.WithError(err).Debug("classifier error, keeping buffer as speech")
		return true
	}
	return speech
}

// validRateAndFrame mirrors the engine's accepted input set: 10/20/30 ms
// frames at 8/16/32/48 kHz.
func validRateAndFrame(rate, samples int) bool {
	switch rate {
	case 8000, 16000, 32000, 48000:
	default:
		return false
	}
	if samples <= 0 || samples*1000%rate != 0 {
		return false
	}
	switch samples * 1000 / rate {
	case 10, 20, 30:
		return true
	}
	return false
}

// fitFrame pads with zero-silence or truncates so the classifier always
// sees exactly one canonical frame.
func fitFrame(pcm []byte) []byte {
	if len(pcm) == canonicalFrameLen {
		return pcm
	}
	frame := make([]byte, canonicalFrameLen)
	copy(frame, pcm)
	return frame
}
