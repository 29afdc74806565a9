package ports

import (
	"time"

	"meetcap/internal/domain"
)

// CaptureRequest describes the format the engine wants from the microphone.
// The adapter negotiates with the hardware and may come back with a
// different rate and a proportionally scaled buffer.
type CaptureRequest struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// AudioStream is a live input stream. Read blocks until one buffer of
// samples is available and returns it as little-endian 16-bit PCM; the
// returned slice is owned by the caller. Close stops the stream and
// releases the device; it must only be called once the reader has exited.
type AudioStream interface {
	Read() ([]byte, error)
	Close() error
}

// AudioCapture negotiates a device and opens capture streams.
type AudioCapture interface {
	Open(req CaptureRequest) (AudioStream, domain.StreamFormat, error)
}

// SpeechDetector classifies one audio buffer as speech or not, regardless
// of the buffer's native sample rate.
type SpeechDetector interface {
	IsSpeech(buf []byte, rate int) bool
}

// SegmentWriter persists ordered runs of buffers as durable segment files
// for one session.
type SegmentWriter interface {
	Save(frames [][]byte, segmentNum int) (string, error)
}

// SegmentStore owns the on-disk layout of segments and recordings.
type SegmentStore interface {
	// Prepare creates the per-session temp area.
	Prepare(sessionID string) error
	// Writer returns a segment writer bound to one session.
	Writer(session domain.Session) SegmentWriter
	// Combine merges all of a session's segments into one recording and
	// cleans up the temp area. No segments is a valid outcome: ("", nil).
	Combine(sessionID string) (string, error)
}

// EventPublisher emits lifecycle and segment notifications to downstream
// consumers. Publishes are fire-and-forget; implementations log failures
// rather than surface them into the capture path.
type EventPublisher interface {
	RecordingStarted(sessionID string, at time.Time)
	// RecordingStopped takes path == "" to mean "no audio captured"; the
	// wire representation is an explicit null.
	RecordingStopped(sessionID string, path string, at time.Time)
	SegmentSaved(sessionID string, segmentNum int, path string, at time.Time)
	UpdateDisplay(state domain.DisplayState, sessionID string)
}
