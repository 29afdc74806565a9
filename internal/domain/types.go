package domain

import "time"

// SessionState models the recording lifecycle.
type SessionState string

const (
	SessionStateIdle      SessionState = "idle"
	SessionStateRecording SessionState = "recording"
	SessionStatePaused    SessionState = "paused"
	SessionStateStopping  SessionState = "stopping"
)

// DisplayState is what the hardware/display collaborator is told to show.
type DisplayState string

const (
	DisplayStateRecording  DisplayState = "recording"
	DisplayStateProcessing DisplayState = "processing"
)

// Command actions recognized on the command channel. Anything else is ignored.
const (
	ActionStartRecording  = "start_recording"
	ActionStopRecording   = "stop_recording"
	ActionPauseRecording  = "pause_recording"
	ActionResumeRecording = "resume_recording"
)

// Command is one decoded payload from the command channel.
type Command struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id,omitempty"`
}

// Session identifies one recording attempt and the rates it runs at.
// CaptureRate is what the device actually delivers; TargetRate is what the
// downstream pipeline expects on disk.
type Session struct {
	ID          string
	CaptureRate int
	TargetRate  int
	Channels    int
}

// NeedsResample reports whether saved audio must be rate-converted.
func (s Session) NeedsResample() bool {
	return s.CaptureRate != s.TargetRate && s.CaptureRate > 0 && s.TargetRate > 0
}

// NewSessionID derives a timestamp session identifier, the format the rest
// of the pipeline keys meetings on.
func NewSessionID(now time.Time) string {
	return now.Format("20060102_150405")
}

// DeviceDescriptor is a read-only snapshot of one enumerated input device.
// Produced fresh on every selection pass; device availability changes
// between sessions.
type DeviceDescriptor struct {
	Index            int
	Name             string
	DefaultRate      int
	MaxInputChannels int
}

// StreamFormat describes the format a capture stream was actually opened at.
type StreamFormat struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// Status summarizes the engine's current runtime state.
type Status struct {
	State     SessionState `json:"state"`
	SessionID string       `json:"session_id,omitempty"`
	Active    bool         `json:"active"`
}
