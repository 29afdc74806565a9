package bus

import (
	"encoding/json"
	"time"

	"meetcap/internal/domain"
)

// Wire shapes for the shared channels. Lifecycle events carry RFC 3339
// timestamps; segment events carry unix seconds because the transcription
// consumer aligns segments against audio offsets.

type startedEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

type stoppedEvent struct {
	Type      string  `json:"type"`
	SessionID string  `json:"session_id"`
	Path      *string `json:"path"`
	Timestamp string  `json:"timestamp"`
}

type segmentEvent struct {
	SessionID  string  `json:"session_id"`
	SegmentNum int     `json:"segment_num"`
	Path       string  `json:"path"`
	Timestamp  float64 `json:"timestamp"`
}

type displayCommand struct {
	Action    string `json:"action"`
	State     string `json:"state"`
	SessionID string `json:"session_id,omitempty"`
}

func newStartedEvent(sessionID string, at time.Time) startedEvent {
	return startedEvent{
		Type:      "recording_started",
		SessionID: sessionID,
		Timestamp: at.Format(time.RFC3339),
	}
}

// newStoppedEvent encodes an empty path as JSON null: consumers treat null
// as "session ended with nothing recorded".
func newStoppedEvent(sessionID, path string, at time.Time) stoppedEvent {
	e := stoppedEvent{
		Type:      "recording_stopped",
		SessionID: sessionID,
		Timestamp: at.Format(time.RFC3339),
	}
	if path != "" {
		e.Path = &path
	}
	return e
}

func newSegmentEvent(sessionID string, segmentNum int, path string, at time.Time) segmentEvent {
	return segmentEvent{
		SessionID:  sessionID,
		SegmentNum: segmentNum,
		Path:       path,
		Timestamp:  float64(at.UnixNano()) / float64(time.Second),
	}
}

// ParseCommand decodes a command payload. Anything that is not valid JSON
// with a known action is reported as not-a-command.
func ParseCommand(payload []byte) (domain.Command, bool) {
	var cmd domain.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return domain.Command{}, false
	}
	switch cmd.Action {
	case domain.ActionStartRecording, domain.ActionStopRecording,
		domain.ActionPauseRecording, domain.ActionResumeRecording:
		return cmd, true
	}
	return domain.Command{}, false
}

func mustJSON(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// All payload types above marshal cleanly; this only fires on a
		// programming error.
		panic(err)
	}
	return data
}
