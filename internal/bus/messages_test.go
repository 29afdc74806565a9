package bus

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"meetcap/internal/domain"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    domain.Command
		ok      bool
	}{
		{
			name:    "start with session id",
			payload: `{"action":"start_recording","session_id":"20260829_101500"}`,
			want:    domain.Command{Action: domain.ActionStartRecording, SessionID: "20260829_101500"},
			ok:      true,
		},
		{
			name:    "stop without session id",
			payload: `{"action":"stop_recording"}`,
			want:    domain.Command{Action: domain.ActionStopRecording},
			ok:      true,
		},
		{
			name:    "pause",
			payload: `{"action":"pause_recording"}`,
			want:    domain.Command{Action: domain.ActionPauseRecording},
			ok:      true,
		},
		{
			name:    "resume",
			payload: `{"action":"resume_recording"}`,
			want:    domain.Command{Action: domain.ActionResumeRecording},
			ok:      true,
		},
		{
			name:    "foreign action on shared channel",
			payload: `{"action":"transcribe","session_id":"x"}`,
			ok:      false,
		},
		{
			name:    "not json",
			payload: `start please`,
			ok:      false,
		},
		{
			name:    "empty object",
			payload: `{}`,
			ok:      false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseCommand([]byte(tt.payload))
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("command: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStoppedEventEncodesNullPath(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC)

	data, err := json.Marshal(newStoppedEvent("s1", "", at))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"path":null`) {
		t.Fatalf("empty path must encode as null: %s", data)
	}

	data, err = json.Marshal(newStoppedEvent("s1", "/data/audio/recordings/s1.wav", at))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"path":"/data/audio/recordings/s1.wav"`) {
		t.Fatalf("path missing from payload: %s", data)
	}
}

func TestStartedEventTimestampIsRFC3339(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 29, 10, 15, 0, 0, time.UTC)
	e := newStartedEvent("s1", at)
	if e.Type != "recording_started" {
		t.Fatalf("unexpected type %q", e.Type)
	}
	if _, err := time.Parse(time.RFC3339, e.Timestamp); err != nil {
		t.Fatalf("timestamp %q is not RFC 3339: %v", e.Timestamp, err)
	}
}

func TestSegmentEventTimestampIsUnixSeconds(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 8, 29, 10, 15, 0, 500_000_000, time.UTC)
	e := newSegmentEvent("s1", 3, "/tmp/s1/segment_0003.wav", at)
	want := float64(at.UnixNano()) / 1e9
	if e.Timestamp != want {
		t.Fatalf("timestamp: got %v, want %v", e.Timestamp, want)
	}
	if e.SegmentNum != 3 {
		t.Fatalf("segment num: got %d", e.SegmentNum)
	}
}
