package segment

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"meetcap/internal/domain"
	"meetcap/internal/dsp"
)

const bitDepth = 16

// Writer persists ordered runs of capture buffers as WAV segments at the
// session's target rate.
type Writer struct {
	store   *Store
	session domain.Session
}

// Save concatenates frames in order and writes one segment file. When the
// capture rate differs from the target rate the whole concatenation is
// resampled once, not per chunk, so interpolation error never compounds at
// buffer boundaries. Segment numbers are caller-supplied and must be new;
// an existing number is refused, never overwritten.
func (w *Writer) Save(frames [][]byte, segmentNum int) (string, error) {
	path := w.store.segmentPath(w.session.ID, segmentNum)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("segment %d already exists for session %s", segmentNum, w.session.ID)
	}

	var total int
	for _, f := range frames {
		total += len(f)
	}
	data := make([]byte, 0, total)
	for _, f := range frames {
		data = append(data, f...)
	}

	if w.session.NeedsResample() {
		data = dsp.Resample(data, w.session.CaptureRate, w.session.TargetRate)
	}

	if err := w.store.Prepare(w.session.ID); err != nil {
		return "", err
	}
	if err := writeWAV(path, data, w.session.TargetRate, w.session.Channels); err != nil {
		return "", fmt.Errorf("failed to write segment %d: %w", segmentNum, err)
	}

	w.store.events.SegmentSaved(w.session.ID, segmentNum, path, time.Now())
	return path, nil
}

func writeWAV(path string, pcm []byte, rate, channels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(f, rate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           pcm16ToInts(pcm),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func pcm16ToInts(pcm []byte) []int {
	n := len(pcm) / 2
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2])))
	}
	return out
}
