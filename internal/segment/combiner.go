package segment

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Combine merges all of a session's segments, in numeric order, into one
// recording file and cleans up the temp area. Zero segments is a valid
// outcome (stopping with no captured audio) and returns ("", nil) without
// touching the filesystem.
func (s *Store) Combine(sessionID string) (string, error) {
	dir := s.sessionDir(sessionID)
	segments, err := listSegments(dir)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		s.log.WithField("session", sessionID).Info("no segments to combine")
		return "", nil
	}

	if err := os.MkdirAll(s.recordingsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recordings dir: %w", err)
	}
	outPath := filepath.Join(s.recordingsDir, sessionID+".wav")
	if err := mergeWAVs(segments, outPath); err != nil {
		return "", fmt.Errorf("failed to combine segments: %w", err)
	}

	for _, seg := range segments {
		if err := os.Remove(seg); err != nil {
			s.log.WithError(err).WithField("segment", seg).Warn("failed to delete merged segment")
		}
	}
	// Best effort; the dir may already be gone or hold stray files.
	_ = os.Remove(dir)

	s.log.WithFields(map[string]interface{}{
		"session":  sessionID,
		"segments": len(segments),
		"path":     outPath,
	}).Info("combined segments")
	return outPath, nil
}

func listSegments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list session dir: %w", err)
	}

	var segments []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "segment_") || !strings.HasSuffix(name, ".wav") {
			continue
		}
		segments = append(segments, filepath.Join(dir, name))
	}
	// Zero-padded numbers make lexicographic order numeric order.
	sort.Strings(segments)
	return segments, nil
}

func mergeWAVs(segments []string, outPath string) error {
	first, err := os.Open(segments[0])
	if err != nil {
		return err
	}
	dec := wav.NewDecoder(first)
	if !dec.IsValidFile() {
		_ = first.Close()
		return fmt.Errorf("segment %s is not a valid wav file", segments[0])
	}
	format := dec.Format()
	sampleBits := int(dec.BitDepth)
	_ = first.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	enc := wav.NewEncoder(out, format.SampleRate, sampleBits, format.NumChannels, 1)

	for _, seg := range segments {
		if err := appendWAV(enc, seg, format); err != nil {
			_ = out.Close()
			return err
		}
	}

	if err := enc.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func appendWAV(enc *wav.Encoder, path string, format *audio.Format) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("segment %s is not a valid wav file", path)
	}

	buf := &audio.IntBuffer{Format: format, Data: make([]int, 4096), SourceBitDepth: bitDepth}
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if n == 0 {
			return nil
		}
		chunk := &audio.IntBuffer{Format: format, Data: buf.Data[:n], SourceBitDepth: bitDepth}
		if err := enc.Write(chunk); err != nil {
			return fmt.Errorf("failed to append %s: %w", path, err)
		}
	}
}
