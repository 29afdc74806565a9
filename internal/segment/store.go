// Package segment persists captured audio: per-chunk segment files during a
// session, and the single combined recording once the session ends.
package segment

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"meetcap/internal/domain"
	"meetcap/internal/ports"
)

// Store owns the on-disk layout: <temp>/<session>/segment_NNNN.wav while
// recording, <recordings>/<session>.wav afterwards.
type Store struct {
	tempDir       string
	recordingsDir string
	events        ports.EventPublisher
	log           *logrus.Entry
}

func NewStore(tempDir, recordingsDir string, events ports.EventPublisher, log *logrus.Logger) *Store {
	return &Store{
		tempDir:       tempDir,
		recordingsDir: recordingsDir,
		events:        events,
		log:           log.WithField("component", "segment"),
	}
}

// Prepare creates the per-session temp area.
func (s *Store) Prepare(sessionID string) error {
	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session temp dir: %w", err)
	}
	return nil
}

// Writer returns a segment writer bound to one session.
func (s *Store) Writer(session domain.Session) ports.SegmentWriter {
	return &Writer{store: s, session: session}
}

func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.tempDir, sessionID)
}

func (s *Store) segmentPath(sessionID string, segmentNum int) string {
	return filepath.Join(s.sessionDir(sessionID), fmt.Sprintf("segment_%04d.wav", segmentNum))
}
