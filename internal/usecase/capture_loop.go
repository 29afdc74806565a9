package usecase

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// captureLoop is the per-session worker goroutine. It reads buffers from
// the stream, classifies them, and hands completed runs to the segment
// writer. It never closes the stream; the controller does that after the
// loop has exited.
func (c *Controller) captureLoop(s *activeSession) {
	defer close(s.done)

	log := c.log.WithField("session", s.session.ID)
	writer := c.store.Writer(s.session)
	seg := newSegmenter(c.cfg.Policy)
	segmentNum := 0

	flush := func(frames [][]byte) {
		if len(frames) == 0 {
			return
		}
		path, err := writer.Save(frames, segmentNum)
		if err != nil {
			log.WithError(err).WithField("segment", segmentNum).Error("failed to save segment")
			return
		}
		log.WithFields(logrus.Fields{
			"segment": segmentNum,
			"buffers": len(frames),
			"path":    path,
		}).Debug("segment saved")
		segmentNum++
	}

	for s.active.Load() {
		buf, err := s.stream.Read()
		if err != nil {
			// EOF is the stream's normal way of ending; anything else is
			// a device failure worth logging. Either way the loop exits
			// and the flush below still runs.
			if !errors.Is(err, io.EOF) {
				log.WithError(err).Error("capture read failed")
			}
			break
		}
		if s.paused.Load() {
			// Keep draining the device so it never backs up, but drop
			// the audio.
			continue
		}

		speech := c.detector.IsSpeech(buf, s.session.CaptureRate)
		if frames, ok := seg.Append(buf, speech); ok {
			flush(frames)
		}
	}

	flush(seg.Drain())
}
