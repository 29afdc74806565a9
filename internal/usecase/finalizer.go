package usecase

import (
	"time"

	"github.com/sirupsen/logrus"

	"meetcap/internal/domain"
	"meetcap/internal/ports"
)

// sessionFinalizer runs the post-stop pipeline: combine the session's
// segments into one recording, publish the stop notification, and flip the
// display to processing. A combine failure downgrades the event to a null
// path rather than suppressing it; downstream consumers still need to know
// the session ended.
type sessionFinalizer struct {
	store  ports.SegmentStore
	events ports.EventPublisher
	log    *logrus.Entry
}

func newSessionFinalizer(store ports.SegmentStore, events ports.EventPublisher, log *logrus.Logger) sessionFinalizer {
	return sessionFinalizer{
		store:  store,
		events: events,
		log:    log.WithField("component", "finalizer"),
	}
}

func (f sessionFinalizer) Finalize(sessionID string) string {
	path, err := f.store.Combine(sessionID)
	if err != nil {
		f.log.WithError(err).WithField("session", sessionID).Error("failed to combine segments")
		path = ""
	}

	f.events.RecordingStopped(sessionID, path, time.Now())
	f.events.UpdateDisplay(domain.DisplayStateProcessing, sessionID)

	f.log.WithFields(logrus.Fields{
		"session": sessionID,
		"path":    path,
	}).Info("recording finalized")
	return path
}
