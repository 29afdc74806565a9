package usecase

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"meetcap/internal/domain"
	"meetcap/internal/ports"
)

// ErrUnsafeShutdown reports that the capture loop failed to exit within the
// join timeout. The input stream is deliberately left open: closing a
// device stream while another goroutine may still be reading from it is
// undefined behavior at the native audio layer.
var ErrUnsafeShutdown = errors.New("capture loop did not exit in time, stream left open")

// Config controls the recording lifecycle.
type Config struct {
	Capture     ports.CaptureRequest
	Policy      FlushPolicy
	JoinTimeout time.Duration
}

// Controller owns the recording lifecycle: it guarantees at most one active
// session, spawns and joins the capture loop, and only closes the input
// stream after the loop has fully exited.
type Controller struct {
	capture   ports.AudioCapture
	detector  ports.SpeechDetector
	store     ports.SegmentStore
	events    ports.EventPublisher
	finalizer sessionFinalizer
	cfg       Config
	log       *logrus.Entry

	mu      sync.Mutex
	current *activeSession
}

func NewController(
	capture ports.AudioCapture,
	detector ports.SpeechDetector,
	store ports.SegmentStore,
	events ports.EventPublisher,
	cfg Config,
	log *logrus.Logger,
) *Controller {
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = 5 * time.Second
	}
	cfg.Policy = cfg.Policy.normalize()
	return &Controller{
		capture:   capture,
		detector:  detector,
		store:     store,
		events:    events,
		finalizer: newSessionFinalizer(store, events, log),
		cfg:       cfg,
		log:       log.WithField("component", "recorder"),
	}
}

// Start begins a new recording session. A second start while one is active
// is rejected with no side effects. An empty session id gets a timestamp
// id the rest of the pipeline keys on.
func (c *Controller) Start(sessionID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.log.WithField("session", c.current.session.ID).Warn("already recording, start ignored")
		return false, nil
	}

	if sessionID == "" {
		sessionID = domain.NewSessionID(time.Now())
	}

	if err := c.store.Prepare(sessionID); err != nil {
		return false, err
	}

	stream, format, err := c.capture.Open(c.cfg.Capture)
	if err != nil {
		return false, fmt.Errorf("failed to open capture stream: %w", err)
	}

	session := domain.Session{
		ID:          sessionID,
		CaptureRate: format.SampleRate,
		TargetRate:  c.cfg.Capture.SampleRate,
		Channels:    format.Channels,
	}
	active := newActiveSession(session, stream)
	c.current = active

	go c.captureLoop(active)

	c.events.RecordingStarted(sessionID, time.Now())
	c.events.UpdateDisplay(domain.DisplayStateRecording, sessionID)
	c.log.WithFields(logrus.Fields{
		"session": sessionID,
		"rate":    format.SampleRate,
		"frames":  format.FramesPerBuffer,
	}).Info("recording started")
	return true, nil
}

// Stop ends the active session: signal the loop, join it, close the
// stream, combine segments, notify. Stopping while idle is not an error —
// a recording_stopped event with a null path still goes out so downstream
// consumers reset to idle.
func (c *Controller) Stop(sessionIDHint string) (string, error) {
	c.mu.Lock()
	active := c.current
	c.current = nil
	c.mu.Unlock()

	if active == nil {
		c.log.Info("not recording, stop is a no-op")
		c.events.RecordingStopped(sessionIDHint, "", time.Now())
		return "", nil
	}

	sessionID := active.session.ID
	c.log.WithField("session", sessionID).Info("stopping recording")

	// The loop observes the cleared flag at the top of its next iteration,
	// bounded by one buffer's read latency.
	active.active.Store(false)

	select {
	case <-active.done:
	case <-time.After(c.cfg.JoinTimeout):
		c.log.WithField("session", sessionID).Error("capture loop did not exit within join timeout, leaving stream open")
		c.events.RecordingStopped(sessionID, "", time.Now())
		return sessionID, ErrUnsafeShutdown
	}

	if err := active.stream.Close(); err != nil {
		c.log.WithError(err).WithField("session", sessionID).Warn("failed to close input stream")
	}

	c.finalizer.Finalize(sessionID)
	return sessionID, nil
}

// Pause stops accumulating audio without ending the session. Buffers are
// still read from the device so it never backs up.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	c.current.paused.Store(true)
	c.log.WithField("session", c.current.session.ID).Info("recording paused")
	return true
}

// Resume re-enables accumulation after a pause.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return false
	}
	c.current.paused.Store(false)
	c.log.WithField("session", c.current.session.ID).Info("recording resumed")
	return true
}

// Status returns the engine's current state.
func (c *Controller) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return domain.Status{State: domain.SessionStateIdle}
	}
	state := domain.SessionStateRecording
	if c.current.paused.Load() {
		state = domain.SessionStatePaused
	}
	return domain.Status{State: state, SessionID: c.current.session.ID, Active: true}
}
