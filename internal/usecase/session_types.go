package usecase

import (
	"sync/atomic"

	"meetcap/internal/domain"
	"meetcap/internal/ports"
)

// activeSession is the worker handle for one recording. The controller
// owns it: active and paused are written by the controller and only read
// by the capture loop; done closes when the loop has fully exited and is
// the gate for closing the stream.
type activeSession struct {
	session domain.Session
	stream  ports.AudioStream

	active atomic.Bool
	paused atomic.Bool
	done   chan struct{}
}

func newActiveSession(session domain.Session, stream ports.AudioStream) *activeSession {
	s := &activeSession{
		session: session,
		stream:  stream,
		done:    make(chan struct{}),
	}
	s.active.Store(true)
	return s
}
