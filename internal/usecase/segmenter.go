package usecase

// FlushPolicy decides when an accumulated run of buffers becomes a segment.
// Counts are in capture buffers, not wall time: at 16 kHz with 1024-frame
// buffers the defaults work out to roughly 3 to 32 seconds per segment.
type FlushPolicy struct {
	// MinBuffers is the floor below which silence never triggers a flush.
	MinBuffers int
	// MaxBuffers caps a segment regardless of speech activity.
	MaxBuffers int
	// SilenceStreak is the number of consecutive non-speech buffers that
	// closes a segment once MinBuffers is reached.
	SilenceStreak int
}

func (p FlushPolicy) normalize() FlushPolicy {
	if p.MinBuffers <= 0 {
		p.MinBuffers = 50
	}
	if p.MaxBuffers < p.MinBuffers {
		p.MaxBuffers = 500
	}
	if p.SilenceStreak <= 0 {
		p.SilenceStreak = 10
	}
	return p
}

// segmenter accumulates capture buffers in arrival order and applies the
// flush policy. It is not safe for concurrent use; the capture loop is its
// only caller.
type segmenter struct {
	policy  FlushPolicy
	frames  [][]byte
	silence int
}

func newSegmenter(policy FlushPolicy) *segmenter {
	return &segmenter{policy: policy.normalize()}
}

// Append adds one buffer and reports whether the accumulated run should be
// flushed now. A speech buffer resets the silence streak; the returned
// slice is the complete run in arrival order and the segmenter starts over
// empty.
func (g *segmenter) Append(buf []byte, speech bool) ([][]byte, bool) {
	g.frames = append(g.frames, buf)
	if speech {
		g.silence = 0
	} else {
		g.silence++
	}

	if len(g.frames) >= g.policy.MaxBuffers {
		return g.take(), true
	}
	if len(g.frames) >= g.policy.MinBuffers && g.silence >= g.policy.SilenceStreak {
		return g.take(), true
	}
	return nil, false
}

// Drain returns whatever is buffered, even a run shorter than MinBuffers.
// Called once when the capture loop exits so trailing audio is never lost.
func (g *segmenter) Drain() [][]byte {
	return g.take()
}

func (g *segmenter) take() [][]byte {
	frames := g.frames
	g.frames = nil
	g.silence = 0
	return frames
}
