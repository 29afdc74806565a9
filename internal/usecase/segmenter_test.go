package usecase

import "testing"

func TestSegmenterFlushesOnSilenceAfterMinimum(t *testing.T) {
	t.Parallel()

	g := newSegmenter(FlushPolicy{MinBuffers: 3, MaxBuffers: 100, SilenceStreak: 2})

	for i := 0; i < 3; i++ {
		if frames, ok := g.Append([]byte{byte(i)}, true); ok {
			t.Fatalf("unexpected flush at speech buffer %d: %d frames", i, len(frames))
		}
	}
	if _, ok := g.Append([]byte{3}, false); ok {
		t.Fatalf("flushed after one silent buffer, streak is two")
	}
	frames, ok := g.Append([]byte{4}, false)
	if !ok {
		t.Fatalf("expected flush after silence streak")
	}
	if len(frames) != 5 {
		t.Fatalf("flush should carry the whole run: got %d frames, want 5", len(frames))
	}
	for i, f := range frames {
		if f[0] != byte(i) {
			t.Fatalf("frame %d out of order: got %d", i, f[0])
		}
	}
}

func TestSegmenterSilenceBelowMinimumKeepsAccumulating(t *testing.T) {
	t.Parallel()

	g := newSegmenter(FlushPolicy{MinBuffers: 10, MaxBuffers: 100, SilenceStreak: 2})

	// Plenty of silence, but the run is still below the floor.
	for i := 0; i < 9; i++ {
		if _, ok := g.Append([]byte{0}, false); ok {
			t.Fatalf("flushed below MinBuffers at buffer %d", i)
		}
	}
	frames, ok := g.Append([]byte{0}, false)
	if !ok || len(frames) != 10 {
		t.Fatalf("expected flush at MinBuffers with streak satisfied: ok=%v frames=%d", ok, len(frames))
	}
}

func TestSegmenterSpeechResetsSilenceStreak(t *testing.T) {
	t.Parallel()

	g := newSegmenter(FlushPolicy{MinBuffers: 1, MaxBuffers: 100, SilenceStreak: 3})

	g.Append([]byte{0}, false)
	g.Append([]byte{1}, false)
	if _, ok := g.Append([]byte{2}, true); ok {
		t.Fatalf("speech buffer must not flush")
	}
	g.Append([]byte{3}, false)
	if _, ok := g.Append([]byte{4}, false); ok {
		t.Fatalf("streak should have been reset by speech")
	}
	if _, ok := g.Append([]byte{5}, false); !ok {
		t.Fatalf("expected flush once streak rebuilt after speech")
	}
}

func TestSegmenterMaxCapFlushesThroughSpeech(t *testing.T) {
	t.Parallel()

	g := newSegmenter(FlushPolicy{MinBuffers: 2, MaxBuffers: 5, SilenceStreak: 10})

	for i := 0; i < 4; i++ {
		if _, ok := g.Append([]byte{byte(i)}, true); ok {
			t.Fatalf("flushed before cap at buffer %d", i)
		}
	}
	frames, ok := g.Append([]byte{4}, true)
	if !ok {
		t.Fatalf("expected flush at MaxBuffers even with continuous speech")
	}
	if len(frames) != 5 {
		t.Fatalf("cap flush frames: got %d, want 5", len(frames))
	}

	// The next run starts from scratch.
	if _, ok := g.Append([]byte{5}, true); ok {
		t.Fatalf("segmenter did not reset after cap flush")
	}
}

func TestSegmenterDrainReturnsRemainder(t *testing.T) {
	t.Parallel()

	g := newSegmenter(FlushPolicy{MinBuffers: 50, MaxBuffers: 500, SilenceStreak: 10})

	g.Append([]byte{0}, true)
	g.Append([]byte{1}, false)

	frames := g.Drain()
	if len(frames) != 2 {
		t.Fatalf("drain frames: got %d, want 2", len(frames))
	}
	if extra := g.Drain(); len(extra) != 0 {
		t.Fatalf("second drain must be empty, got %d frames", len(extra))
	}
}

func TestFlushPolicyNormalize(t *testing.T) {
	t.Parallel()

	p := FlushPolicy{}.normalize()
	if p.MinBuffers != 50 || p.MaxBuffers != 500 || p.SilenceStreak != 10 {
		t.Fatalf("unexpected defaults: %+v", p)
	}

	// A cap below the floor is replaced, not clamped to the floor.
	p = FlushPolicy{MinBuffers: 40, MaxBuffers: 20, SilenceStreak: 5}.normalize()
	if p.MaxBuffers != 500 {
		t.Fatalf("expected default cap for inverted bounds, got %d", p.MaxBuffers)
	}
}
