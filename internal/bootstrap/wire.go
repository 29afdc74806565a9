package bootstrap

import (
	"github.com/sirupsen/logrus"

	"meetcap/internal/config"
	"meetcap/internal/ports"
	"meetcap/internal/segment"
	"meetcap/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.Controller
	Store      *segment.Store
	Config     config.Config
}

// Build wires the capture engine. The hardware-facing adapters (device
// capture, speech detector, event bus) are injected so the graph can be
// assembled against fakes.
func Build(
	cfg config.Config,
	capture ports.AudioCapture,
	detector ports.SpeechDetector,
	events ports.EventPublisher,
	log *logrus.Logger,
) Services {
	store := segment.NewStore(cfg.Storage.TempDir, cfg.Storage.RecordingsDir, events, log)

	controller := usecase.NewController(capture, detector, store, events, usecase.Config{
		Capture: ports.CaptureRequest{
			SampleRate:      cfg.Audio.SampleRate,
			Channels:        cfg.Audio.Channels,
			FramesPerBuffer: cfg.Audio.ChunkSize,
		},
		Policy: usecase.FlushPolicy{
			MinBuffers:    cfg.Segmenter.MinBuffers,
			MaxBuffers:    cfg.Segmenter.MaxBuffers,
			SilenceStreak: cfg.Segmenter.SilenceStreak,
		},
		JoinTimeout: config.StopJoinTimeout,
	}, log)

	return Services{Controller: controller, Store: store, Config: cfg}
}
