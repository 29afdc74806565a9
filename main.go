package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"meetcap/internal/audio"
	"meetcap/internal/bootstrap"
	"meetcap/internal/bus"
	"meetcap/internal/config"
	"meetcap/internal/domain"
	"meetcap/internal/usecase"
	"meetcap/internal/vad"
)

func main() {
	configPath := flag.String("config", "/data/config/audio_capture.yaml", "path to the yaml config file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.Log.Level).Warn("unknown log level, staying on info")
	}

	detector, err := vad.New(cfg.VAD.Aggressiveness, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize speech detector")
	}

	capture, err := audio.NewCapture(audio.DefaultClassifier(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize audio subsystem")
	}
	defer capture.Terminate()

	events := bus.New(cfg.Redis, log)
	defer events.Close()

	services := bootstrap.Build(cfg, capture, detector, events, log)
	controller := services.Controller

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands, err := events.Commands(ctx)
	if err != nil {
		log.WithError(err).Fatal("failed to subscribe to command channel")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.WithFields(logrus.Fields{
		"rate":     cfg.Audio.SampleRate,
		"channels": cfg.Audio.Channels,
		"commands": cfg.Redis.CommandChannel,
	}).Info("audio capture service ready")

	for {
		select {
		case cmd, ok := <-commands:
			if !ok {
				log.Warn("command channel closed, shutting down")
				shutdown(controller, log)
				return
			}
			dispatch(controller, cmd, log)
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Info("shutting down")
			shutdown(controller, log)
			return
		}
	}
}

func dispatch(controller *usecase.Controller, cmd domain.Command, log *logrus.Logger) {
	switch cmd.Action {
	case domain.ActionStartRecording:
		if _, err := controller.Start(cmd.SessionID); err != nil {
			log.WithError(err).Error("start_recording failed")
		}
	case domain.ActionStopRecording:
		if _, err := controller.Stop(cmd.SessionID); err != nil {
			log.WithError(err).Error("stop_recording failed")
		}
	case domain.ActionPauseRecording:
		controller.Pause()
	case domain.ActionResumeRecording:
		controller.Resume()
	}
}

// shutdown stops an in-flight recording so captured audio is combined and
// announced before the process exits. Idle shutdown stays silent on the bus.
func shutdown(controller *usecase.Controller, log *logrus.Logger) {
	if !controller.Status().Active {
		return
	}
	if _, err := controller.Stop(""); err != nil {
		log.WithError(err).Error("failed to stop recording during shutdown")
	}
}
