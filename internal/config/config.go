package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config stores runtime configuration for the capture engine.
type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	VAD       VADConfig       `yaml:"vad"`
	Segmenter SegmenterConfig `yaml:"segmenter"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Log       LogConfig       `yaml:"log"`
}

// AudioConfig describes the format the pipeline wants from the microphone.
// ChunkSize is in frames per read at the target rate; reads at a fallback
// native rate are scaled to span the same wall-clock duration.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	ChunkSize  int `yaml:"chunk_size"`
}

type VADConfig struct {
	// Aggressiveness is the webrtc VAD mode, 0 (permissive) to 3 (strict).
	Aggressiveness int `yaml:"aggressiveness"`
}

// SegmenterConfig controls when an accumulated run is flushed to a segment.
type SegmenterConfig struct {
	MinBuffers    int `yaml:"min_buffers"`
	MaxBuffers    int `yaml:"max_buffers"`
	SilenceStreak int `yaml:"silence_streak"`
}

type StorageConfig struct {
	TempDir       string `yaml:"temp_dir"`
	RecordingsDir string `yaml:"recordings_dir"`
}

// RedisConfig addresses the pub/sub bus and names its channels.
type RedisConfig struct {
	Addr            string `yaml:"addr"`
	CommandChannel  string `yaml:"command_channel"`
	EventChannel    string `yaml:"event_channel"`
	SegmentChannel  string `yaml:"segment_channel"`
	HardwareChannel string `yaml:"hardware_channel"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// StopJoinTimeout bounds how long stop waits for the capture loop to exit
// before declaring the shutdown unsafe.
const StopJoinTimeout = 5 * time.Second

// Default returns the configuration the appliance ships with.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate: 16000,
			Channels:   1,
			ChunkSize:  1024,
		},
		VAD: VADConfig{
			Aggressiveness: 2,
		},
		Segmenter: SegmenterConfig{
			MinBuffers:    50,
			MaxBuffers:    500,
			SilenceStreak: 10,
		},
		Storage: StorageConfig{
			TempDir:       "/data/audio/temp",
			RecordingsDir: "/data/audio/recordings",
		},
		Redis: RedisConfig{
			Addr:            "redis:6379",
			CommandChannel:  "commands",
			EventChannel:    "events",
			SegmentChannel:  "audio_segments",
			HardwareChannel: "hardware_commands",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a yaml file, falling back to defaults when
// the file is absent. Out-of-range values are normalized rather than
// rejected so a hand-edited config never bricks the appliance.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := Default()

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = def.Audio.Channels
	}
	if c.Audio.ChunkSize < 64 {
		c.Audio.ChunkSize = def.Audio.ChunkSize
	}
	if c.VAD.Aggressiveness < 0 || c.VAD.Aggressiveness > 3 {
		c.VAD.Aggressiveness = def.VAD.Aggressiveness
	}
	if c.Segmenter.MinBuffers <= 0 {
		c.Segmenter.MinBuffers = def.Segmenter.MinBuffers
	}
	if c.Segmenter.MaxBuffers < c.Segmenter.MinBuffers {
		c.Segmenter.MaxBuffers = def.Segmenter.MaxBuffers
	}
	if c.Segmenter.SilenceStreak <= 0 {
		c.Segmenter.SilenceStreak = def.Segmenter.SilenceStreak
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = def.Storage.TempDir
	}
	if c.Storage.RecordingsDir == "" {
		c.Storage.RecordingsDir = def.Storage.RecordingsDir
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
	if c.Redis.CommandChannel == "" {
		c.Redis.CommandChannel = def.Redis.CommandChannel
	}
	if c.Redis.EventChannel == "" {
		c.Redis.EventChannel = def.Redis.EventChannel
	}
	if c.Redis.SegmentChannel == "" {
		c.Redis.SegmentChannel = def.Redis.SegmentChannel
	}
	if c.Redis.HardwareChannel == "" {
		c.Redis.HardwareChannel = def.Redis.HardwareChannel
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}
