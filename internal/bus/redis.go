package bus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"meetcap/internal/config"
	"meetcap/internal/domain"
)

const publishTimeout = 2 * time.Second

// Bus is the Redis pub/sub adapter: commands in, events out. Publishing is
// fire-and-forget; a broker hiccup must never stall the capture path, so
// failures are logged and dropped.
type Bus struct {
	client *redis.Client
	cfg    config.RedisConfig
	log    *logrus.Entry
}

func New(cfg config.RedisConfig, log *logrus.Logger) *Bus {
	return &Bus{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr}),
		cfg:    cfg,
		log:    log.WithField("component", "bus"),
	}
}

func (b *Bus) Close() error {
	return b.client.Close()
}

// Commands subscribes to the command channel and delivers decoded commands
// until ctx is cancelled or the subscription drops. Unrecognized payloads
// are ignored, not fatal: other services share the channel.
func (b *Bus) Commands(ctx context.Context) (<-chan domain.Command, error) {
	sub := b.client.Subscribe(ctx, b.cfg.CommandChannel)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.cfg.CommandChannel, err)
	}

	out := make(chan domain.Command)
	go func() {
		defer close(out)
		defer func() { _ = sub.Close() }()
		for {
			select {
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				cmd, ok := ParseCommand([]byte(msg.Payload))
				if !ok {
					b.log.WithField("payload", msg.Payload).Debug("ignoring unrecognized command")
					continue
				}
				select {
				case out <- cmd:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) RecordingStarted(sessionID string, at time.Time) {
	b.publish(b.cfg.EventChannel, newStartedEvent(sessionID, at))
}

func (b *Bus) RecordingStopped(sessionID, path string, at time.Time) {
	b.publish(b.cfg.EventChannel, newStoppedEvent(sessionID, path, at))
}

func (b *Bus) SegmentSaved(sessionID string, segmentNum int, path string, at time.Time) {
	b.publish(b.cfg.SegmentChannel, newSegmentEvent(sessionID, segmentNum, path, at))
}

func (b *Bus) UpdateDisplay(state domain.DisplayState, sessionID string) {
	b.publish(b.cfg.HardwareChannel, displayCommand{
		Action:    "update_display",
		State:     string(state),
		SessionID: sessionID,
	})
}

func (b *Bus) publish(channel string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := b.client.Publish(ctx, channel, mustJSON(payload)).Err(); err != nil {
		b.log.WithError(err).WithField("channel", channel).Warn("failed to publish event")
	}
}
