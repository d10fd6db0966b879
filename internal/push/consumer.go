package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mlnotify/pkg/backoff"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handler processes one delivered push payload. It must not panic and must
// swallow its own failures; the consumer acks every claimed message.
type Handler func(ctx context.Context, data map[string]string)

// Consumer claims push messages for a single device token via a consumer
// group and feeds them to a Handler.
type Consumer struct {
	C            *Client
	Token        string
	ConsumerName string
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

// Init ensures the device stream and consumer group exist.
func (c *Consumer) Init(ctx context.Context) error {
	err := c.C.Rdb.XGroupCreateMkStream(ctx, c.C.streamKey(c.Token), c.C.Cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP Consumer Group name already exists") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("stream", c.C.streamKey(c.Token)).
		Str("group", c.C.Cfg.Group).
		Msg("push stream and consumer group ready")

	return nil
}

// Run claims messages until ctx is cancelled. Transport errors back off with
// jitter; a message is acked once the handler returns, delivered at most once
// per claim.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, streamID, err := c.claim(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempt++
			delay := backoff.ExponentialJitter(c.BaseBackoff, c.MaxBackoff, attempt)
			log.Ctx(ctx).Warn().Err(err).Msgf("claim failed, backing off %s", delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			continue
		}
		attempt = 0
		if data == nil {
			continue
		}

		handle(ctx, data)

		if err := c.C.Rdb.XAck(ctx, c.C.streamKey(c.Token), c.C.Cfg.Group, streamID).Err(); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msgf("failed to ack message %s", streamID)
		}
	}
}

func (c *Consumer) claim(ctx context.Context, block time.Duration) (map[string]string, string, error) {
	res, err := c.C.Rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.C.Cfg.Group,
		Consumer: c.ConsumerName,
		Streams:  []string{c.C.streamKey(c.Token), ">"},
		Count:    1,
		Block:    block,
	}).Result()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", nil
		}
		return nil, "", err
	}

	if len(res) == 0 || len(res[0].Messages) == 0 {
		return nil, "", nil
	}

	msg := res[0].Messages[0]
	raw := msg.Values["payload"]
	var data map[string]string
	switch v := raw.(type) {
	case string:
		_ = json.Unmarshal([]byte(v), &data)
	case []byte:
		_ = json.Unmarshal(v, &data)
	default:
		return nil, "", fmt.Errorf("unexpected payload type: %T", v)
	}
	return data, msg.ID, nil
}
