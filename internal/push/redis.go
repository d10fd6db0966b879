package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mlnotify/internal/config"
	"mlnotify/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Provider error classes. The dispatch endpoint maps these onto HTTP status
// codes; everything else is treated as an internal provider failure.
var (
	ErrTokenNotRegistered = errors.New("push: registration token not registered")
	ErrInvalidArgument    = errors.New("push: invalid argument in message")
)

// Client is the push fabric backed by Redis streams. Every registered device
// token owns one stream; the token directory set tells registered tokens
// apart from garbage.
type Client struct {
	Cfg config.Push
	Rdb *redis.Client
}

func New(redisCfg config.Redis, pushCfg config.Push) *Client {
	log.Info().Msgf("connecting to redis at %s", redisCfg.Addr)
	c := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	return &Client{Cfg: pushCfg, Rdb: c}
}

func (c *Client) Connect(ctx context.Context) error {
	if err := c.Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Ctx(ctx).Info().Msg("connected to redis")
	return nil
}

func (c *Client) streamKey(token string) string {
	return c.Cfg.StreamPrefix + ":" + token
}

// Send delivers a data-only message to the device stream for m.Token and
// returns the stream entry id as the message id.
func (c *Client) Send(ctx context.Context, m domain.PushMessage) (string, error) {
	if m.Token == "" || len(m.Data) == 0 {
		return "", ErrInvalidArgument
	}

	registered, err := c.Rdb.SIsMember(ctx, c.Cfg.TokenSetKey, m.Token).Result()
	if err != nil {
		return "", fmt.Errorf("checking token directory: %w", err)
	}
	if !registered {
		return "", fmt.Errorf("%w: %s", ErrTokenNotRegistered, m.Token)
	}

	b, err := json.Marshal(m.Data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	id, err := c.Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: c.streamKey(m.Token),
		Values: map[string]interface{}{"payload": b},
	}).Result()
	if err != nil {
		return "", err
	}
	return id, nil
}

// RegisterToken adds a device token to the directory. Idempotent.
func (c *Client) RegisterToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidArgument
	}
	return c.Rdb.SAdd(ctx, c.Cfg.TokenSetKey, token).Err()
}

// SetDeviceFields merges fields into the device document. Documents live
// under a single dummy user until real authentication exists.
func (c *Client) SetDeviceFields(ctx context.Context, deviceID string, fields map[string]string) error {
	key := "users:dummy-user:devices:" + deviceID
	m := make(map[string]any, len(fields))
	for k, v := range fields {
		m[k] = v
	}
	return c.Rdb.HSet(ctx, key, m).Err()
}
