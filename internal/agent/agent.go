// Package agent runs the device-side daemon: it registers the device in the
// directory, then consumes the device's push stream and reconciles task state.
package agent

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlnotify/internal/config"
	"mlnotify/internal/device"
	"mlnotify/internal/ingest"
	"mlnotify/internal/lock"
	"mlnotify/internal/notify"
	"mlnotify/internal/push"
	"mlnotify/internal/store"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	ConsumerName string
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
}

func Run(cfg *config.Config, opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := push.New(cfg.Redis, cfg.Push)
	if err := cli.Connect(ctx); err != nil {
		return err
	}

	st, err := store.New(cfg.Agent.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	reg := &device.Registrar{Prefs: st, Dir: cli}

	token, err := reg.EnsureToken(ctx)
	if err != nil {
		return err
	}

	if cfg.Agent.DeviceName != "" {
		// Name publication is best effort; the push pipeline works without it.
		if err := reg.SetName(ctx, cfg.Agent.DeviceName); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to publish device name")
		}
	}

	consumer := &push.Consumer{
		C:            cli,
		Token:        token,
		ConsumerName: opts.ConsumerName,
		BaseBackoff:  opts.BaseBackoff,
		MaxBackoff:   opts.MaxBackoff,
	}
	if err := consumer.Init(ctx); err != nil {
		return err
	}

	handler := &ingest.Handler{
		Store:   st,
		Locks:   lock.NewKeyed(),
		Emitter: notify.NewCenter(),
	}

	log.Ctx(ctx).Info().Msgf("device agent consuming as %s (token %s)", opts.ConsumerName, token)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.Run(ctx, handler.Handle)
	})
	return g.Wait()
}
