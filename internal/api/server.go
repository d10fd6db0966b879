package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mlnotify/internal/config"
	"mlnotify/internal/push"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NewServer wires the dispatch endpoint onto a chi router. The endpoint
// handles its own method dispatch (OPTIONS preflight, POST, everything else
// rejected), matching the single-function shape of the hosted original.
func NewServer(cfg *config.Config) *Server {
	ctx := context.Background()

	cli := push.New(cfg.Redis, cfg.Push)
	if err := cli.Connect(ctx); err != nil {
		log.Ctx(ctx).Fatal().Msgf("something went wrong: %s", err)
	}

	d := &dispatcher{
		apiKey: cfg.API.Key,
		pusher: cli,
		now:    time.Now,
	}

	r := chi.NewRouter()
	r.HandleFunc("/sendNotification", d.ServeHTTP)

	return &Server{router: r}
}

type Server struct {
	router *chi.Mux
}

// Run starts the HTTP server on the given port and blocks until SIGINT or
// SIGTERM, then shuts down gracefully.
func (s *Server) Run(port int) {
	addr := fmt.Sprintf(":%d", port)

	h := chainMiddleware(
		s.router,
		recoverHandler,
		loggerHandler(func(w http.ResponseWriter, r *http.Request) bool { return r.URL.Path == "/" }),
		realIPHandler,
		requestIDHandler,
	)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	<-done
	log.Info().Msg("Server stopped")
}
