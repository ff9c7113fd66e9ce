package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/httpserver"
	"github.com/robalobadob/emojiquest/internal/puzzles"
	"github.com/robalobadob/emojiquest/internal/session"
	"github.com/robalobadob/emojiquest/internal/store"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		if port == "" {
			port = cfg.Port
		}

		engine, loader, closeFn, err := buildEngine(cmd.Context(), cfg, nil)
		if err != nil {
			return err
		}
		defer closeFn()

		for lang, n := range loader.Stats() {
			if n < 0 {
				log.Warn().Str("lang", string(lang)).Msg("puzzle collection unavailable")
				continue
			}
			log.Info().Str("lang", string(lang)).Int("puzzles", n).Msg("loaded puzzles")
		}

		rules := cfg.Rules()
		sessions := store.NewMemoryStore(func(id string) *session.Session {
			return session.New(id, puzzles.DefaultLang, rules, game.CryptoSource())
		})
		srv := httpserver.New(engine, loader, sessions, httpserver.Options{
			ClientOrigin: cfg.ClientOrigin,
			PublicDir:    cfg.PublicDir,
			DailySalt:    cfg.DailySalt,
		})

		if cfg.SessionTTL > 0 {
			go sweepSessions(cmd.Context(), sessions, cfg.SessionTTL)
		}

		hs := &http.Server{
			Addr:              ":" + port,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("port", port).Msg("starting emojiquest server")
			errCh <- hs.ListenAndServe()
		}()

		// Graceful shutdown
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(ctx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

// sweepSessions drops idle sessions until ctx ends.
func sweepSessions(ctx context.Context, sessions store.Store, ttl time.Duration) {
	every := min(ttl/4, 10*time.Minute)
	t := time.NewTicker(max(every, time.Second))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Sweep(ttl); n > 0 {
				log.Debug().Int("dropped", n).Int("active", sessions.Len()).Msg("swept idle sessions")
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("port", "", "listen port (overrides PORT)")
}
