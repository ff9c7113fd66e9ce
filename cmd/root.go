// cmd/root.go
//
// Command-line entry point.
// Responsibilities:
//   - Load .env (godotenv) and the runtime configuration before any command.
//   - Configure the global zerolog logger (level + json/console output).
//   - Build the shared puzzle engine for "serve" and "play".

package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/emojiquest/assets"
	"github.com/robalobadob/emojiquest/internal/config"
	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/progress"
	"github.com/robalobadob/emojiquest/internal/puzzles"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "emojiquest",
	Short:        "Emoji guessing word game",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		setupLogging(c)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("emojiquest exited")
	}
}

func setupLogging(c *config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// puzzleFS returns PUZZLES_DIR when set, otherwise the embedded collections.
func puzzleFS(c *config.Config) fs.FS {
	if c.PuzzlesDir != "" {
		return os.DirFS(c.PuzzlesDir)
	}
	return assets.Puzzles()
}

// newTracker opens the configured progress backend. The returned func
// releases it.
func newTracker(ctx context.Context, c *config.Config) (progress.Tracker, func(), error) {
	if c.ProgressBackend != config.BackendRedis {
		return progress.NewMemoryTracker(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", c.RedisAddr, err)
	}
	log.Info().Str("addr", c.RedisAddr).Str("prefix", c.RedisPrefix).Msg("using redis progress")
	return progress.NewRedisTracker(client, c.RedisPrefix), func() { _ = client.Close() }, nil
}

// buildEngine wires puzzle store, tracker and engine together.
func buildEngine(ctx context.Context, c *config.Config, src game.Source) (*game.Engine, *puzzles.Store, func(), error) {
	store := puzzles.NewStore(puzzleFS(c))
	tracker, closeFn, err := newTracker(ctx, c)
	if err != nil {
		return nil, nil, nil, err
	}
	return game.New(store, tracker, src), store, closeFn, nil
}
