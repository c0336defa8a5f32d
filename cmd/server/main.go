// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/dalmuti/internal/broker"
	"github.com/jason-s-yu/dalmuti/internal/cache"
	"github.com/jason-s-yu/dalmuti/internal/config"
	"github.com/jason-s-yu/dalmuti/internal/coordinator"
	"github.com/jason-s-yu/dalmuti/internal/events"
	"github.com/jason-s-yu/dalmuti/internal/handlers"
	"github.com/jason-s-yu/dalmuti/internal/lobby"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func main() {
	v := config.New()
	if err := newRootCmd(v).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dalmuti",
		Short:        "Dalmuti game server",
		Long:         "Runs the authoritative Dalmuti game server: rooms, games and AI seats over websockets.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 8080, "HTTP listen port")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("redis-addr", "", "mirror events to this Redis server")
	flags.String("nats-url", "", "mirror events to this NATS server")
	flags.Int("ai-delay-ms", 1000, "pause before each AI move, in milliseconds")
	flags.Bool("debug", false, "serve the runtime dashboard at /debug/statsviz/")
	for key, name := range map[string]string{
		"port":        "port",
		"log_level":   "log-level",
		"redis_addr":  "redis-addr",
		"nats_url":    "nats-url",
		"ai_delay_ms": "ai-delay-ms",
		"debug":       "debug",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logrus.New()
	logger.SetLevel(cfg.Level())
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	hub := events.NewHub(logger)
	pubs := events.Multi{hub}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		rp := cache.NewRedisPublisher(rdb, cfg.RedisChannelPrefix, 0, logger)
		go rp.Run(ctx)
		pubs = append(pubs, rp)
		logger.Infof("mirroring events to redis at %s", cfg.RedisAddr)
	}

	if cfg.NatsURL != "" {
		nc, err := broker.Connect(cfg.NatsURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		pubs = append(pubs, broker.NewNatsPublisher(nc, cfg.NatsSubjectPrefix, logger))
		logger.Infof("mirroring events to nats at %s", cfg.NatsURL)
	}

	dir := lobby.NewDirectory(logger, rand.New(rand.NewSource(time.Now().UnixNano())))
	coord := coordinator.New(dir, pubs, cfg.Coordinator(), logger)
	defer coord.Close()

	s := &handlers.Server{
		Logger:         logger,
		Directory:      dir,
		Hub:            hub,
		Intents:        coord,
		AllowedOrigins: cfg.AllowedOrigins,
		Debug:          cfg.Debug,
	}
	h, err := s.Routes()
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: cfg.Addr(), Handler: h}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Running on %s", cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Errorf("server exited: %v", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
