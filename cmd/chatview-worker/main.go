package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/roboricindustries/chatview/pkg/cache"
	"github.com/roboricindustries/chatview/pkg/config"
	"github.com/roboricindustries/chatview/pkg/logger"
	"github.com/roboricindustries/chatview/pkg/notify"
	"github.com/roboricindustries/chatview/pkg/pubsub"
	media "github.com/roboricindustries/chatview/pkg/schemas/media/v1"
	render "github.com/roboricindustries/chatview/pkg/schemas/render/v1"
	"github.com/roboricindustries/chatview/pkg/viewstate"
	"github.com/roboricindustries/chatview/pkg/worker"
)

func main() {
	cfgPath := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Service, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var deps viewstate.Deps
	rdb := initRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
		deps.Senders = &cache.Contacts{R: rdb, Log: log}
		deps.PaidContent = &cache.PaidTexts{R: rdb}
	}

	client, pub := initBroker(ctx, cfg, log)
	defer pub.Close()

	downloads := notify.NewDownloads(pub, cfg.Rabbit.Producer, cfg.Worker.DownloadTimeout.Duration(), log)
	deps.Downloads = downloads

	renderer := worker.New(pub, deps, worker.Options{
		Producer:        cfg.Rabbit.Producer,
		Concurrency:     cfg.Worker.Concurrency,
		JobTimeout:      cfg.Worker.JobTimeout.Duration(),
		PaidTextTimeout: cfg.Worker.PaidTextTimeout.Duration(),
		Location:        cfg.Loc(),
	}, log)

	obsSrv := &http.Server{Addr: cfg.HTTP.Addr, Handler: initObservabilityRouter(client, rdb), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("observability server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := obsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("observability server failed", zap.Error(err))
			stop()
		}
	}()

	if client != nil {
		var retry *pubsub.RetrySpec
		if rc := cfg.Rabbit.Retry; rc.Enabled {
			retry = &pubsub.RetrySpec{Enabled: true, TTL: rc.TTL.Duration(), MaxAttempts: rc.MaxAttempts}
		}
		go func() {
			err := client.RunWithConsumers(ctx, renderer.ConsumerSpec(cfg.Rabbit.RenderQueue, retry))
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("consumers stopped", zap.Error(err))
				stop()
			}
		}()
	} else {
		log.Warn("no broker configured, render consumer disabled")
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("observability server shutdown", zap.Error(err))
	}
	downloads.Wait()
}

func initRedis(ctx context.Context, rc config.RedisConfig, log *zap.Logger) *redis.Client {
	if rc.Addr == "" {
		log.Info("redis not configured, using embedded sender info")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         rc.Addr,
		Password:     rc.Password,
		DB:           rc.DB,
		DialTimeout:  rc.Timeout.Duration(),
		ReadTimeout:  rc.Timeout.Duration(),
		WriteTimeout: rc.Timeout.Duration(),
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.String("addr", rc.Addr), zap.Error(err))
	}
	return rdb
}

// initBroker returns a nil client and the log-only publisher when no URL is set.
func initBroker(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pubsub.Client, pubsub.Publisher) {
	if cfg.Rabbit.URL == "" {
		return nil, pubsub.NewFallback(log)
	}
	client, err := pubsub.NewClient(ctx, pubsub.Config{
		URL:               cfg.Rabbit.URL,
		Producer:          cfg.Rabbit.Producer,
		Exchanges:         []string{render.RequestExchange, render.RenderedExchange, media.Exchange},
		PublishPoolSize:   cfg.Rabbit.PoolSize,
		ConsumerPrefetch:  cfg.Rabbit.Prefetch,
		PublisherConfirms: cfg.Rabbit.PublisherConfirms,
		ConnTimeout:       cfg.Rabbit.ConnTimeout.Duration(),
		DialAttempts:      cfg.Rabbit.DialAttempts,
		DialDelay:         cfg.Rabbit.DialDelay.Duration(),
	}, log)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	return client, client
}

func initObservabilityRouter(client *pubsub.Client, rdb *redis.Client) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.Recoverer)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if client != nil && !client.Healthy() {
			http.Error(w, "broker disconnected", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}
