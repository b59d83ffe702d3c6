package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/ParcelDesk/config"
	"github.com/BearBump/ParcelDesk/internal/api"
	brokerkafka "github.com/BearBump/ParcelDesk/internal/broker/kafka"
	"github.com/BearBump/ParcelDesk/internal/integrations/giststore"
	"github.com/BearBump/ParcelDesk/internal/services/admin"
	"github.com/BearBump/ParcelDesk/internal/services/backup"
	"github.com/BearBump/ParcelDesk/internal/services/parcels"
	"github.com/BearBump/ParcelDesk/internal/storage/redisstore"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.ParcelDesk.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	jwtSecret := cfg.ParcelDesk.JWTSecret
	if jwtSecret == "" {
		panic("parceldesk.jwt_secret is required")
	}
	pageSize := cfg.ParcelDesk.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	tokenTTL := time.Duration(cfg.ParcelDesk.TokenTTLSeconds) * time.Second
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	topic := cfg.Kafka.ParcelStatusUpdatedTopicName
	if topic == "" {
		topic = "parcel.status.updated"
	}

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	mirror := redisstore.New(redisAddr)
	defer func() { _ = mirror.Close() }()

	// Событийный продюсер опционален: без брокера работаем молча.
	var events parcels.StatusEventPublisher
	if cfg.Kafka.Host != "" {
		producer := brokerkafka.NewProducer([]string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)})
		defer func() { _ = producer.Close() }()
		events = brokerkafka.NewStatusEvents(producer, topic)
	}

	store := parcels.New(mirror, events)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mustLoadStoreWithRetry(ctx, store, 60*time.Second)

	adminSvc := admin.New(store, jwtSecret, tokenTTL)
	if err := adminSvc.EnsureDefaults(ctx); err != nil {
		panic(err)
	}

	backups := backup.New(store)
	remote := giststore.New(cfg.GistStore.BaseURL, cfg.GistStore.Token)

	h := api.NewHandlers(store, adminSvc, backups, remote, pageSize, cfg.GistStore.DocumentID)
	router := api.NewRouter(h, jwtSecret)

	if err := runParcelAPI(ctx, parcelAPIOpts{httpAddr: httpAddr}, router); err != nil && err != context.Canceled {
		panic(err)
	}
}

func mustLoadStoreWithRetry(ctx context.Context, store *parcels.Store, wait time.Duration) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		if err := store.Load(ctx); err == nil {
			return
		} else {
			lastErr = err
		}
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("redis is not ready after %s: %v", wait, lastErr))
}
