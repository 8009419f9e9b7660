package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thaivoice/thaivoice-service/cache"
	"github.com/thaivoice/thaivoice-service/config"
	"github.com/thaivoice/thaivoice-service/endpoints"
	"github.com/thaivoice/thaivoice-service/llm"
	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/session"
	"github.com/thaivoice/thaivoice-service/tts"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading configuration", err)
	}

	db, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Error("connecting to redis, continuing without activity cache", err)
		db = nil
	}
	if db != nil {
		logger.Init(cache.NewLogWriter(db))
	}

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal("preparing session store", err)
	}

	llmClient := llm.NewClient(cfg.APIURL, cfg.APIKey, cfg.Model)
	ttsClient := tts.NewClient()

	endpoints.Init(cfg, store, llmClient, ttsClient, db, version)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: endpoints.WithCORS(endpoints.NewMux()),
	}

	go func() {
		logger.Printf("thaivoice %s listening on %s (model %s)", version, cfg.Addr, cfg.Model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutting down http server", err)
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("closing redis connection", err)
		}
	}
}
