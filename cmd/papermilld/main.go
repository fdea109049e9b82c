package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"papermill/internal/config"
	"papermill/internal/daemon"
	"papermill/internal/dispatcher"
	"papermill/internal/executor"
	"papermill/internal/httpapi"
	"papermill/internal/jobs"
	"papermill/internal/logging"
	"papermill/internal/services/soffice"
	"papermill/internal/staging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open(cfg)
	if err != nil {
		log.Fatalf("open jobs store: %v", err)
	}

	area, err := staging.NewArea(cfg)
	if err != nil {
		log.Fatalf("init staging area: %v", err)
	}

	converter, err := soffice.New(cfg.Converter.Binary, cfg.Converter.TimeoutSeconds)
	if err != nil {
		log.Fatalf("init converter client: %v", err)
	}

	exec := executor.New(store, area, converter,
		time.Duration(cfg.Converter.TimeoutSeconds)*time.Second, logger)

	disp, err := dispatcher.New(store, exec, cfg.Dispatcher.Workers, cfg.Dispatcher.QueueCapacity, logger)
	if err != nil {
		log.Fatalf("init dispatcher: %v", err)
	}

	api, err := httpapi.New(cfg, store, area, disp, logger)
	if err != nil {
		log.Fatalf("init api server: %v", err)
	}

	d, err := daemon.New(cfg, store, area, disp, api, logger)
	if err != nil {
		log.Fatalf("create daemon: %v", err)
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		log.Fatalf("start daemon: %v", err)
	}

	<-ctx.Done()
	logger.Info("papermilld shutting down")
	d.Stop()
}
