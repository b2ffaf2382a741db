package main

import (
	"context"
	"encoding/json"
	"flag"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/pekdex/dexcore/config"
	"github.com/pekdex/dexcore/pkg/dex/repo"
	"github.com/pekdex/dexcore/pkg/dex/worker"
	postgres_wrapper "github.com/pekdex/dexcore/pkg/infra/postgres"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	ctx := context.Background()

	// NATS
	nc, err := nats.Connect(cfg.Nats.URL)
	if err != nil {
		panic(err)
	}
	js, err := nc.JetStream()
	if err != nil {
		panic(err)
	}

	// Ensure stream
	_, _ = js.AddStream(&nats.StreamConfig{
		Name:     cfg.Nats.Stream,
		Subjects: []string{cfg.Nats.Stream + ".*"},
	})

	// init db
	db, err := postgres_wrapper.InitPostgres(cfg.OrdersDB)
	if err != nil {
		zap.S().Errorf("init db fail with err: %v", err)
		panic(err)
	}

	// init repo
	sqlRepo := repo.NewRepo(db)

	// Worker
	w := worker.NewWorker(sqlRepo)
	go w.StartConsumer(ctx, js, cfg.Nats.Subject, cfg.Nats.Durable) // nolint

	select {}
}
