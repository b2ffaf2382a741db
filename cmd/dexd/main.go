package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pekdex/dexcore/config"
	"github.com/pekdex/dexcore/pkg/dex/audit"
	"github.com/pekdex/dexcore/pkg/dex/backup"
	"github.com/pekdex/dexcore/pkg/dex/dispatch"
	"github.com/pekdex/dexcore/pkg/dex/engine"
	"github.com/pekdex/dexcore/pkg/dex/oracle"
	"github.com/pekdex/dexcore/pkg/dex/repo"
	"github.com/pekdex/dexcore/pkg/dex/scheduler"
	"github.com/pekdex/dexcore/pkg/dex/service"
	"github.com/pekdex/dexcore/pkg/infra"
	postgres_wrapper "github.com/pekdex/dexcore/pkg/infra/postgres"
	redis_wrapper "github.com/pekdex/dexcore/pkg/infra/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	logger, _ := zap.NewProduction()
	zap.ReplaceGlobals(logger)
	defer logger.Sync() // nolint

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// init db
	db := postgres_wrapper.InitPostgresWithBackoff(cfg.OrdersDB)
	infra.GetMigrateTool().Migrate("file://migrations", cfg.OrdersDB.MigrationConnURL)

	var cache *redis.Client
	if cfg.Redis != nil {
		cache, err = redis_wrapper.InitRedis(cfg.Redis)
		if err != nil {
			// price cache is optional; the oracle works without it
			zap.S().Warnf("init redis fail, continuing without price cache: %v", err)
		}
	}
	sqlRepo := repo.NewRepo(db)

	// restore any snapshot left by a previous run; duplicate ids are skipped
	bk := backup.NewBackup(sqlRepo.Order(), sqlRepo.BackupConfig(), nil)
	imported, err := bk.Restore(ctx)
	if err != nil {
		zap.S().Warnf("restore from backup fail: %v", err)
	} else if imported > 0 {
		zap.S().Infof("restored %d orders from backup", imported)
	}

	recorders := audit.Recorders{audit.NewInMemoryStore()}
	if cfg.Nats != nil {
		nc, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			zap.S().Warnf("connect nats fail, audit events stay local: %v", err)
		} else {
			js, err := nc.JetStream()
			if err != nil {
				zap.S().Warnf("jetstream fail: %v", err)
			} else {
				_, _ = js.AddStream(&nats.StreamConfig{
					Name:     cfg.Nats.Stream,
					Subjects: []string{cfg.Nats.Stream + ".*"},
				})
				recorders = append(recorders, audit.NewNatsRecorder(js, cfg.Nats.Subject))
			}
		}
	}

	dispatcher := dispatch.NewDispatcher(cfg.Settlement, recorders)
	eng := engine.NewEngine(sqlRepo.Order(), dispatcher, cfg.Settlement.Routes(), cfg.Matching)

	// the façade the API layer embeds; also used for startup diagnostics
	snapshotDelay := time.Duration(0)
	if cfg.Backup != nil {
		snapshotDelay = time.Duration(cfg.Backup.SnapshotDelaySeconds) * time.Second
	}
	svc := service.NewDex(
		sqlRepo.Order(),
		sqlRepo.BackupConfig(),
		cfg.Settlement.Routes(),
		bk,
		oracle.NewClient(cfg.Oracle, cache),
		oracle.NewAccountValidator(cfg.Oracle),
		snapshotDelay,
	)
	if pairs, err := svc.ListPendingPairs(ctx); err == nil {
		zap.S().Infof("%d pairs with pending orders", len(pairs))
	}

	interval := time.Duration(cfg.Matching.IntervalSeconds) * time.Second
	sched := scheduler.NewScheduler(eng, interval)
	sched.Start(ctx)
	fmt.Println("dexcore matcher started. Press Ctrl+C to exit.")

	<-sigs
	fmt.Println("Shutting down...")

	sched.Stop()
	cancel()

	fmt.Println("Exited cleanly.")
}
