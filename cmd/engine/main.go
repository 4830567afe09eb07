package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"freya/config"
	"freya/domain/book"
	"freya/export"
	"freya/feed"
	"freya/infra/archive"
	"freya/infra/memory"
	"freya/infra/sequence"
	"freya/jobs/publisher"
	"freya/logging"
	"freya/metrics"
	"freya/service"
)

func main() {
	cfg := config.LoadFromEnv("")

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	// ---------------- Archive ----------------

	var arc *archive.TradeArchive
	if cfg.FeedMode == config.FeedOutbox {
		arc, err = archive.Open(cfg.ArchiveDir)
		if err != nil {
			log.Fatal("trade archive init failed", zap.Error(err))
		}
		defer arc.Close()
	}

	// ---------------- Feed sink ----------------

	var sink service.TradeSink
	if cfg.FeedMode == config.FeedDirect {
		direct := publisher.NewDirect(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer direct.Close()
		sink = direct
	}

	// ---------------- Core ----------------

	pool := memory.NewPool(func() *book.Order {
		return &book.Order{}
	})
	ids := sequence.New(0)
	clock := sequence.New(0)
	met := metrics.New("freya")
	exporter := export.New(cfg.ExportDir, cfg.TickScale, log)

	svc := service.New(pool, ids, clock, exporter, arc, sink, met, log)
	svc.SetAutoExport(cfg.AutoExport)

	// ---------------- Background jobs ----------------

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.FeedMode == config.FeedOutbox {
		outbox, err := publisher.NewOutbox(arc, cfg.KafkaBrokers, cfg.KafkaTopic, 250*time.Millisecond, log)
		if err != nil {
			log.Fatal("outbox publisher init failed", zap.Error(err))
		}
		defer outbox.Close()
		go outbox.Run(ctx)
	}

	go func() {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: met.Handler()}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics server exited", zap.Error(err))
		}
	}()

	// ---------------- Command feed ----------------

	log.Info("engine ready",
		zap.String("feed_mode", cfg.FeedMode),
		zap.Int32("tick_scale", cfg.TickScale),
		zap.Bool("auto_export", cfg.AutoExport),
	)

	driver := feed.New(svc, cfg.TickScale, log)
	if err := driver.Run(os.Stdin, os.Stdout); err != nil {
		log.Error("feed terminated", zap.Error(err))
	}
}
