package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abcretailers/go-order-workflow/internal/config"
	"github.com/abcretailers/go-order-workflow/internal/httpx"
	kafkax "github.com/abcretailers/go-order-workflow/internal/kafka"
	"github.com/abcretailers/go-order-workflow/internal/orders"
	"github.com/abcretailers/go-order-workflow/internal/postgres"
	"github.com/abcretailers/go-order-workflow/internal/redisx"
	"github.com/abcretailers/go-order-workflow/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB + entity table
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	table := &store.Table{DB: db}
	if err := table.Init(ctx); err != nil {
		log.Fatal("db schema", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producers, one per channel
	orderProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.ChannelOrderNotifications, 1024, log)
	orderProd.Start(ctx)
	stockProd := kafkax.NewProducer(cfg.KafkaBrokers, orders.ChannelStockUpdates, 1024, log)
	stockProd.Start(ctx)

	// Workflow engine & handler
	engine := &orders.Engine{
		Store:         table,
		OrderNotifier: orderProd,
		StockNotifier: stockProd,
		Quotes:        &redisx.QuoteCache{R: rdb},
		Log:           log.With(zap.String("service", cfg.ServiceName)),
	}
	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Engine: engine}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	orderProd.Close() // close inbox -> flush & close writer
	stockProd.Close()
	cancel() // stop producer loops
	orderProd.WaitClosed()
	stockProd.WaitClosed()
}
