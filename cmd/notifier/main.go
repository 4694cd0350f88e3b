// notifier is a reference downstream consumer: it tails the two notification
// channels and logs every message, which doubles as an operator's view of the
// event stream.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/abcretailers/go-order-workflow/internal/config"
	kafkax "github.com/abcretailers/go-order-workflow/internal/kafka"
	"github.com/abcretailers/go-order-workflow/internal/orders"
	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"
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

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	for _, topic := range []string{orders.ChannelOrderNotifications, orders.ChannelStockUpdates} {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers, log)
		go func(topic string) {
			log.Info("notifier consumer started",
				zap.String("group", group), zap.String("topic", topic), zap.Int("workers", workers))
			if err := cons.Start(ctx, logMessage(log, topic)); err != nil {
				log.Error("consumer exit", zap.String("topic", topic), zap.Error(err))
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func logMessage(log *zap.Logger, topic string) kafkax.Handler {
	return func(ctx context.Context, m kafkago.Message) error {
		eventType := headerValue(m, "x-event-type")

		if eventType == orders.EventOrderCreated {
			if msg, err := kafkax.Decode[orders.OrderCreatedMessage](m.Value); err == nil {
				log.Info("order created",
					zap.String("order_id", msg.OrderID),
					zap.String("customer", msg.CustomerName),
					zap.String("product", msg.ProductName),
					zap.Int("quantity", msg.Quantity),
					zap.String("total_price", msg.TotalPrice.String()),
				)
				return nil
			}
		}

		log.Info("notification",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.ByteString("key", m.Key),
			zap.ByteString("payload", m.Value),
		)
		return nil
	}
}

func headerValue(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
