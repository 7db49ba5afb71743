// Package relay forwards ledger lifecycle events from the in-process bus to
// RabbitMQ for external consumers. Delivery is best effort: a broker outage
// is retried with backoff and then logged, it never reaches back into the
// ledger commit path.
package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/spf13/viper"
	"github.com/streadway/amqp"

	"github.com/shipledger/ledger/internal/dal/rabbitmq"
	"github.com/shipledger/ledger/internal/events"
)

// Worker relays bus events to a RabbitMQ queue.
type Worker struct {
	client     *rabbitmq.Client
	sub        *events.Subscription
	queue      amqp.Queue
	maxRetries int
	retryDelay time.Duration
	stopCh     chan struct{}
}

// NewWorker declares the relay queue and subscribes to every lifecycle kind.
func NewWorker(client *rabbitmq.Client, bus *events.Bus) *Worker {
	queueName := viper.GetString("rabbitmq.relay.queue")
	if queueName == "" {
		queueName = "ledger.lifecycle.events"
	}

	maxRetries := viper.GetInt("rabbitmq.relay.max_retries")
	if maxRetries == 0 {
		maxRetries = 3
	}

	retryDelaySeconds := viper.GetInt("rabbitmq.relay.retry_delay_seconds")
	if retryDelaySeconds == 0 {
		retryDelaySeconds = 1
	}

	queue, err := client.DeclareQueue(rabbitmq.DeclareQueueConfig{
		Name:       queueName,
		Durable:    true,
		Exclusive:  false,
		AutoDelete: false,
	})
	if err != nil {
		panic(err)
	}

	return &Worker{
		client:     client,
		sub:        bus.Subscribe(),
		queue:      queue,
		maxRetries: maxRetries,
		retryDelay: time.Duration(retryDelaySeconds) * time.Second,
		stopCh:     make(chan struct{}),
	}
}

// Start relays events until the context is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Event relay worker started", "queue", w.queue.Name)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Event relay worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Event relay worker stopped")

			return
		case e, ok := <-w.sub.C:
			if !ok {
				return
			}
			w.publish(e)
		}
	}
}

// Stop stops the worker and releases its bus subscription.
func (w *Worker) Stop() {
	close(w.stopCh)
	w.sub.Close()
}

func (w *Worker) publish(e events.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("Failed to encode event for relay", "kind", e.Kind, "error", err)

		return
	}

	for attempt := 0; ; attempt++ {
		err := w.client.Channel().Publish(
			"",
			w.queue.Name,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        payload,
			},
		)
		if err == nil {
			return
		}

		if attempt >= w.maxRetries {
			slog.Error("Dropping event after relay retries exhausted",
				"kind", e.Kind,
				"attempts", attempt+1,
				"error", err,
			)

			return
		}

		slog.Warn("Failed to relay event, will retry",
			"kind", e.Kind,
			"attempt", attempt+1,
			"error", err,
		)
		time.Sleep(w.retryDelay << attempt)
	}
}
