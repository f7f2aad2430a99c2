package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ErrMalformedMessage marks deliveries that can never be processed.
var ErrMalformedMessage = errors.New("malformed message")

// ContactSyncer pushes enriched contacts into the CRM (Directus).
type ContactSyncer interface {
	UpsertContact(ctx context.Context, event ContactEnrichedEvent) (string, error)
}

// LeadNotifier tells the sales team about a new enriched lead.
type LeadNotifier interface {
	SendNewLead(event ContactEnrichedEvent) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel     consumer
	Syncer      ContactSyncer
	Notifier    LeadNotifier
	Concurrency int
	logger      *zap.Logger
}

// NewWorker builds a consumer; notifier may be nil.
func NewWorker(ch *amqp.Channel, syncer ContactSyncer, notifier LeadNotifier, concurrency int, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Worker{
		Channel:     ch,
		Syncer:      syncer,
		Notifier:    notifier,
		Concurrency: concurrency,
		logger:      logger,
	}
}

// Start consumes queueName until ctx is cancelled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	p := pool.New().WithMaxGoroutines(w.Concurrency)
	defer p.Wait()

	w.logger.Info("Worker consuming", zap.String("queue", queueName), zap.Int("concurrency", w.Concurrency))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopping", zap.String("queue", queueName))
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			p.Go(func() {
				w.handleDelivery(ctx, d)
			})
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	if err := w.Process(ctx, d.Body); err != nil {
		w.logger.Error("Contact sync failed",
			zap.String("message_id", d.MessageId),
			zap.Error(err),
		)
		// Either way the message goes to the DLQ for inspection.
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

// Process handles a single event body.
func (w *Worker) Process(ctx context.Context, body []byte) error {
	var event ContactEnrichedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if event.Email == "" {
		return fmt.Errorf("%w: missing email", ErrMalformedMessage)
	}

	contactID, err := w.Syncer.UpsertContact(ctx, event)
	if err != nil {
		return fmt.Errorf("crm upsert: %w", err)
	}
	w.logger.Info("Contact synced to CRM",
		zap.String("event_id", event.EventID),
		zap.String("contact_id", contactID),
	)

	if w.Notifier != nil {
		if err := w.Notifier.SendNewLead(event); err != nil {
			w.logger.Warn("Lead notification failed", zap.String("event_id", event.EventID), zap.Error(err))
		}
	}
	return nil
}
