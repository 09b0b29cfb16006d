package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/cargolink/tracking-system/internal/domain/models"
	"github.com/cargolink/tracking-system/internal/domain/types"
	wrap "github.com/cargolink/tracking-system/pkg/logger/wrapper"
	"github.com/cargolink/tracking-system/pkg/metrics"
	"github.com/cargolink/tracking-system/pkg/rabbit"
)

const (
	ExchangeLocationTopic = "location_topic"

	QueueLocationUpdates = "location_updates"

	// BindingAllVehicles matches location updates of every vehicle.
	BindingAllVehicles = "vehicle.location.*"
)

// LocationBroker moves location updates through RabbitMQ so other service
// instances and downstream consumers see the same stream the local channel
// does.
type LocationBroker struct {
	client *rabbit.RabbitMQ
}

func NewLocationBroker(client *rabbit.RabbitMQ) (*LocationBroker, error) {
	if err := client.Channel.ExchangeDeclare(
		ExchangeLocationTopic,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", ExchangeLocationTopic, err)
	}
	return &LocationBroker{client: client}, nil
}

// Publish satisfies the simulation ticker's publisher contract.
func (b *LocationBroker) Publish(ctx context.Context, update models.LocationUpdate) error {
	return b.PublishLocation(ctx, update)
}

// PublishLocation fans a location update out to the location topic.
func (b *LocationBroker) PublishLocation(ctx context.Context, update models.LocationUpdate) error {
	const op = "LocationBroker.PublishLocation"

	body, err := json.Marshal(update)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_location")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to marshal message: %w", op, err))
	}

	key := fmt.Sprintf("vehicle.location.%s", update.VehicleID)

	err = b.client.Channel.PublishWithContext(
		ctx,
		ExchangeLocationTopic,
		key,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
	metrics.RecordRabbitMQPublish("tracker", ExchangeLocationTopic, err)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionRabbitPublish)
		return wrap.Error(ctx, fmt.Errorf("%s: failed to publish with context: %w", op, err))
	}

	return nil
}

// ConsumeLocations binds a queue to the location topic and feeds every
// decoded update to handler. Undecodable messages are skipped.
func (b *LocationBroker) ConsumeLocations(ctx context.Context, queueName, bindingKey string, handler func(context.Context, models.LocationUpdate) error) error {
	const op = "LocationBroker.ConsumeLocations"

	q, err := b.client.Channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, "declare_queue")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to declare queue: %w", op, err))
	}

	if err := b.client.Channel.QueueBind(
		q.Name,
		bindingKey,
		ExchangeLocationTopic,
		false,
		nil,
	); err != nil {
		ctx = wrap.WithAction(ctx, "bind_queue")
		return wrap.Error(ctx, fmt.Errorf("%s: failed to bind queue: %w", op, err))
	}

	msgs, err := b.client.Channel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false,
		false,
		nil,
	)
	if err != nil {
		ctx = wrap.WithAction(ctx, types.ActionRabbitConsume)
		return wrap.Error(ctx, fmt.Errorf("%s: failed to register consumer: %w", op, err))
	}

	go func() {
		for d := range msgs {
			var update models.LocationUpdate
			if err := json.Unmarshal(d.Body, &update); err != nil {
				metrics.RecordRabbitMQConsume("tracker", q.Name, err)
				continue
			}

			err := handler(ctx, update)
			metrics.RecordRabbitMQConsume("tracker", q.Name, err)
		}
	}()

	return nil
}
