package repository

import (
	"context"
	"errors"

	"FxPulse/internal/domain/models"
	"FxPulse/internal/domain/repository"
	pkgkafka "FxPulse/pkg/kafka"
)

// KafkaPublisher implements EventPublisher for Kafka. Events are keyed by pair
// so updates to one pair stay ordered.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer) repository.EventPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishSignal(ctx context.Context, ev models.SignalEvent) error {
	return p.producer.Publish(ctx, ev.Signal.Pair, ev)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// FanoutPublisher delivers every event to all targets, even when some fail.
type FanoutPublisher struct {
	targets []repository.EventPublisher
}

// NewFanoutPublisher combines publishers. Nil entries are skipped.
func NewFanoutPublisher(targets ...repository.EventPublisher) repository.EventPublisher {
	out := make([]repository.EventPublisher, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &FanoutPublisher{targets: out}
}

func (f *FanoutPublisher) PublishSignal(ctx context.Context, ev models.SignalEvent) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.PublishSignal(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutPublisher) Close() error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
