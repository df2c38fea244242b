// Package processor handles intake records arriving over Kafka. It is the
// async twin of the HTTP intake route: each message is one record, decoded
// and handed to the orchestrator.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"

	"github.com/Ramsey-B/vine/pkg/intake"
	"github.com/Ramsey-B/vine/pkg/kafka"
	"github.com/Ramsey-B/vine/pkg/params"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Processor handles intake messages from the input topic
type Processor struct {
	logger       ectologger.Logger
	orchestrator *intake.Orchestrator
}

// NewProcessor creates a new intake message processor
func NewProcessor(logger ectologger.Logger, orchestrator *intake.Orchestrator) *Processor {
	return &Processor{
		logger:       logger,
		orchestrator: orchestrator,
	}
}

// HandleMessage processes one intake record. Malformed records are dropped
// with a log line; a record the catalog rejects (conflict, missing context)
// is an outcome, not a processing failure, so the message still commits.
// Only store errors return an error, leaving the message uncommitted for
// redelivery.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.HandleMessage")
	defer span.End()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":  msg.Topic,
		"offset": msg.Offset,
	})

	record, err := msg.ParseRecord()
	if err != nil {
		log.WithError(err).Error("Dropping malformed intake record")
		return nil
	}

	req, err := params.DecodeIntake(record)
	if err != nil {
		log.WithError(err).Error("Dropping invalid intake record")
		return nil
	}

	result := p.orchestrator.Intake(ctx, req)
	if result.Success {
		log.WithFields(map[string]any{
			"wine":    req.Name,
			"created": result.Created,
		}).Info("Processed intake record")
		return nil
	}

	if result.Suggestions != nil && result.Suggestions.Kind() == intake.FailureInternal {
		return errors.Errorf("intake failed: %s", result.Message)
	}

	log.WithFields(map[string]any{
		"wine":   req.Name,
		"reason": result.Message,
	}).Warn("Intake record rejected")
	return nil
}
