// Package events publishes catalog lifecycle changes to Kafka. Emission is
// best effort: a failed publish is logged and never fails the intake that
// produced it.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/vine/pkg/intake"
	"github.com/Ramsey-B/vine/pkg/kafka"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/resolver"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes catalog events for Vine
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// WineCreated emits a wine.created event
func (e *Emitter) WineCreated(ctx context.Context, wine *models.WineDetail) {
	e.emitWine(ctx, EventTypeWineCreated, wine)
}

// WineUpdated emits a wine.updated event
func (e *Emitter) WineUpdated(ctx context.Context, wine *models.WineDetail) {
	e.emitWine(ctx, EventTypeWineUpdated, wine)
}

func (e *Emitter) emitWine(ctx context.Context, eventType EventType, wine *models.WineDetail) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.emitWine")
	defer span.End()

	payload, err := json.Marshal(WineEvent{
		BaseEvent: NewBaseEvent(eventType),
		Wine:      *wine,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode wine event")
		return
	}

	event := &kafka.CatalogEvent{
		EventType: string(eventType),
		EntityID:  wine.ID,
		Level:     string(resolver.LevelWine),
		ParentID:  wine.SubAppellationID,
		Data:      payload,
	}

	if err := e.producer.PublishCatalogEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"event_type": eventType,
			"wine_id":    wine.ID,
		}).Error("Failed to emit wine event")
	}
}

// PlaceCreated emits a place.created event for a new taxonomy record
func (e *Emitter) PlaceCreated(ctx context.Context, level resolver.Level, id, name string, parentID *string) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.PlaceCreated")
	defer span.End()

	parent := ""
	if parentID != nil {
		parent = *parentID
	}

	payload, err := json.Marshal(PlaceEvent{
		BaseEvent: NewBaseEvent(EventTypePlaceCreated),
		Level:     string(level),
		PlaceID:   id,
		Name:      name,
		ParentID:  parent,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode place event")
		return
	}

	event := &kafka.CatalogEvent{
		EventType: string(EventTypePlaceCreated),
		EntityID:  id,
		Level:     string(level),
		ParentID:  parent,
		Data:      payload,
	}

	if err := e.producer.PublishCatalogEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"level":    level,
			"place_id": id,
		}).Error("Failed to emit place event")
	}
}

// ImportCompleted emits an import.completed event summarizing a batch job
func (e *Emitter) ImportCompleted(ctx context.Context, report *intake.ImportReport) {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.ImportCompleted")
	defer span.End()

	payload, err := json.Marshal(ImportCompletedEvent{
		BaseEvent:              NewBaseEvent(EventTypeImportCompleted),
		RowsProcessed:          report.RowsProcessed,
		CountriesCreated:       report.CountriesCreated,
		RegionsCreated:         report.RegionsCreated,
		AppellationsCreated:    report.AppellationsCreated,
		SubAppellationsCreated: report.SubAppellationsCreated,
		WinesCreated:           report.WinesCreated,
		WinesUpdated:           report.WinesUpdated,
		RowsSkipped:            len(report.RowErrors),
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to encode import event")
		return
	}

	event := &kafka.CatalogEvent{
		EventType: string(EventTypeImportCompleted),
		Data:      payload,
	}

	if err := e.producer.PublishCatalogEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit import event")
	}
}
