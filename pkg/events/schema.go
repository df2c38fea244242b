package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/vine/pkg/models"
)

// EventType defines the type of event
type EventType string

const (
	// Wine events
	EventTypeWineCreated EventType = "wine.created"
	EventTypeWineUpdated EventType = "wine.updated"

	// Place events
	EventTypePlaceCreated EventType = "place.created"

	// Import events
	EventTypeImportCompleted EventType = "import.completed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// WineEvent is emitted when a wine record is created or updated. It carries
// the full recorded hierarchy so consumers do not have to resolve it.
type WineEvent struct {
	BaseEvent
	Wine models.WineDetail `json:"wine"`
}

// PlaceEvent is emitted when a taxonomy place record is created
type PlaceEvent struct {
	BaseEvent
	Level    string `json:"level"` // country, region, appellation, sub_appellation
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id,omitempty"`
}

// ImportCompletedEvent is emitted when a batch import job finishes
type ImportCompletedEvent struct {
	BaseEvent
	RowsProcessed          int `json:"rows_processed"`
	CountriesCreated       int `json:"countries_created"`
	RegionsCreated         int `json:"regions_created"`
	AppellationsCreated    int `json:"appellations_created"`
	SubAppellationsCreated int `json:"sub_appellations_created"`
	WinesCreated           int `json:"wines_created"`
	WinesUpdated           int `json:"wines_updated"`
	RowsSkipped            int `json:"rows_skipped"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
