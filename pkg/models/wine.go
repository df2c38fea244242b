package models

import "time"

// Wine is a canonical wine record. Resolution identity is the tuple
// (lower(name), sub_appellation_id); the recorded hierarchy and color are
// authoritative once created.
type Wine struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Color            Color     `json:"color" db:"color"`
	GrapeVariety     string    `json:"grape_variety" db:"grape_variety"`
	SubAppellationID string    `json:"sub_appellation_id" db:"sub_appellation_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

func (w Wine) EntityID() string   { return w.ID }
func (w Wine) EntityName() string { return w.Name }

// WineDetail is a wine joined to its full recorded hierarchy. The intake
// flows use it to cross-check supplied attributes against the canonical
// chain without extra round trips.
type WineDetail struct {
	Wine
	SubAppellationName string `json:"sub_appellation_name" db:"sub_appellation_name"`
	AppellationID      string `json:"appellation_id" db:"appellation_id"`
	AppellationName    string `json:"appellation_name" db:"appellation_name"`
	RegionID           string `json:"region_id" db:"region_id"`
	RegionName         string `json:"region_name" db:"region_name"`
	CountryID          string `json:"country_id" db:"country_id"`
	CountryName        string `json:"country_name" db:"country_name"`
}

// CreateWineRequest is the request for creating a wine once its
// sub-appellation has been resolved.
type CreateWineRequest struct {
	Name             string `json:"name" validate:"required"`
	Color            Color  `json:"color" validate:"required"`
	GrapeVariety     string `json:"grape_variety"`
	SubAppellationID string `json:"sub_appellation_id" validate:"required"`
}
