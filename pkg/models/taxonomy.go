package models

import "time"

// Country is the root of the place hierarchy.
// Names are unique case-insensitively across all countries.
type Country struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c Country) EntityID() string   { return c.ID }
func (c Country) EntityName() string { return c.Name }

// Region belongs to a Country. Names are unique case-insensitively within
// the country. The country link is immutable once set; input that disagrees
// is a conflict, not an update.
type Region struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CountryID string    `json:"country_id" db:"country_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (r Region) EntityID() string   { return r.ID }
func (r Region) EntityName() string { return r.Name }

// Appellation belongs to a Region.
type Appellation struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	RegionID  string    `json:"region_id" db:"region_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (a Appellation) EntityID() string   { return a.ID }
func (a Appellation) EntityName() string { return a.Name }

// SubAppellation belongs to an Appellation. The empty name is a reserved
// sentinel meaning "no specific sub-appellation"; at most one sentinel row
// exists per appellation.
type SubAppellation struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	AppellationID string    `json:"appellation_id" db:"appellation_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (s SubAppellation) EntityID() string   { return s.ID }
func (s SubAppellation) EntityName() string { return s.Name }

// IsSentinel reports whether this is the blank "no sub-appellation" record.
func (s SubAppellation) IsSentinel() bool { return s.Name == "" }
