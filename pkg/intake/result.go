package intake

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/vine/pkg/models"
)

// FailureKind tags the structured failure payloads returned by the intake
// flows. The kind doubles as the "type" discriminator in the serialized
// suggestions payload.
type FailureKind string

const (
	FailureMissingFields                FailureKind = "missing_fields"
	FailureInvalidColor                 FailureKind = "invalid_color"
	FailureRegionCreationMissingCountry FailureKind = "region_creation_missing_country"
	FailureWineColorMismatch            FailureKind = "wine_color_mismatch"
	FailureWineRegionMismatch           FailureKind = "wine_region_mismatch"
	FailureWineAppellationMismatch      FailureKind = "wine_appellation_mismatch"
	FailureWineSubAppellationMismatch   FailureKind = "wine_sub_appellation_mismatch"
	FailureRegionCountryMismatch        FailureKind = "region_country_mismatch"
	FailureInternal                     FailureKind = "internal_error"
)

// Failure is a typed intake failure. Each kind is its own struct so the
// serialized payload carries exactly the fields that kind needs.
type Failure interface {
	error
	Kind() FailureKind
}

// MissingFields reports required input that was not supplied.
type MissingFields struct {
	Type   FailureKind `json:"type"`
	Fields []string    `json:"fields"`
}

// NewMissingFields creates a MissingFields failure.
func NewMissingFields(fields ...string) MissingFields {
	return MissingFields{Type: FailureMissingFields, Fields: fields}
}

func (f MissingFields) Kind() FailureKind { return f.Type }
func (f MissingFields) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(f.Fields, ", "))
}

// InvalidColor reports a color value outside the canonical set.
type InvalidColor struct {
	Type      FailureKind `json:"type"`
	Requested string      `json:"requested"`
}

// NewInvalidColor creates an InvalidColor failure.
func NewInvalidColor(requested string) InvalidColor {
	return InvalidColor{Type: FailureInvalidColor, Requested: requested}
}

func (f InvalidColor) Kind() FailureKind { return f.Type }
func (f InvalidColor) Error() string {
	return fmt.Sprintf("unknown wine color %q (expected Red, White or Rose)", f.Requested)
}

// RegionCreationMissingCountry reports a region that matched nothing and
// cannot be created because no country context was supplied.
type RegionCreationMissingCountry struct {
	Type        FailureKind `json:"type"`
	Query       string      `json:"query"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// NewRegionCreationMissingCountry creates the failure with nearby-candidate
// suggestions for disambiguation.
func NewRegionCreationMissingCountry(query string, suggestions []string) RegionCreationMissingCountry {
	return RegionCreationMissingCountry{Type: FailureRegionCreationMissingCountry, Query: query, Suggestions: suggestions}
}

func (f RegionCreationMissingCountry) Kind() FailureKind { return f.Type }
func (f RegionCreationMissingCountry) Error() string {
	return fmt.Sprintf("region %q not found and cannot be created without a country", f.Query)
}

// WineColorMismatch reports input disagreeing with a wine's recorded color.
type WineColorMismatch struct {
	Type      FailureKind  `json:"type"`
	Requested models.Color `json:"requested"`
	Actual    models.Color `json:"actual"`
}

// NewWineColorMismatch creates a WineColorMismatch failure.
func NewWineColorMismatch(requested, actual models.Color) WineColorMismatch {
	return WineColorMismatch{Type: FailureWineColorMismatch, Requested: requested, Actual: actual}
}

func (f WineColorMismatch) Kind() FailureKind { return f.Type }
func (f WineColorMismatch) Error() string {
	return fmt.Sprintf("wine is recorded as %s, not %s", f.Actual, f.Requested)
}

// placeMismatch is the shared shape of the hierarchy conflict failures.
type placeMismatch struct {
	Type      FailureKind `json:"type"`
	Requested string      `json:"requested"`
	Actual    string      `json:"actual"`
}

func (f placeMismatch) Kind() FailureKind { return f.Type }
func (f placeMismatch) Error() string {
	return fmt.Sprintf("%s: requested %q but record has %q", string(f.Type), f.Requested, f.Actual)
}

// WineRegionMismatch reports input disagreeing with a wine's recorded region.
type WineRegionMismatch struct{ placeMismatch }

// NewWineRegionMismatch creates a WineRegionMismatch failure.
func NewWineRegionMismatch(requested, actual string) WineRegionMismatch {
	return WineRegionMismatch{placeMismatch{Type: FailureWineRegionMismatch, Requested: requested, Actual: actual}}
}

// WineAppellationMismatch reports input disagreeing with a wine's recorded
// appellation.
type WineAppellationMismatch struct{ placeMismatch }

// NewWineAppellationMismatch creates a WineAppellationMismatch failure.
func NewWineAppellationMismatch(requested, actual string) WineAppellationMismatch {
	return WineAppellationMismatch{placeMismatch{Type: FailureWineAppellationMismatch, Requested: requested, Actual: actual}}
}

// WineSubAppellationMismatch reports input disagreeing with a wine's
// recorded sub-appellation.
type WineSubAppellationMismatch struct{ placeMismatch }

// NewWineSubAppellationMismatch creates a WineSubAppellationMismatch failure.
func NewWineSubAppellationMismatch(requested, actual string) WineSubAppellationMismatch {
	return WineSubAppellationMismatch{placeMismatch{Type: FailureWineSubAppellationMismatch, Requested: requested, Actual: actual}}
}

// RegionCountryMismatch reports a supplied country disagreeing with the
// country recorded for the resolved region.
type RegionCountryMismatch struct{ placeMismatch }

// NewRegionCountryMismatch creates a RegionCountryMismatch failure.
func NewRegionCountryMismatch(requested, actual string) RegionCountryMismatch {
	return RegionCountryMismatch{placeMismatch{Type: FailureRegionCountryMismatch, Requested: requested, Actual: actual}}
}

// InternalError wraps an unexpected error so it is reported in the result
// instead of escaping the orchestrator.
type InternalError struct {
	Type   FailureKind `json:"type"`
	Reason string      `json:"reason"`
}

// NewInternalError creates an InternalError failure.
func NewInternalError(err error) InternalError {
	return InternalError{Type: FailureInternal, Reason: err.Error()}
}

func (f InternalError) Kind() FailureKind { return f.Type }
func (f InternalError) Error() string     { return f.Reason }

// Result is the outcome of a single-record intake.
type Result struct {
	Success     bool               `json:"success"`
	Message     string             `json:"message,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
	Suggestions Failure            `json:"suggestions,omitempty"`
	Wine        *models.WineDetail `json:"wine,omitempty"`
	Created     bool               `json:"created"`
}

func failed(f Failure) Result {
	return Result{
		Success:     false,
		Message:     f.Error(),
		Errors:      []string{f.Error()},
		Suggestions: f,
	}
}

func internalFailure(err error) Result {
	return failed(NewInternalError(err))
}

// RowError records a skipped batch row with the reasons it was skipped.
type RowError struct {
	Row    int      `json:"row"`
	Errors []string `json:"errors"`
}

// ImportReport summarizes one batch import job: what was created, what was
// updated and which rows were skipped.
type ImportReport struct {
	RowsProcessed          int        `json:"rows_processed"`
	CountriesCreated       int        `json:"countries_created"`
	RegionsCreated         int        `json:"regions_created"`
	AppellationsCreated    int        `json:"appellations_created"`
	SubAppellationsCreated int        `json:"sub_appellations_created"`
	WinesCreated           int        `json:"wines_created"`
	WinesUpdated           int        `json:"wines_updated"`
	RowErrors              []RowError `json:"row_errors,omitempty"`
}
