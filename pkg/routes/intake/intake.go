package intake

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/pkg/importer"
	"github.com/Ramsey-B/vine/pkg/intake"
	"github.com/Ramsey-B/vine/pkg/params"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Register registers intake routes
func Register(g *echo.Group) {
	g.POST("", Create)
	g.POST("/import", Import)
}

// Create reconciles a single wine record against the catalog
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "intake_handler.Create")
	defer span.End()

	var raw map[string]any
	if err := c.Bind(&raw); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req, err := params.DecodeIntake(raw)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, orchestrator, err := ectoinject.GetContext[*intake.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get orchestrator")
	}

	result := orchestrator.Intake(ctx, req)
	return c.JSON(statusFor(result), result)
}

// Import reconciles every row of an uploaded spreadsheet against the catalog
func Import(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "intake_handler.Import")
	defer span.End()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "missing upload file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "failed to open upload file")
	}
	defer file.Close()

	src, err := importer.OpenXLSX(file)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, orchestrator, err := ectoinject.GetContext[*intake.Orchestrator](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get orchestrator")
	}

	report, err := orchestrator.Import(ctx, src)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, report)
}

// statusFor maps an intake result to an HTTP status. Conflicts with an
// existing record are 409; records the catalog cannot place without more
// context are 422.
func statusFor(result intake.Result) int {
	if result.Success {
		if result.Created {
			return http.StatusCreated
		}
		return http.StatusOK
	}
	if result.Suggestions == nil {
		return http.StatusInternalServerError
	}
	switch result.Suggestions.Kind() {
	case intake.FailureMissingFields, intake.FailureInvalidColor:
		return http.StatusBadRequest
	case intake.FailureRegionCreationMissingCountry:
		return http.StatusUnprocessableEntity
	case intake.FailureInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}
