package wine

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/internal/repositories/wine"
	"github.com/Ramsey-B/vine/pkg/matching"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Register registers wine routes
func Register(g *echo.Group) {
	g.GET("/search", Search)
	g.GET("/:id", Get)
}

// Get returns a single wine with its full recorded hierarchy
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "wine_handler.Get")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*wine.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	detail, err := repo.GetByID(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get wine")
	}
	if detail == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "wine not found")
	}

	return c.JSON(http.StatusOK, detail)
}

// SearchResponse is the ranked candidate list for a wine name search
type SearchResponse struct {
	Query   string              `json:"query"`
	Results []models.WineDetail `json:"results"`
}

// Search returns wines ranked by closeness to the query name
func Search(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "wine_handler.Search")
	defer span.End()

	query := c.QueryParam("query")
	if query == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 5
	}

	ctx, repo, err := ectoinject.GetContext[*wine.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	candidates, err := repo.FindClosestMatches(ctx, query, limit*4)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to search wines")
	}

	scorer := matching.NewScorer()
	ranked := matching.RankCandidates(scorer, candidates, query, func(w models.WineDetail) string { return w.Name }, limit, 1.0)

	return c.JSON(http.StatusOK, SearchResponse{Query: query, Results: ranked})
}
