package taxonomy

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/internal/repositories/appellation"
	"github.com/Ramsey-B/vine/internal/repositories/country"
	"github.com/Ramsey-B/vine/internal/repositories/region"
	"github.com/Ramsey-B/vine/internal/repositories/subappellation"
	"github.com/Ramsey-B/vine/pkg/graph"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// Register registers taxonomy browsing routes
func Register(g *echo.Group) {
	g.GET("/countries", ListCountries)
	g.GET("/countries/:id/regions", ListRegions)
	g.GET("/countries/:id/wines", ListCountryWines)
	g.GET("/regions/:id/appellations", ListAppellations)
	g.GET("/appellations/:id/sub-appellations", ListSubAppellations)
}

// ListCountries returns all countries
func ListCountries(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "taxonomy_handler.ListCountries")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*country.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	countries, err := repo.List(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list countries")
	}

	return c.JSON(http.StatusOK, countries)
}

// ListRegions returns a country's regions
func ListRegions(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "taxonomy_handler.ListRegions")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*region.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	regions, err := repo.ListByCountry(ctx, c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list regions")
	}

	return c.JSON(http.StatusOK, regions)
}

// ListCountryWines returns the ids of every wine reachable from a country
// through the graph projection. Unavailable when the graph store is
// disabled.
func ListCountryWines(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "taxonomy_handler.ListCountryWines")
	defer span.End()

	ctx, client, err := ectoinject.GetContext[*graph.Client](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusServiceUnavailable, "graph catalog is not enabled")
	}

	ids, err := client.WinesBySharedHierarchy(ctx, c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list wines by country")
	}

	return c.JSON(http.StatusOK, map[string]any{"country_id": c.Param("id"), "wine_ids": ids})
}

// ListAppellations returns a region's appellations
func ListAppellations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "taxonomy_handler.ListAppellations")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*appellation.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	appellations, err := repo.ListByRegion(ctx, c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list appellations")
	}

	return c.JSON(http.StatusOK, appellations)
}

// ListSubAppellations returns an appellation's sub-appellations, including
// the blank sentinel row
func ListSubAppellations(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "taxonomy_handler.ListSubAppellations")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*subappellation.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	subAppellations, err := repo.ListByAppellation(ctx, c.Param("id"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to list sub-appellations")
	}

	return c.JSON(http.StatusOK, subAppellations)
}
