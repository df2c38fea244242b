package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/tracing"
)

// ProjectWine mirrors a wine and its full hierarchy chain into the graph.
// MERGE keeps the projection idempotent: replays and updates converge on
// the same nodes and edges.
func (c *Client) ProjectWine(ctx context.Context, wine *models.WineDetail) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ProjectWine")
	defer span.End()

	cypher := `
		MERGE (country:Country {id: $country_id})
		SET country.name = $country_name
		MERGE (region:Region {id: $region_id})
		SET region.name = $region_name
		MERGE (country)-[:HAS_REGION]->(region)
		MERGE (appellation:Appellation {id: $appellation_id})
		SET appellation.name = $appellation_name
		MERGE (region)-[:HAS_APPELLATION]->(appellation)
		MERGE (subAppellation:SubAppellation {id: $sub_appellation_id})
		SET subAppellation.name = $sub_appellation_name
		MERGE (appellation)-[:HAS_SUB_APPELLATION]->(subAppellation)
		MERGE (wine:Wine {id: $wine_id})
		SET wine.name = $wine_name,
			wine.color = $wine_color,
			wine.grape_variety = $grape_variety
		MERGE (subAppellation)-[:HAS_WINE]->(wine)
	`

	params := map[string]any{
		"country_id":           wine.CountryID,
		"country_name":         wine.CountryName,
		"region_id":            wine.RegionID,
		"region_name":          wine.RegionName,
		"appellation_id":       wine.AppellationID,
		"appellation_name":     wine.AppellationName,
		"sub_appellation_id":   wine.SubAppellationID,
		"sub_appellation_name": wine.SubAppellationName,
		"wine_id":              wine.ID,
		"wine_name":            wine.Name,
		"wine_color":           string(wine.Color),
		"grape_variety":        wine.GrapeVariety,
	}

	_, err := c.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"wine_id": wine.ID,
		}).Error("failed to project wine")
		return err
	}

	return nil
}

// WinesBySharedHierarchy returns wine ids reachable from the given country,
// for consumers exploring the catalog by provenance.
func (c *Client) WinesBySharedHierarchy(ctx context.Context, countryID string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.WinesBySharedHierarchy")
	defer span.End()

	cypher := `
		MATCH (:Country {id: $country_id})-[:HAS_REGION]->()-[:HAS_APPELLATION]->()-[:HAS_SUB_APPELLATION]->()-[:HAS_WINE]->(wine:Wine)
		RETURN wine.id AS id
		ORDER BY wine.name
	`

	result, err := c.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{"country_id": countryID})
		if err != nil {
			return nil, err
		}

		var ids []string
		for res.Next(ctx) {
			if id, ok := res.Record().Get("id"); ok {
				if s, ok := id.(string); ok {
					ids = append(ids, s)
				}
			}
		}
		return ids, res.Err()
	})
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Error("failed to query wines by hierarchy")
		return nil, err
	}

	ids, _ := result.([]string)
	return ids, nil
}
