package server

import (
	"context"
	"testing"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/vine/config"
	countryrepo "github.com/Ramsey-B/vine/internal/repositories/country"
	winerepo "github.com/Ramsey-B/vine/internal/repositories/wine"
	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/intake"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// stubDB satisfies database.DB without a live connection; the wiring under
// test never issues a query.
type stubDB struct{ database.DB }

func TestBuildOrchestratorRegistersHandlerDependencies(t *testing.T) {
	s := New(&config.Config{
		PlaceMatchThreshold:  0.3,
		WineMatchThreshold:   0.2,
		SearchCandidateLimit: 5,
	}, testLogger())
	s.db = stubDB{}

	require.NoError(t, s.buildOrchestrator())
	require.NotNil(t, s.orchestrator)

	// The HTTP handlers pull their collaborators from the container; every
	// registered piece must resolve from a bare request context.
	_, orchestrator, err := ectoinject.GetContext[*intake.Orchestrator](context.Background())
	require.NoError(t, err)
	assert.Same(t, s.orchestrator, orchestrator)

	_, wineRepo, err := ectoinject.GetContext[*winerepo.Repository](context.Background())
	require.NoError(t, err)
	assert.NotNil(t, wineRepo)

	_, countryRepo, err := ectoinject.GetContext[*countryrepo.Repository](context.Background())
	require.NoError(t, err)
	assert.NotNil(t, countryRepo)
}
