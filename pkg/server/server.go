// Package server assembles the catalog service: database, migrations, graph
// client, Kafka consumer and the HTTP API, started in dependency order.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/vine/config"
	appellationrepo "github.com/Ramsey-B/vine/internal/repositories/appellation"
	countryrepo "github.com/Ramsey-B/vine/internal/repositories/country"
	regionrepo "github.com/Ramsey-B/vine/internal/repositories/region"
	subappellationrepo "github.com/Ramsey-B/vine/internal/repositories/subappellation"
	winerepo "github.com/Ramsey-B/vine/internal/repositories/wine"
	"github.com/Ramsey-B/vine/pkg/database"
	"github.com/Ramsey-B/vine/pkg/events"
	"github.com/Ramsey-B/vine/pkg/graph"
	"github.com/Ramsey-B/vine/pkg/intake"
	"github.com/Ramsey-B/vine/pkg/kafka"
	"github.com/Ramsey-B/vine/pkg/models"
	"github.com/Ramsey-B/vine/pkg/processor"
	"github.com/Ramsey-B/vine/pkg/resolver"
	"github.com/Ramsey-B/vine/pkg/routes"
	"github.com/Ramsey-B/vine/pkg/routes/health"
	"github.com/Ramsey-B/vine/pkg/startup"
)

// Server owns the long-lived pieces of the catalog service.
type Server struct {
	cfg    *config.Config
	logger ectologger.Logger

	db           database.DB
	graph        *graph.Client
	producer     *kafka.Producer
	consumer     *kafka.Consumer
	orchestrator *intake.Orchestrator
	echo         *echo.Echo
	health       *health.Checker
	startup      *startup.Startup
}

// New creates a server from configuration.
func New(cfg *config.Config, logger ectologger.Logger) *Server {
	return &Server{cfg: cfg, logger: logger}
}

// Run starts every dependency in order and blocks until the context is
// cancelled, then stops them in reverse.
func (s *Server) Run(ctx context.Context) error {
	s.startup = startup.NewStartup[any](s.logger, s.cfg.StartupMaxAttempts)
	s.startup.AddDependency(&databaseDependency{s})
	s.startup.AddDependency(&migrationDependency{s})
	if s.cfg.GraphDBEnabled {
		s.startup.AddDependency(&graphDependency{s})
	}
	s.startup.AddDependency(&catalogDependency{s})
	if s.cfg.KafkaConsumerEnabled {
		s.startup.AddDependency(&consumerDependency{s})
	}
	s.startup.AddDependency(&httpDependency{s})

	if err := s.startup.Start(ctx); err != nil {
		return err
	}
	if s.health != nil {
		s.health.SetReady(true)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.startup.Stop(stopCtx)
}

// buildOrchestrator wires the per-level resolvers over the repositories and
// registers the handler-facing pieces in the DI container.
func (s *Server) buildOrchestrator() error {
	placeCfg := resolver.Config{
		Threshold:   s.cfg.PlaceMatchThreshold,
		SearchLimit: s.cfg.SearchCandidateLimit,
	}

	countryRepo := countryrepo.NewRepository(s.db, s.logger)
	regionRepo := regionrepo.NewRepository(s.db, s.logger)
	appellationRepo := appellationrepo.NewRepository(s.db, s.logger)
	subAppellationRepo := subappellationrepo.NewRepository(s.db, s.logger)
	wineRepo := winerepo.NewRepository(s.db, s.logger)

	countries := resolver.New[models.Country](s.logger, countryRepo, resolver.LevelCountry, placeCfg)
	regions := resolver.New[models.Region](s.logger, regionRepo, resolver.LevelRegion, placeCfg)
	appellations := resolver.New[models.Appellation](s.logger, appellationRepo, resolver.LevelAppellation, placeCfg)
	subAppellations := resolver.New[models.SubAppellation](s.logger, subAppellationRepo, resolver.LevelSubAppellation, placeCfg)
	wines := resolver.NewWineResolver(s.logger, wineRepo, resolver.WineConfig{
		Threshold:      s.cfg.WineMatchThreshold,
		PlaceThreshold: s.cfg.PlaceMatchThreshold,
		SearchLimit:    s.cfg.SearchCandidateLimit,
	})

	var sink intake.EventSink
	if s.producer != nil {
		sink = events.NewEmitter(s.producer, s.logger)
	}
	var projector intake.GraphProjector
	if s.graph != nil {
		projector = s.graph
	}

	s.orchestrator = intake.NewOrchestrator(
		s.logger,
		intake.Config{PlaceThreshold: s.cfg.PlaceMatchThreshold},
		countries, regions, appellations, subAppellations, wines,
		sink, projector,
	)

	container := ectoinject.GetDefaultContainer()
	if container == nil {
		var err error
		container, err = ectoinject.NewDIDefaultContainer()
		if err != nil {
			return fmt.Errorf("failed to create DI container: %w", err)
		}
	}

	registrations := []func() error{
		func() error { return ectoinject.RegisterInstance[*intake.Orchestrator](container, s.orchestrator) },
		func() error { return ectoinject.RegisterInstance[*countryrepo.Repository](container, countryRepo) },
		func() error { return ectoinject.RegisterInstance[*regionrepo.Repository](container, regionRepo) },
		func() error {
			return ectoinject.RegisterInstance[*appellationrepo.Repository](container, appellationRepo)
		},
		func() error {
			return ectoinject.RegisterInstance[*subappellationrepo.Repository](container, subAppellationRepo)
		},
		func() error { return ectoinject.RegisterInstance[*winerepo.Repository](container, wineRepo) },
	}
	if s.graph != nil {
		registrations = append(registrations, func() error {
			return ectoinject.RegisterInstance[*graph.Client](container, s.graph)
		})
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register dependency: %w", err)
		}
	}
	return nil
}

type databaseDependency struct{ s *Server }

func (d *databaseDependency) GetName() string     { return "database" }
func (d *databaseDependency) DependsOn() []string { return nil }

func (d *databaseDependency) Start(ctx context.Context) error {
	db, err := database.NewPostgresDB(database.PostgresConfig{
		Host:            d.s.cfg.DatabaseHost,
		Port:            d.s.cfg.DatabasePort,
		User:            d.s.cfg.DatabaseUserName,
		Password:        d.s.cfg.DatabasePassword,
		Name:            d.s.cfg.DatabaseName,
		SSLMode:         d.s.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.s.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.s.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.s.cfg.DatabaseConnMaxLifetime,
	}, d.s.logger)
	if err != nil {
		return err
	}
	d.s.db = db
	return nil
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.s.db == nil {
		return nil
	}
	return d.s.db.Close()
}

type migrationDependency struct{ s *Server }

func (d *migrationDependency) GetName() string     { return "migrations" }
func (d *migrationDependency) DependsOn() []string { return []string{"database"} }

func (d *migrationDependency) Start(ctx context.Context) error {
	driver, err := migratepg.WithInstance(d.s.db.Unsafe().DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	service := database.NewMigrationService(d.s.logger, &database.MigrationConfig{
		MigrationFolderPath: d.s.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.s.cfg.DatabaseMigrationVersion),
		Force:               d.s.cfg.DatabaseMigrationForce,
		AutoRollback:        d.s.cfg.DatabaseMigrationAutoRollback,
	})
	return service.Migrate(d.s.cfg.DatabaseName, driver)
}

func (d *migrationDependency) Stop(ctx context.Context) error { return nil }

type graphDependency struct{ s *Server }

func (d *graphDependency) GetName() string     { return "graph" }
func (d *graphDependency) DependsOn() []string { return nil }

func (d *graphDependency) Start(ctx context.Context) error {
	client, err := graph.NewClient(graph.Config{
		Host:     d.s.cfg.GraphDBHost,
		Port:     d.s.cfg.GraphDBPort,
		Username: d.s.cfg.GraphDBUser,
		Password: d.s.cfg.GraphDBPassword,
	}, d.s.logger)
	if err != nil {
		return err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		return err
	}
	d.s.graph = client
	return nil
}

func (d *graphDependency) Stop(ctx context.Context) error {
	if d.s.graph == nil {
		return nil
	}
	return d.s.graph.Close(ctx)
}

// catalogDependency builds the resolver stack and event producer once the
// stores are up.
type catalogDependency struct{ s *Server }

func (d *catalogDependency) GetName() string { return "catalog" }

func (d *catalogDependency) DependsOn() []string {
	deps := []string{"migrations"}
	if d.s.cfg.GraphDBEnabled {
		deps = append(deps, "graph")
	}
	return deps
}

func (d *catalogDependency) Start(ctx context.Context) error {
	d.s.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      d.s.cfg.KafkaBrokers,
		Topic:        d.s.cfg.KafkaOutputTopic,
		BatchSize:    d.s.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(d.s.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: d.s.cfg.KafkaRequiredAcks,
		Compression:  d.s.cfg.KafkaCompression,
	}, d.s.logger)

	return d.s.buildOrchestrator()
}

func (d *catalogDependency) Stop(ctx context.Context) error {
	if d.s.producer == nil {
		return nil
	}
	return d.s.producer.Close()
}

type consumerDependency struct{ s *Server }

func (d *consumerDependency) GetName() string     { return "consumer" }
func (d *consumerDependency) DependsOn() []string { return []string{"catalog"} }

func (d *consumerDependency) Start(ctx context.Context) error {
	proc := processor.NewProcessor(d.s.logger, d.s.orchestrator)
	d.s.consumer = kafka.NewConsumer(*d.s.cfg, d.s.logger, proc.HandleMessage)
	return d.s.consumer.Start(ctx)
}

func (d *consumerDependency) Stop(ctx context.Context) error {
	if d.s.consumer == nil {
		return nil
	}
	return d.s.consumer.Stop()
}

type httpDependency struct{ s *Server }

func (d *httpDependency) GetName() string     { return "http" }
func (d *httpDependency) DependsOn() []string { return []string{"catalog"} }

func (d *httpDependency) Start(ctx context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(d.s.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(d.s.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(d.s.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = d.s.cfg.MaxHeaderBytes

	routes.Register(e, d.s.cfg.AppName, d.s.logger)

	var graphCheck interface{ Ping(ctx context.Context) error }
	if d.s.graph != nil {
		graphCheck = d.s.graph
	}
	d.s.health = health.NewChecker(d.s.db, graphCheck, d.s.cfg.AppName)
	d.s.health.RegisterRoutes(e)

	d.s.echo = e

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", d.s.cfg.Port)); err != nil {
			d.s.logger.WithError(err).Info("http server stopped")
		}
	}()
	return nil
}

func (d *httpDependency) Stop(ctx context.Context) error {
	if d.s.echo == nil {
		return nil
	}
	return d.s.echo.Shutdown(ctx)
}
