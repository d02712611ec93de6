// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/legislation-tracker/internal/clock/system"
	"github.com/JakeFAU/legislation-tracker/internal/collector"
	"github.com/JakeFAU/legislation-tracker/internal/config"
	collyfetcher "github.com/JakeFAU/legislation-tracker/internal/fetcher/colly"
	"github.com/JakeFAU/legislation-tracker/internal/hash/sha256"
	"github.com/JakeFAU/legislation-tracker/internal/id/uuid"
	"github.com/JakeFAU/legislation-tracker/internal/legiscan"
	"github.com/JakeFAU/legislation-tracker/internal/normalize"
	"github.com/JakeFAU/legislation-tracker/internal/pipeline"
	"github.com/JakeFAU/legislation-tracker/internal/policy/ratelimit"
	memorypublisher "github.com/JakeFAU/legislation-tracker/internal/publisher/memory"
	pubsubpublisher "github.com/JakeFAU/legislation-tracker/internal/publisher/pubsub"
	"github.com/JakeFAU/legislation-tracker/internal/reference"
	"github.com/JakeFAU/legislation-tracker/internal/relevance"
	"github.com/JakeFAU/legislation-tracker/internal/render"
	"github.com/JakeFAU/legislation-tracker/internal/snapshot"
	"github.com/JakeFAU/legislation-tracker/internal/storage/gcs"
	"github.com/JakeFAU/legislation-tracker/internal/storage/local"
	"github.com/JakeFAU/legislation-tracker/internal/storage/memory"
	"github.com/JakeFAU/legislation-tracker/internal/storage/postgres"
	"github.com/JakeFAU/legislation-tracker/internal/tracker"
)

// documentCacheControl keeps the hosted page fresh after each run.
const documentCacheControl = "public, max-age=300"

// App holds all the shared, long-lived services for the application: the
// reference tables, the LegiScan client, the renderer, and the output stores.
// It is initialized once at startup and closed by the CLI on exit.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	tables    *reference.Tables
	api       *legiscan.Client
	renderer  *render.Renderer
	stores    []tracker.BlobStore
	snapshots tracker.SnapshotStore
	publisher tracker.Publisher
	hasher    tracker.Hasher
	clock     tracker.Clock
	ids       tracker.IDGenerator
	pauser    tracker.Pauser
	dryRun    bool

	closers []func() error
}

// Option customizes an App at construction.
type Option func(*App)

// WithClock overrides the wall clock used for the generation timestamp.
func WithClock(c tracker.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithPauser overrides the pacing pauser.
func WithPauser(p tracker.Pauser) Option {
	return func(a *App) { a.pauser = p }
}

// WithPublisher injects the run notification publisher.
func WithPublisher(p tracker.Publisher) Option {
	return func(a *App) { a.publisher = p }
}

// WithDryRun keeps all output in memory. Configured backends are never dialed.
func WithDryRun() Option {
	return func(a *App) { a.dryRun = true }
}

// New creates and initializes an App from cfg. Optional backends (GCS,
// Postgres, Pub/Sub) are only dialed when configured. It fails fast if any
// configured backend cannot be initialized.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		hasher: sha256.New(),
		clock:  system.New(),
		ids:    uuid.New(),
		pauser: collector.TimerPauser{},
	}
	for _, opt := range opts {
		opt(a)
	}
	logger.Info("initializing application services")

	if err := a.initReference(); err != nil {
		return nil, err
	}
	a.initClient()
	if err := a.initRenderer(); err != nil {
		return nil, err
	}
	if err := a.initStores(ctx); err != nil {
		_ = a.closeAll()
		return nil, err
	}
	if err := a.initPublisher(ctx); err != nil {
		_ = a.closeAll()
		return nil, err
	}

	logger.Info("application services initialized",
		zap.Int("blob_stores", len(a.stores)),
		zap.Bool("snapshot_row", a.snapshots != nil),
		zap.Bool("notifications", a.publisher != nil),
		zap.Bool("dry_run", a.dryRun),
	)
	return a, nil
}

func (a *App) initReference() error {
	var (
		tables *reference.Tables
		err    error
	)
	if a.cfg.Reference.Path != "" {
		a.logger.Info("loading reference tables", zap.String("path", a.cfg.Reference.Path))
		tables, err = reference.Load(a.cfg.Reference.Path)
	} else {
		tables, err = reference.Default()
	}
	if err != nil {
		return fmt.Errorf("load reference tables: %w", err)
	}
	a.tables = tables
	return nil
}

func (a *App) initClient() {
	lc := a.cfg.LegiScan
	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent: lc.UserAgent,
		Timeout:   lc.Timeout,
	})
	limiter := ratelimit.New(ratelimit.Config{
		RequestsPerSecond: lc.RequestsPerSecond,
		Burst:             lc.Burst,
	})
	a.api = legiscan.New(legiscan.Config{
		BaseURL:   lc.BaseURL,
		APIKey:    lc.APIKey,
		Query:     lc.Query,
		Year:      lc.Year,
		UserAgent: lc.UserAgent,
	}, fetcher, limiter)
}

func (a *App) initRenderer() error {
	loc, err := a.cfg.Location()
	if err != nil {
		return err
	}
	site := render.DefaultSite()
	site.CanonicalURL = a.cfg.Site.CanonicalURL
	site.FederalCode = a.tables.FederalCode()
	site.Location = loc
	renderer, err := render.New(site)
	if err != nil {
		return fmt.Errorf("build renderer: %w", err)
	}
	a.renderer = renderer
	return nil
}

func (a *App) initStores(ctx context.Context) error {
	if a.dryRun {
		a.logger.Info("dry run: output kept in memory")
		a.stores = []tracker.BlobStore{memory.NewBlobStore()}
		a.snapshots = memory.NewSnapshotStore()
		return nil
	}

	localStore, err := local.New(local.Config{BaseDir: a.cfg.Output.Dir})
	if err != nil {
		return fmt.Errorf("init local output: %w", err)
	}
	a.stores = append(a.stores, localStore)

	if bucket := a.cfg.Storage.GCS.Bucket; bucket != "" {
		a.logger.Info("using GCS output", zap.String("bucket", bucket), zap.String("prefix", a.cfg.Storage.GCS.Prefix))
		client, err := storage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("create storage client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		store, err := gcs.New(client, gcs.Config{
			Bucket:       bucket,
			Prefix:       a.cfg.Storage.GCS.Prefix,
			CacheControl: documentCacheControl,
		})
		if err != nil {
			return fmt.Errorf("init gcs output: %w", err)
		}
		a.stores = append(a.stores, store)
	}

	if dsn := a.cfg.Storage.Postgres.DSN; dsn != "" {
		a.logger.Info("connecting to PostgreSQL", zap.String("table", a.cfg.Storage.Postgres.Table))
		store, err := postgres.NewSnapshotStore(ctx, postgres.Config{
			DSN:   dsn,
			Table: a.cfg.Storage.Postgres.Table,
		})
		if err != nil {
			return fmt.Errorf("init snapshot store: %w", err)
		}
		a.closers = append(a.closers, func() error { store.Close(); return nil })
		a.snapshots = store
	}
	return nil
}

func (a *App) initPublisher(ctx context.Context) error {
	if a.publisher != nil || a.cfg.PubSub.TopicID == "" {
		return nil
	}
	if a.dryRun {
		pub := memorypublisher.New()
		a.closers = append(a.closers, pub.Close)
		a.publisher = pub
		return nil
	}
	a.logger.Info("connecting to Pub/Sub", zap.String("topic", a.cfg.PubSub.TopicID))
	pub, err := pubsubpublisher.Dial(ctx, a.cfg.PubSub.ProjectID)
	if err != nil {
		return fmt.Errorf("init publisher: %w", err)
	}
	a.closers = append(a.closers, pub.Close)
	a.publisher = pub
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// DryRun reports whether output is kept in memory.
func (a *App) DryRun() bool { return a.dryRun }

// Tables returns the reference tables in use.
func (a *App) Tables() *reference.Tables { return a.tables }

// NewRunID returns a fresh run id.
func (a *App) NewRunID() (string, error) {
	id, err := a.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id, nil
}

// Jurisdictions returns the configured jurisdictions, or all of them.
func (a *App) Jurisdictions() ([]tracker.Jurisdiction, error) {
	js, err := a.tables.Select(a.cfg.Jurisdictions)
	if err != nil {
		return nil, fmt.Errorf("select jurisdictions: %w", err)
	}
	return js, nil
}

// Pipeline assembles a run pipeline whose components log through logger.
func (a *App) Pipeline(logger *zap.Logger) (*pipeline.Pipeline, error) {
	if logger == nil {
		logger = a.logger
	}
	classifier := relevance.New(a.tables.AnchorTerms(), a.tables.PolicyTerms())
	normalizer := normalize.New(a.tables.Statuses(), a.tables)
	single := collector.NewJurisdictionFetcher(a.api, classifier, normalizer, a.pauser, a.cfg.Pacing.DetailDelay, logger)
	coll := collector.New(a.api, single, a.pauser, a.cfg.Pacing.JurisdictionDelay, logger)

	writer, err := snapshot.New(snapshot.Config{
		SnapshotName: a.cfg.Output.SnapshotName,
		DocumentName: a.cfg.Output.DocumentName,
	}, a.stores, a.snapshots, a.hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("build snapshot writer: %w", err)
	}

	return pipeline.New(pipeline.Config{
		TopicID:        a.cfg.PubSub.TopicID,
		PushgatewayURL: a.cfg.Metrics.PushgatewayURL,
		MetricsJob:     a.cfg.Metrics.Job,
	}, pipeline.Dependencies{
		Collector: coll,
		Renderer:  a.renderer,
		Writer:    writer,
		Publisher: a.publisher,
		Clock:     a.clock,
	}, logger)
}

// Close shuts down every backend that was opened, in reverse order.
func (a *App) Close() error {
	a.logger.Info("shutting down application services")
	return a.closeAll()
}

func (a *App) closeAll() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
