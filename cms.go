package cms

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/internal/fieldtypes"
	"github.com/allanasp/haspen-cms-sub001/internal/jobs"
	"github.com/allanasp/haspen-cms-sub001/internal/locks"
	"github.com/allanasp/haspen-cms-sub001/internal/logging"
	"github.com/allanasp/haspen-cms-sub001/internal/logging/gologger"
	"github.com/allanasp/haspen-cms-sub001/internal/schema"
	"github.com/allanasp/haspen-cms-sub001/internal/translations"
	"github.com/allanasp/haspen-cms-sub001/internal/versions"
	"github.com/allanasp/haspen-cms-sub001/pkg/interfaces"
)

// VersionService exports the version manager contract for consumers of the
// cms package.
type VersionService = versions.Service

// LockService exports the editing lock contract.
type LockService = locks.Service

// TranslationService exports the translation synchronizer contract.
type TranslationService = translations.Service

// SchemaStore exports the component schema persistence contract.
type SchemaStore = schema.Store

// ComponentSchema exports the component schema definition type.
type ComponentSchema = schema.ComponentSchema

// Tree exports the parsed content tree type.
type Tree = contenttree.Tree

// ValidationResult exports the per-block validation result map.
type ValidationResult = contenttree.Result

// ParseTree decodes a raw {body: [...]} document into a Tree.
func ParseTree(raw map[string]any) (*Tree, error) {
	return contenttree.ParseTree(raw)
}

type moduleOptions struct {
	db              *bun.DB
	provider        interfaces.LoggerProvider
	cacheService    cache.CacheService
	keySerializer   cache.KeySerializer
	clock           func() time.Time
	catalogOptions  []fieldtypes.CatalogOption
	schemaStore     schema.Store
	versionRepo     versions.Repository
	lockRepo        locks.Repository
	translationRepo translations.Repository
}

// Option customizes module construction.
type Option func(*moduleOptions)

// WithDB wires the services to bun-backed repositories. Without it the module
// runs entirely in memory.
func WithDB(db *bun.DB) Option {
	return func(o *moduleOptions) { o.db = db }
}

// WithLoggerProvider injects the host's logger provider instead of the
// go-logger adapter built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) { o.provider = provider }
}

// WithCache wraps the bun repositories with a read-through cache. Ignored
// when no DB is configured.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(o *moduleOptions) {
		o.cacheService = service
		o.keySerializer = serializer
	}
}

// WithClock overrides the time source across all services, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(o *moduleOptions) { o.clock = clock }
}

// WithCatalogOptions customizes the field type catalog, e.g. to override a
// validator or register a host-specific type.
func WithCatalogOptions(opts ...fieldtypes.CatalogOption) Option {
	return func(o *moduleOptions) { o.catalogOptions = append(o.catalogOptions, opts...) }
}

// WithSchemaStore replaces the schema persistence layer.
func WithSchemaStore(store schema.Store) Option {
	return func(o *moduleOptions) { o.schemaStore = store }
}

// WithVersionRepository replaces the version persistence layer.
func WithVersionRepository(repo versions.Repository) Option {
	return func(o *moduleOptions) { o.versionRepo = repo }
}

// WithLockRepository replaces the lock persistence layer.
func WithLockRepository(repo locks.Repository) Option {
	return func(o *moduleOptions) { o.lockRepo = repo }
}

// WithTranslationRepository replaces the translation link persistence layer.
func WithTranslationRepository(repo translations.Repository) Option {
	return func(o *moduleOptions) { o.translationRepo = repo }
}

// Module is the top level runtime facade: the field type catalog, the schema
// registry and its store, the content tree validator, and the version, lock,
// and translation services, wired against one persistence choice.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider

	catalog   *fieldtypes.Catalog
	validator *schema.Validator
	registry  *schema.Registry
	store     schema.Store
	trees     *contenttree.Validator

	versions     versions.Service
	locks        locks.Service
	translations translations.Service
	worker       *jobs.Worker
}

// New constructs a module from the configuration. Repositories default to
// the in-memory implementations; pass WithDB to persist through bun.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	options := &moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	provider := options.provider
	if provider == nil {
		built, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		provider = built
	}

	catalog := fieldtypes.New(options.catalogOptions...)
	validator := schema.NewValidator(catalog)
	registry := schema.NewRegistry(validator)
	trees := contenttree.NewValidator(validator, registry,
		contenttree.WithMaxDepth(cfg.Validation.MaxTreeDepth),
		contenttree.WithLogger(provider),
	)

	store := options.schemaStore
	versionRepo := options.versionRepo
	lockRepo := options.lockRepo
	translationRepo := options.translationRepo

	if options.db != nil {
		if store == nil {
			store = schema.NewBunStoreWithCache(options.db, options.cacheService, options.keySerializer)
		}
		if versionRepo == nil {
			versionRepo = versions.NewBunRepository(options.db)
		}
		if lockRepo == nil {
			lockRepo = locks.NewBunRepository(options.db)
		}
		if translationRepo == nil {
			translationRepo = translations.NewBunRepositoryWithCache(options.db, options.cacheService, options.keySerializer)
		}
	}
	if store == nil {
		store = schema.NewMemoryStore()
	}
	if versionRepo == nil {
		versionRepo = versions.NewMemoryRepository()
	}
	if lockRepo == nil {
		lockRepo = locks.NewMemoryRepository()
	}
	if translationRepo == nil {
		translationRepo = translations.NewMemoryRepository()
	}

	versionOpts := []versions.ServiceOption{
		versions.WithRetention(cfg.Versioning.RetentionHorizon, cfg.Versioning.KeepLatest),
		versions.WithLogger(logging.VersionsLogger(provider)),
	}
	lockOpts := []locks.ServiceOption{
		locks.WithTTL(cfg.Locking.TTL),
		locks.WithLogger(logging.LocksLogger(provider)),
	}
	translationOpts := []translations.ServiceOption{
		translations.WithLogger(logging.TranslationsLogger(provider)),
	}
	workerOpts := []jobs.Option{
		jobs.WithLogger(logging.JobsLogger(provider)),
	}
	if options.clock != nil {
		versionOpts = append(versionOpts, versions.WithClock(options.clock))
		lockOpts = append(lockOpts, locks.WithClock(options.clock))
		translationOpts = append(translationOpts, translations.WithClock(options.clock))
		workerOpts = append(workerOpts, jobs.WithClock(options.clock))
	}

	versionService, err := versions.NewService(versionRepo, versionOpts...)
	if err != nil {
		return nil, err
	}
	lockService, err := locks.NewService(lockRepo, lockOpts...)
	if err != nil {
		return nil, err
	}
	translationService, err := translations.NewService(translationRepo, translationOpts...)
	if err != nil {
		return nil, err
	}
	worker := jobs.NewWorker(lockService, versionService, workerOpts...)

	return &Module{
		cfg:          cfg,
		provider:     provider,
		catalog:      catalog,
		validator:    validator,
		registry:     registry,
		store:        store,
		trees:        trees,
		versions:     versionService,
		locks:        lockService,
		translations: translationService,
		worker:       worker,
	}, nil
}

// Catalog returns the field type catalog.
func (m *Module) Catalog() *fieldtypes.Catalog {
	return m.catalog
}

// SchemaValidator returns the component schema validator.
func (m *Module) SchemaValidator() *schema.Validator {
	return m.validator
}

// Schemas returns the in-memory schema registry.
func (m *Module) Schemas() *schema.Registry {
	return m.registry
}

// SchemaStore returns the configured schema persistence layer.
func (m *Module) SchemaStore() schema.Store {
	return m.store
}

// Trees returns the content tree validator.
func (m *Module) Trees() *contenttree.Validator {
	return m.trees
}

// Versions returns the configured version manager.
func (m *Module) Versions() VersionService {
	return m.versions
}

// Locks returns the configured lock service.
func (m *Module) Locks() LockService {
	return m.locks
}

// Translations returns the configured translation synchronizer.
func (m *Module) Translations() TranslationService {
	return m.translations
}

// Maintenance returns the background worker that sweeps expired locks and
// prunes stale versions. Hosts schedule Process on their own cadence.
func (m *Module) Maintenance() *jobs.Worker {
	return m.worker
}

// RegisterSchema validates a component schema, persists it, and makes it
// resolvable. An empty tenant uses the configured default.
func (m *Module) RegisterSchema(ctx context.Context, tenant string, definition *ComponentSchema) error {
	tenant = m.tenantOrDefault(tenant)
	if err := m.registry.Register(tenant, definition, true); err != nil {
		return err
	}
	_, err := m.store.Save(ctx, &schema.Record{
		Tenant:     tenant,
		Name:       definition.Name,
		Definition: definition,
	})
	return err
}

// LoadSchemas hydrates the registry from the store, typically at startup.
func (m *Module) LoadSchemas(ctx context.Context, tenant string) error {
	return schema.LoadRegistry(ctx, m.store, m.registry, m.tenantOrDefault(tenant))
}

// ValidateContent parses a raw content document and walks it against the
// tenant's registered schemas.
func (m *Module) ValidateContent(tenant string, raw map[string]any) (ValidationResult, error) {
	tree, err := contenttree.ParseTree(raw)
	if err != nil {
		return nil, err
	}
	return m.trees.Validate(m.tenantOrDefault(tenant), tree), nil
}

func (m *Module) tenantOrDefault(tenant string) string {
	if tenant == "" {
		return m.cfg.DefaultTenant
	}
	return tenant
}
