package cms

import (
	"errors"
	"time"

	"github.com/allanasp/haspen-cms-sub001/internal/contenttree"
	"github.com/allanasp/haspen-cms-sub001/internal/locks"
	"github.com/allanasp/haspen-cms-sub001/internal/versions"
)

var (
	ErrLockTTLInvalid          = errors.New("cms: lock ttl must be positive")
	ErrRetentionHorizonInvalid = errors.New("cms: retention horizon must be positive")
	ErrKeepLatestInvalid       = errors.New("cms: keep latest must be positive")
	ErrMaxDepthInvalid         = errors.New("cms: max tree depth must be positive")
)

// LockingConfig tunes the editing lock manager.
type LockingConfig struct {
	// TTL is the lifetime granted on acquire and on refresh.
	TTL time.Duration `json:"ttl"`
}

// VersioningConfig tunes the version retention policy.
type VersioningConfig struct {
	// RetentionHorizon is the age past which versions become prunable.
	RetentionHorizon time.Duration `json:"retention_horizon"`
	// KeepLatest versions survive pruning regardless of age.
	KeepLatest int `json:"keep_latest"`
}

// ValidationConfig tunes the content tree walker.
type ValidationConfig struct {
	// MaxTreeDepth caps block nesting before validation bails out.
	MaxTreeDepth int `json:"max_tree_depth"`
}

// LoggingConfig configures the go-logger adapter when the host does not
// inject its own provider.
type LoggingConfig struct {
	Level     string `json:"level"`
	Format    string `json:"format"`
	AddSource bool   `json:"add_source"`
}

// Config is the module-level configuration. Zero values fall back to the
// documented defaults, so an empty Config is usable as-is.
type Config struct {
	// DefaultTenant scopes schema operations that do not name a tenant.
	DefaultTenant string `json:"default_tenant"`

	Locking    LockingConfig    `json:"locking"`
	Versioning VersioningConfig `json:"versioning"`
	Validation ValidationConfig `json:"validation"`
	Logging    LoggingConfig    `json:"logging"`
}

// DefaultConfig returns the configuration the module runs with out of the box.
func DefaultConfig() Config {
	return Config{
		DefaultTenant: "default",
		Locking: LockingConfig{
			TTL: locks.DefaultTTL,
		},
		Versioning: VersioningConfig{
			RetentionHorizon: versions.DefaultRetentionHorizon,
			KeepLatest:       versions.DefaultKeepLatest,
		},
		Validation: ValidationConfig{
			MaxTreeDepth: contenttree.DefaultMaxDepth,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate rejects configurations that would silently disable invariants the
// services rely on. Zero values are allowed; they mean "use the default".
func (c Config) Validate() error {
	if c.Locking.TTL < 0 {
		return ErrLockTTLInvalid
	}
	if c.Versioning.RetentionHorizon < 0 {
		return ErrRetentionHorizonInvalid
	}
	if c.Versioning.KeepLatest < 0 {
		return ErrKeepLatestInvalid
	}
	if c.Validation.MaxTreeDepth < 0 {
		return ErrMaxDepthInvalid
	}
	return nil
}

// withDefaults fills zero values with the defaults before wiring services.
func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.DefaultTenant == "" {
		c.DefaultTenant = defaults.DefaultTenant
	}
	if c.Locking.TTL == 0 {
		c.Locking.TTL = defaults.Locking.TTL
	}
	if c.Versioning.RetentionHorizon == 0 {
		c.Versioning.RetentionHorizon = defaults.Versioning.RetentionHorizon
	}
	if c.Versioning.KeepLatest == 0 {
		c.Versioning.KeepLatest = defaults.Versioning.KeepLatest
	}
	if c.Validation.MaxTreeDepth == 0 {
		c.Validation.MaxTreeDepth = defaults.Validation.MaxTreeDepth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	return c
}
