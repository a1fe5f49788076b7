package translations

import (
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TranslationLink relates a language variant of a content tree to its source
// entity. The fingerprints captured at the last check are the baseline for
// drift detection; many links share one source.
type TranslationLink struct {
	bun.BaseModel `bun:"table:translation_links,alias:tl"`

	ID           uuid.UUID         `bun:",pk,type:uuid"               json:"id"`
	SourceID     uuid.UUID         `bun:"source_id,notnull,type:uuid" json:"source_id"`
	Language     string            `bun:"language,notnull"            json:"language"`
	Fingerprints map[string]string `bun:"fingerprints,type:jsonb"     json:"fingerprints"`
	Completion   float64           `bun:"completion,notnull"          json:"completion"`
	NeedsSync    bool              `bun:"needs_sync,notnull"          json:"needs_sync"`
	CreatedBy    uuid.UUID         `bun:"created_by,type:uuid"        json:"created_by"`
	CreatedAt    time.Time         `bun:"created_at,nullzero"         json:"created_at"`
	UpdatedAt    time.Time         `bun:"updated_at,nullzero"         json:"updated_at"`
}

// Clone copies the link.
func (l *TranslationLink) Clone() *TranslationLink {
	if l == nil {
		return nil
	}
	clone := *l
	clone.Fingerprints = maps.Clone(l.Fingerprints)
	return &clone
}

// Status is the sync state of one language variant as reported to callers.
type Status struct {
	Language             string    `json:"language"`
	CompletionPercentage float64   `json:"completion_percentage"`
	NeedsSync            bool      `json:"needs_sync"`
	LastUpdated          time.Time `json:"last_updated"`
}

// Drift lists how a source tree moved away from the fingerprints a link
// captured at its last check.
type Drift struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// Empty reports whether no drift was detected.
func (d *Drift) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// NormalizeLanguage lowercases and trims a language code.
func NormalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
