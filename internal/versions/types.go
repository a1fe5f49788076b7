package versions

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/allanasp/haspen-cms-sub001/internal/util"
)

// Metadata is the descriptive slice of an entity captured alongside its
// content tree. Publish/lock-sensitive timestamps are deliberately not part
// of the snapshot, so a restore can never accidentally republish.
type Metadata struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Clone copies the metadata.
func (m Metadata) Clone() Metadata {
	return Metadata{
		Title:       m.Title,
		Description: m.Description,
		Tags:        util.CloneStrings(m.Tags),
	}
}

// Snapshot is the full state captured into a version: the raw content tree
// plus metadata.
type Snapshot struct {
	Content  map[string]any `json:"content"`
	Metadata Metadata       `json:"metadata"`
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Content:  util.CloneMap(s.Content),
		Metadata: s.Metadata.Clone(),
	}
}

// Version is an immutable, numbered snapshot of an owning entity. Records are
// created by the version service only and never mutated afterwards; pruning is
// the only sanctioned deletion path.
type Version struct {
	bun.BaseModel `bun:"table:content_versions,alias:cv"`

	ID        uuid.UUID      `bun:",pk,type:uuid"                     json:"id"`
	EntityID  uuid.UUID      `bun:"entity_id,notnull,type:uuid"       json:"entity_id"`
	Number    int            `bun:"number,notnull"                    json:"number"`
	Content   map[string]any `bun:"content,type:jsonb,notnull"        json:"content"`
	Metadata  Metadata       `bun:"metadata,type:jsonb"               json:"metadata"`
	Reason    string         `bun:"reason"                            json:"reason,omitempty"`
	CreatedBy uuid.UUID      `bun:"created_by,notnull,type:uuid"      json:"created_by"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Snapshot reassembles the version's captured state.
func (v *Version) Snapshot() Snapshot {
	return Snapshot{
		Content:  util.CloneMap(v.Content),
		Metadata: v.Metadata.Clone(),
	}
}

// Clone deep-copies the version record.
func (v *Version) Clone() *Version {
	if v == nil {
		return nil
	}
	copied := *v
	copied.Content = util.CloneMap(v.Content)
	copied.Metadata = v.Metadata.Clone()
	return &copied
}

// FieldDiff reports whether one compared field changed between two versions,
// along with both values.
type FieldDiff struct {
	Changed bool `json:"changed"`
	ValueA  any  `json:"value_a"`
	ValueB  any  `json:"value_b"`
}

// Diff is the field-by-field comparison of two versions of one entity. Keys
// are "content", "title", "description", and "tags"; content uses deep
// equality, not a structural tree diff.
type Diff struct {
	EntityID uuid.UUID            `json:"entity_id"`
	VersionA int                  `json:"version_a"`
	VersionB int                  `json:"version_b"`
	Fields   map[string]FieldDiff `json:"fields"`
}

// Changed reports whether any compared field differs.
func (d *Diff) Changed() bool {
	for _, field := range d.Fields {
		if field.Changed {
			return true
		}
	}
	return false
}
