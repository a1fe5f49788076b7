package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ComponentSchemaUUID derives the identity for a component schema record.
func ComponentSchemaUUID(tenant, name string) uuid.UUID {
	return UUID("haspen:component_schema:" + strings.ToLower(strings.TrimSpace(tenant)) + ":" + strings.ToLower(strings.TrimSpace(name)))
}

// TranslationLinkUUID derives the identity for a translation link record.
func TranslationLinkUUID(sourceID uuid.UUID, language string) uuid.UUID {
	return UUID("haspen:translation_link:" + sourceID.String() + ":" + strings.ToLower(strings.TrimSpace(language)))
}

// BlockFingerprint derives a stable structural fingerprint for a content block.
// The canonical key must already encode component type, field names, and child
// ordering so identical structures collapse to the same fingerprint.
func BlockFingerprint(canonical string) string {
	id := UUID("haspen:block_fingerprint:" + canonical)
	return id.String()
}
