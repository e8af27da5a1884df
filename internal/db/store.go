package db

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/jonathan/formation-kit/internal/types"
)

// ErrDuplicateDocument is returned when saving an artifact whose ID is already stored
var ErrDuplicateDocument = errors.New("document already exists")

// Store persists generated artifacts. Content is immutable once saved;
// only the generated -> downloaded status transition is recorded afterwards.
type Store interface {
	SaveDocument(ctx context.Context, artifact *types.Artifact) (uuid.UUID, error)
	// ListDocuments returns a user's artifacts in creation order
	ListDocuments(ctx context.Context, userID uuid.UUID) ([]types.Artifact, error)
	// GetDocument returns nil, nil when the artifact does not exist
	GetDocument(ctx context.Context, id uuid.UUID) (*types.Artifact, error)
	// MarkDownloaded records the first download; later calls leave the artifact unchanged.
	// It returns nil, nil when the artifact does not exist.
	MarkDownloaded(ctx context.Context, id uuid.UUID) (*types.Artifact, error)
}

// EntitlementProvider supplies the trusted tier context of a caller
type EntitlementProvider interface {
	// GetEntitlementContext returns nil, nil when the user does not exist
	GetEntitlementContext(ctx context.Context, userID uuid.UUID) (*types.EntitlementContext, error)
}

// ContentDigest returns the hex BLAKE2b-256 digest of artifact content
func ContentDigest(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// prepareArtifact fills the ID, status and digest of a new artifact
func prepareArtifact(a *types.Artifact) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = types.StatusGenerated
	}
	a.ContentDigest = ContentDigest(a.Content)
}
