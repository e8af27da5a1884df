package db

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/formation-kit/internal/types"
)

// MemoryStore is an in-memory Store and EntitlementProvider used by the CLI and tests.
// Returned artifacts are copies; callers cannot mutate stored content.
type MemoryStore struct {
	mu    sync.RWMutex
	docs  map[uuid.UUID]*types.Artifact
	order []uuid.UUID
	users map[uuid.UUID]types.EntitlementContext
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[uuid.UUID]*types.Artifact),
		users: make(map[uuid.UUID]types.EntitlementContext),
		now:   time.Now,
	}
}

// PutUser registers or replaces a user's entitlement context
func (m *MemoryStore) PutUser(ec types.EntitlementContext) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[ec.UserID] = ec
}

// GetEntitlementContext returns nil, nil for an unknown user
func (m *MemoryStore) GetEntitlementContext(_ context.Context, userID uuid.UUID) (*types.EntitlementContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ec, ok := m.users[userID]
	if !ok {
		return nil, nil
	}
	return &ec, nil
}

// SaveDocument stores a copy of a new artifact
func (m *MemoryStore) SaveDocument(_ context.Context, artifact *types.Artifact) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prepareArtifact(artifact)
	if _, exists := m.docs[artifact.ID]; exists {
		return uuid.Nil, ErrDuplicateDocument
	}
	artifact.CreatedAt = m.now()

	stored := *artifact
	m.docs[stored.ID] = &stored
	m.order = append(m.order, stored.ID)
	return stored.ID, nil
}

// ListDocuments returns a user's artifacts in creation order
func (m *MemoryStore) ListDocuments(_ context.Context, userID uuid.UUID) ([]types.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Artifact
	for _, id := range m.order {
		if d := m.docs[id]; d.UserID == userID {
			out = append(out, copyArtifact(d))
		}
	}
	return out, nil
}

// GetDocument returns nil, nil when not found
func (m *MemoryStore) GetDocument(_ context.Context, id uuid.UUID) (*types.Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	a := copyArtifact(d)
	return &a, nil
}

// MarkDownloaded records the first download of a generated artifact
func (m *MemoryStore) MarkDownloaded(_ context.Context, id uuid.UUID) (*types.Artifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	if types.CanTransition(d.Status, types.StatusDownloaded) {
		now := m.now()
		d.Status = types.StatusDownloaded
		d.DownloadedAt = &now
	}
	a := copyArtifact(d)
	return &a, nil
}

// Len returns the number of stored artifacts
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func copyArtifact(d *types.Artifact) types.Artifact {
	a := *d
	if d.DownloadedAt != nil {
		t := *d.DownloadedAt
		a.DownloadedAt = &t
	}
	return a
}
