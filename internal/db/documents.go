package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/formation-kit/internal/types"
)

const documentColumns = `id, user_id, document_type, title, content, status, content_digest, created_at, downloaded_at`

// SaveDocument inserts a new artifact and returns its ID
func (db *DB) SaveDocument(ctx context.Context, artifact *types.Artifact) (uuid.UUID, error) {
	prepareArtifact(artifact)

	var createdAt time.Time
	err := db.pool.QueryRow(ctx,
		`INSERT INTO documents (id, user_id, document_type, title, content, status, content_digest)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		artifact.ID, artifact.UserID, string(artifact.DocumentType), artifact.Title,
		artifact.Content, string(artifact.Status), artifact.ContentDigest,
	).Scan(&createdAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrDuplicateDocument
		}
		return uuid.Nil, fmt.Errorf("failed to save document: %w", err)
	}
	artifact.CreatedAt = createdAt
	return artifact.ID, nil
}

// ListDocuments returns a user's artifacts in creation order
func (db *DB) ListDocuments(ctx context.Context, userID uuid.UUID) ([]types.Artifact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = $1 ORDER BY seq ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// GetDocument returns an artifact by ID, or nil, nil when not found
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*types.Artifact, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	a, err := scanArtifact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return a, nil
}

// MarkDownloaded records the generated -> downloaded transition once
func (db *DB) MarkDownloaded(ctx context.Context, id uuid.UUID) (*types.Artifact, error) {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET status = $1, downloaded_at = NOW()
		 WHERE id = $2 AND status = $3`,
		string(types.StatusDownloaded), id, string(types.StatusGenerated),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark document downloaded: %w", err)
	}
	return db.GetDocument(ctx, id)
}

func scanArtifact(row pgx.Row) (*types.Artifact, error) {
	var (
		a            types.Artifact
		documentType string
		status       string
	)
	if err := row.Scan(&a.ID, &a.UserID, &documentType, &a.Title, &a.Content, &status,
		&a.ContentDigest, &a.CreatedAt, &a.DownloadedAt); err != nil {
		return nil, err
	}
	a.DocumentType = types.DocumentType(documentType)
	a.Status = types.ArtifactStatus(status)
	return &a, nil
}
