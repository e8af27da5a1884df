package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/formation-kit/internal/server/middleware"
	"github.com/jonathan/formation-kit/internal/types"
)

// DocumentSummary is a stored artifact without its content
type DocumentSummary struct {
	ID           uuid.UUID            `json:"id"`
	DocumentType types.DocumentType   `json:"document_type"`
	Title        string               `json:"title"`
	Status       types.ArtifactStatus `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
	DownloadedAt *time.Time           `json:"downloaded_at,omitempty"`
}

// ownedDocument loads a document by path id, hiding documents owned by other users
func (s *Server) ownedDocument(r *http.Request) (uuid.UUID, *types.Artifact, error) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return uuid.Nil, nil, err
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return userID, nil, &ErrValidation{Field: "id", Message: "invalid document ID format"}
	}
	doc, err := s.store.GetDocument(r.Context(), id)
	if err != nil {
		return userID, nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc == nil || doc.UserID != userID {
		return userID, nil, &ErrNotFound{Resource: "document", ID: id}
	}
	return userID, doc, nil
}

// handleListDocuments lists the caller's documents in creation order
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	docs, err := s.store.ListDocuments(r.Context(), userID)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to list documents: %w", err))
		return
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:           d.ID,
			DocumentType: d.DocumentType,
			Title:        d.Title,
			Status:       d.Status,
			CreatedAt:    d.CreatedAt,
			DownloadedAt: d.DownloadedAt,
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": summaries, "count": len(summaries)})
}

// handleGetDocument returns one of the caller's documents
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.ownedDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("ETag", etag(doc))
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleDownloadDocument records the download and returns the content.
// Plain text is returned when the client accepts text/plain.
func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	_, doc, err := s.ownedDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.store.MarkDownloaded(r.Context(), doc.ID)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to record download: %w", err))
		return
	}
	if updated == nil {
		s.writeError(w, &ErrNotFound{Resource: "document", ID: doc.ID})
		return
	}

	w.Header().Set("ETag", etag(updated))
	if strings.Contains(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename(updated)))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(updated.Content)) //nolint:errcheck
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

// etag is the quoted content digest; content never changes after save
func etag(doc *types.Artifact) string {
	return `"` + doc.ContentDigest + `"`
}

// filename derives a download name from the title
func filename(doc *types.Artifact) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '_'
		default:
			return -1
		}
	}, doc.Title)
	if name == "" {
		name = string(doc.DocumentType)
	}
	return name + ".txt"
}
