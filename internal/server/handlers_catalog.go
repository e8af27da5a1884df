package server

import (
	"net/http"

	"github.com/jonathan/formation-kit/internal/catalog"
	"github.com/jonathan/formation-kit/internal/entitlement"
	"github.com/jonathan/formation-kit/internal/server/middleware"
	"github.com/jonathan/formation-kit/internal/templates"
	"github.com/jonathan/formation-kit/internal/types"
)

// AccessResponse lists the caller's decisions for every document type and action
type AccessResponse struct {
	Tier           types.Tier             `json:"tier"`
	AccountAgeDays int                    `json:"account_age_days"`
	Decisions      []entitlement.Decision `json:"decisions"`
}

// handleCatalog returns every catalog row in declaration order
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	entries := catalog.All()
	s.jsonResponse(w, http.StatusOK, map[string]any{"documents": entries, "count": len(entries)})
}

// handleCatalogAccess resolves template and generate access for the caller
func (s *Server) handleCatalogAccess(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	requester, err := s.orchestrator.Requester(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, AccessResponse{
		Tier:           requester.Tier,
		AccountAgeDays: requester.AccountAgeDays,
		Decisions:      entitlement.ResolveAll(requester),
	})
}

// handleTemplate returns the free template for a document type. Templates are never gated.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	dt, err := types.ParseDocumentType(r.PathValue("type"))
	if err != nil {
		s.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	tmpl, err := templates.Render(dt)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(tmpl.Content)) //nolint:errcheck
		return
	}
	s.jsonResponse(w, http.StatusOK, tmpl)
}
