package server

import (
	"net/http"

	"github.com/jonathan/formation-kit/internal/equity"
	"github.com/jonathan/formation-kit/internal/types"
)

// handleEquitySplit computes a founder equity split. It needs no account.
func (s *Server) handleEquitySplit(w http.ResponseWriter, r *http.Request) {
	var req types.EquityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Field: "founders", Message: "at least one founder is required"})
		return
	}

	allocations, err := equity.Compute(req.Founders)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.EquityResponse{
		Allocations: allocations,
		Total:       equity.Total(allocations),
	})
}
