package server

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/formation-kit/internal/pipeline"
	"github.com/jonathan/formation-kit/internal/server/middleware"
	"github.com/jonathan/formation-kit/internal/types"
)

// generationInput validates a generation request body and builds the orchestrator input
func generationInput(userID uuid.UUID, req *types.GenerateRequest) (pipeline.Input, error) {
	if err := req.Validate(); err != nil {
		return pipeline.Input{}, &ErrValidation{Field: "document_type", Message: "document_type and field_values are required"}
	}
	dt, err := types.ParseDocumentType(req.DocumentType)
	if err != nil {
		return pipeline.Input{}, &ErrValidation{Field: "document_type", Message: err.Error()}
	}
	return pipeline.Input{
		UserID:       userID,
		DocumentType: dt,
		Fields:       req.FieldValues,
	}, nil
}

func toResponse(out *pipeline.Output) *types.GenerateResponse {
	return &types.GenerateResponse{ID: out.ArtifactID, Title: out.Title, Content: out.Content}
}

// handleGenerate generates one document and returns the persisted artifact
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	in, err := generationInput(userID, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out, err := s.orchestrator.Generate(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, toResponse(out))
}

// handleGenerateStream generates one document and streams progress via SSE
func (s *Server) handleGenerateStream(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.GenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	in, err := generationInput(userID, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	in.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventProgress, event); err != nil {
			s.logger.Debug("failed to write SSE event", zap.Error(err))
		}
	}

	out, err := s.orchestrator.Generate(r.Context(), in)
	if err != nil {
		sse.WriteError(HTTPStatus(err), errorBody(err))
		return
	}
	sse.WriteComplete(toResponse(out))
}

// handleGenerateBatch generates up to types.MaxBatchSize documents; each succeeds or fails on its own
func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.BatchGenerateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, &ErrValidation{Field: "documents", Message: "between 1 and 5 documents, each with document_type and field_values"})
		return
	}

	results := make([]types.BatchItemResult, len(req.Documents))
	var inputs []pipeline.Input
	var slots []int
	for i := range req.Documents {
		results[i].DocumentType = req.Documents[i].DocumentType
		in, err := generationInput(userID, &req.Documents[i])
		if err != nil {
			body := errorBody(err)
			results[i].Error, results[i].Reason = body.Error, body.Reason
			continue
		}
		inputs = append(inputs, in)
		slots = append(slots, i)
	}

	for j, res := range s.orchestrator.GenerateBatch(r.Context(), inputs) {
		i := slots[j]
		if res.Err != nil {
			body := errorBody(res.Err)
			results[i].Error, results[i].Reason = body.Error, body.Reason
			continue
		}
		results[i].Document = toResponse(res.Output)
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"results": results})
}
