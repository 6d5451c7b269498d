package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/0x5457/phosim/internal/models"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: models.HealthMessage})
}

func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req models.SimilarityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Sentence1 == nil {
		s.writeError(w, r, validationErrorf("sentence1: field required"))
		return
	}
	if req.Sentence2 == nil {
		s.writeError(w, r, validationErrorf("sentence2: field required"))
		return
	}

	score, err := s.scorer.Similarity(r.Context(), *req.Sentence1, *req.Sentence2)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SimilarityResponse{Similarity: score})
}

func (s *Server) handleBatchSimilarity(w http.ResponseWriter, r *http.Request) {
	var req models.BatchSimilarityRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Sentence == nil {
		s.writeError(w, r, validationErrorf("sentence: field required"))
		return
	}
	if req.Candidates == nil {
		s.writeError(w, r, validationErrorf("candidates: field required"))
		return
	}
	candidates := make([]string, len(req.Candidates))
	for i, c := range req.Candidates {
		if c == nil {
			s.writeError(w, r, validationErrorf(fmt.Sprintf("candidates[%d]: must be a string", i)))
			return
		}
		candidates[i] = *c
	}

	scores, err := s.scorer.BatchSimilarity(r.Context(), *req.Sentence, candidates)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.BatchSimilarityResponse{Similarities: scores})
}

// decodeBody reads exactly one JSON object; unknown fields are ignored.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return validationErrorf("request body is empty")
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				field = "body"
			}
			return validationErrorf(fmt.Sprintf("%s: expected %s, got %s", field, typeErr.Type, typeErr.Value))
		default:
			return validationErrorf("malformed JSON: " + err.Error())
		}
	}
	// dec.More reports false before a stray '}' or ']', so read one more token
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return validationErrorf("malformed JSON: trailing data after object")
	}
	return nil
}
