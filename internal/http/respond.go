package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Clark-Hu/store-ratings/internal/domain"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// respondDomainError maps the domain sentinels onto statuses. Anything
// unrecognised is logged and reported as a 500 with a generic message.
func (s *Server) respondDomainError(w http.ResponseWriter, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Validation failed",
			Details: verr.Fields,
		})
	case errors.Is(err, domain.ErrUnauthorized):
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
	case errors.Is(err, domain.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "FORBIDDEN", "Not allowed")
	case errors.Is(err, domain.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, domain.ErrConflict):
		s.respondError(w, http.StatusConflict, "CONFLICT", "Resource already exists")
	default:
		s.logger.Printf("%s error: %v", op, err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+op)
	}
}
