package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"tango/internal/domain"
	"tango/internal/session"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrInvalidInput marks requests rejected before reaching the session
var ErrInvalidInput = errors.New("invalid input")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ErrorDetail is the body of an error response
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type errorResponse struct {
	Error ErrorDetail `json:"error"`
}

// requestError is a client error with a code and the offending field
type requestError struct {
	detail ErrorDetail
}

func (e *requestError) Error() string { return e.detail.Message }

func (e *requestError) Unwrap() error { return ErrInvalidInput }

func invalidInput(code, message, field string) error {
	return &requestError{detail: ErrorDetail{Code: code, Message: message, Field: field}}
}

// validationError turns the first validator failure into a request error
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	first := errs[0]
	return invalidInput(
		"VALIDATION_ERROR",
		"field '"+first.Field()+"' failed on the '"+first.Tag()+"' rule",
		first.Field(),
	)
}

// statusFor maps an error to the HTTP status returned to the client
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, session.ErrUnknownAction):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOutOfRange):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	var detail ErrorDetail
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		detail = reqErr.detail
	case status == http.StatusBadRequest:
		detail = ErrorDetail{Code: "BAD_REQUEST", Message: err.Error()}
	default:
		s.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		detail = ErrorDetail{Code: "INTERNAL_SERVER_ERROR", Message: "internal server error"}
	}

	s.respondJSON(w, status, errorResponse{Error: detail})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":"INTERNAL_SERVER_ERROR","message":"internal server error"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug("Failed to write response", zap.Error(err))
	}
}
