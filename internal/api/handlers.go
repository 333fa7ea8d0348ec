package api

import (
	"encoding/json"
	"io"
	"net/http"

	"tango/internal/domain"
	"tango/internal/session"
	"tango/internal/tangofile"
)

// Request bodies larger than this are rejected
const maxBodySize = 1 << 20

// actionRequest is the JSON form of session.Action
type actionRequest struct {
	Kind      string               `json:"kind" validate:"required,oneof=view add_words clear_list translate save_edits start_test end_test reset_results submit_answer reveal_answer advance restart_quiz load save"`
	Text      string               `json:"text" validate:"max=1048576"`
	Rows      []domain.EditableRow `json:"rows" validate:"max=10000"`
	Direction string               `json:"direction"`
}

func (req actionRequest) action() (session.Action, error) {
	direction, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return session.Action{}, invalidInput("INVALID_DIRECTION", err.Error(), "direction")
	}
	return session.Action{
		Kind:      session.ActionKind(req.Kind),
		Text:      req.Text,
		Rows:      req.Rows,
		Direction: direction,
	}, nil
}

// handleAction runs one action posted as JSON and returns the new view
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.handleError(w, r, invalidInput("INVALID_REQUEST_BODY", "request body is not a valid action", ""))
		return
	}

	if err := validate.Struct(req); err != nil {
		s.handleError(w, r, validationError(err))
		return
	}

	action, err := req.action()
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.dispatch(w, r, action)
}

// handleView returns the current view without changing anything
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.Action{Kind: session.ActionView})
}

// handleExport returns the word list as a downloadable exchange file
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, err := s.dispatcher.Dispatch(r.Context(), session.Action{Kind: session.ActionSave})
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tangofile.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, v.Exported)
}

// handleImport loads an exchange file sent as the raw request body
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.handleError(w, r, invalidInput("INVALID_REQUEST_BODY", "request body is too large or unreadable", ""))
		return
	}

	s.dispatch(w, r, session.Action{Kind: session.ActionLoad, Text: string(body)})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			s.handleError(w, r, err)
			return
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a session.Action) {
	v, err := s.dispatcher.Dispatch(r.Context(), a)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}
