// Package httpapi exposes the turn orchestrator over HTTP. The handlers are
// a thin translation layer: request decoding, history bookkeeping and status
// mapping live here, everything else is the orchestrator's job.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/providers/history"
	"github.com/saharlajmi1/recmooc4all/providers/observability"
)

// TurnProcessor drives one conversational turn to completion.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, state turn.State) (turn.State, error)
}

// Server routes turn and history requests onto a TurnProcessor and an
// optional history store.
type Server struct {
	processor TurnProcessor
	history   history.Store
	observer  observability.Provider
}

// Option customizes a [Server].
type Option func(*Server)

// WithHistory enables query persistence and the history endpoints.
func WithHistory(store history.Store) Option {
	return func(s *Server) { s.history = store }
}

// WithObserver attaches an observability provider.
func WithObserver(observer observability.Provider) Option {
	return func(s *Server) { s.observer = observer }
}

// NewServer builds the HTTP surface around a turn processor.
func NewServer(processor TurnProcessor, opts ...Option) *Server {
	s := &Server{processor: processor}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler for the v2 API. The configured observer
// travels on the request context, so components that take their provider
// from the context pick it up.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/query", s.handleQuery)
	mux.HandleFunc("GET /api/v2/conversations/{conversationID}/queries", s.handleListQueries)
	mux.HandleFunc("DELETE /api/v2/queries/{id}", s.handleDeleteQuery)

	if s.observer == nil {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.ContextWithObserver(r.Context(), s.observer)
		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

// queryRequest is the wire shape of a turn. Exactly one of query and audio
// must be present; audio is base64 of the raw payload.
type queryRequest struct {
	UserID         string         `json:"user_id"`
	ConversationID string         `json:"conversation_id"`
	Query          string         `json:"query,omitempty"`
	Audio          string         `json:"audio,omitempty"`
	ChatHistory    []turn.Message `json:"chat_history,omitempty"`
}

type queryResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	Response       string     `json:"response"`
	Intent         string     `json:"intent"`
	Topic          string     `json:"topic,omitempty"`
	Level          string     `json:"level,omitempty"`
	RefinedQuery   string     `json:"refined_query,omitempty"`
	AudioOutput    string     `json:"audio_output,omitempty"`
	Quiz           *turn.Quiz `json:"quiz,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(r.Context(), w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	var audio []byte
	if req.Audio != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Audio)
		if err != nil {
			s.writeError(r.Context(), w, http.StatusBadRequest, "audio is not valid base64")
			return
		}
		audio = decoded
	}

	state := turn.State{
		QueryID:        history.NewID(),
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		Query:          req.Query,
		ChatHistory:    req.ChatHistory,
		AudioInput:     audio,
	}

	// The record is created before the turn runs, so a failed turn still
	// leaves a trace of what was asked.
	if s.history != nil {
		record := &history.Record{
			ID:             state.QueryID,
			UserID:         req.UserID,
			ConversationID: req.ConversationID,
			Query:          req.Query,
		}
		if err := s.history.Create(r.Context(), record); err != nil {
			s.writeError(r.Context(), w, http.StatusInternalServerError, "failed to persist query")
			return
		}
	}

	final, err := s.processor.ProcessTurn(r.Context(), state)
	if err != nil {
		var validationErr *turn.ValidationError
		if errors.As(err, &validationErr) {
			s.writeError(r.Context(), w, http.StatusBadRequest, validationErr.Error())
			return
		}
		s.writeError(r.Context(), w, http.StatusInternalServerError, "turn processing failed")
		return
	}

	resp := queryResponse{
		ID:             state.QueryID,
		ConversationID: req.ConversationID,
		Response:       final.FinalAnswer,
		Intent:         string(final.Classification),
		RefinedQuery:   final.RefinedQuery,
		AudioOutput:    final.AudioOutput,
		Quiz:           final.Quiz,
	}
	if final.Metadata != nil {
		resp.Topic = final.Metadata.Topic
		resp.Level = final.Metadata.Level
	}

	if s.history != nil {
		record := &history.Record{
			ID:             state.QueryID,
			UserID:         req.UserID,
			ConversationID: req.ConversationID,
			Query:          final.Query,
			RefinedQuery:   final.RefinedQuery,
			Response:       final.FinalAnswer,
			Intent:         string(final.Classification),
			Topic:          resp.Topic,
			Level:          resp.Level,
		}
		if final.Metadata != nil {
			record.NumCourses = final.Metadata.NumCourses
		}
		if err := s.history.Update(r.Context(), record); err != nil {
			// The answer is already computed; losing the update is loggable
			// but not a reason to fail the request.
			s.warn(r.Context(), "failed to update query record", observability.Error(err))
		}
	}

	s.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(r.Context(), w, http.StatusNotImplemented, "history is not configured")
		return
	}

	records, err := s.history.ByConversation(r.Context(), r.PathValue("conversationID"))
	if err != nil {
		s.writeError(r.Context(), w, http.StatusInternalServerError, "failed to load conversation history")
		return
	}
	s.writeJSON(r.Context(), w, http.StatusOK, records)
}

func (s *Server) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(r.Context(), w, http.StatusNotImplemented, "history is not configured")
		return
	}

	err := s.history.Delete(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, history.ErrNotFound):
		s.writeError(r.Context(), w, http.StatusNotFound, "query not found")
	case err != nil:
		s.writeError(r.Context(), w, http.StatusInternalServerError, "failed to delete query")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.warn(ctx, "failed to encode response", observability.Error(err))
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		s.warn(ctx, "request failed", observability.Int("status", status), observability.String("reason", msg))
	}
	s.writeJSON(ctx, w, status, errorResponse{Error: msg})
}

func (s *Server) warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if s.observer != nil {
		s.observer.Warn(ctx, msg, attrs...)
	}
}
