package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/wakti/wakti-nlp/internal/db"
	"github.com/wakti/wakti-nlp/internal/features"
	"github.com/wakti/wakti-nlp/internal/schemas"
	"github.com/wakti/wakti-nlp/internal/server/middleware"
	"github.com/wakti/wakti-nlp/internal/types"
)

// WizardStore persists wizard sessions. *db.DB implements it.
type WizardStore interface {
	CreateWizardSession(ctx context.Context, userID uuid.UUID, req types.AnalyzedRequest) (*db.WizardSession, error)
	GetWizardSession(ctx context.Context, id, userID uuid.UUID) (*db.WizardSession, error)
	ListWizardSessions(ctx context.Context, userID uuid.UUID) ([]db.WizardSession, error)
	SaveWizardConfig(ctx context.Context, id, userID uuid.UUID, feature types.FeatureType, config map[string]any) (*db.WizardSession, error)
	DeleteWizardSession(ctx context.Context, id, userID uuid.UUID) error
}

type wizardSessionResponse struct {
	*db.WizardSession
	NextFeature *types.DetectedFeature `json:"next_feature,omitempty"`
	Summary     string                 `json:"summary"`
}

func newWizardSessionResponse(s *db.WizardSession) wizardSessionResponse {
	resp := wizardSessionResponse{
		WizardSession: s,
		Summary:       features.Summary(s.Request),
	}
	if next, ok := s.NextFeature(); ok {
		resp.NextFeature = &next
	}
	return resp
}

type wizardPromptResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Complete  bool      `json:"complete"`
	Prompt    string    `json:"prompt"`
}

// sessionScope returns the authenticated user and the {id} path value.
func sessionScope(r *http.Request) (userID, sessionID uuid.UUID, err error) {
	userID, err = middleware.GetUserID(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return userID, sessionID, nil
}

// handleCreateWizardSession analyzes a prompt and starts a wizard over its features.
func (s *Server) handleCreateWizardSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req promptRequest
	if _, err := s.decodeRequest(w, r, schemas.PromptRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	analyzed, _ := s.analyze(r.Context(), req.Prompt)
	s.metrics.ObserveAnalysis(analyzed)

	session, err := s.store.CreateWizardSession(r.Context(), userID, analyzed)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, newWizardSessionResponse(session))
}

func (s *Server) handleListWizardSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sessions, err := s.store.ListWizardSessions(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetWizardSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, err := sessionScope(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	session, err := s.store.GetWizardSession(r.Context(), sessionID, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, newWizardSessionResponse(session))
}

// handleSaveWizardConfig records one feature's wizard answers and advances the cursor.
func (s *Server) handleSaveWizardConfig(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, err := sessionScope(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req wizardConfigRequest
	if _, err := s.decodeRequest(w, r, schemas.WizardConfigRequest, &req); err != nil {
		s.writeError(w, err)
		return
	}

	session, err := s.store.SaveWizardConfig(r.Context(), sessionID, userID, req.Feature, req.Config)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, newWizardSessionResponse(session))
}

// handleWizardPrompt builds the structured build brief from the answers so far.
func (s *Server) handleWizardPrompt(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, err := sessionScope(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	session, err := s.store.GetWizardSession(r.Context(), sessionID, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, wizardPromptResponse{
		SessionID: session.ID,
		Complete:  session.Status == db.StatusComplete,
		Prompt:    features.StructuredPrompt(session.Request, session.Configs),
	})
}

func (s *Server) handleDeleteWizardSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, err := sessionScope(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.store.DeleteWizardSession(r.Context(), sessionID, userID); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
