package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wakti/wakti-nlp/internal/types"
)

const sessionColumns = `id, user_id, analysis, current_feature_index, completed_features,
	configs, status, created_at, updated_at`

// CreateWizardSession persists a new session for req owned by userID.
func (db *DB) CreateWizardSession(ctx context.Context, userID uuid.UUID, req types.AnalyzedRequest) (*WizardSession, error) {
	s := NewWizardSession(userID, req)

	analysis, configs, err := encodeSession(s)
	if err != nil {
		return nil, err
	}

	err = db.pool.QueryRow(ctx,
		`INSERT INTO wizard_sessions
			(id, user_id, original_prompt, business_type, analysis,
			 current_feature_index, completed_features, configs, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at`,
		s.ID, s.UserID, req.OriginalPrompt, req.BusinessType, analysis,
		s.Request.CurrentFeatureIndex, featureStrings(s.CompletedFeatures), configs, s.Status,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create wizard session: %w", err)
	}

	return s, nil
}

// GetWizardSession loads a session owned by userID.
func (db *DB) GetWizardSession(ctx context.Context, id, userID uuid.UUID) (*WizardSession, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM wizard_sessions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get wizard session %s: %w", id, err)
	}
	return s, nil
}

// ListWizardSessions returns the user's sessions, newest first.
func (db *DB) ListWizardSessions(ctx context.Context, userID uuid.UUID) ([]WizardSession, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM wizard_sessions
		 WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wizard sessions: %w", err)
	}
	defer rows.Close()

	sessions := []WizardSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wizard session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list wizard sessions: %w", err)
	}
	return sessions, nil
}

// SaveWizardConfig records config for feature and advances the session cursor.
// The row is locked for the duration of the update.
func (db *DB) SaveWizardConfig(ctx context.Context, id, userID uuid.UUID, feature types.FeatureType, config map[string]any) (*WizardSession, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM wizard_sessions
		 WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load wizard session %s: %w", id, err)
	}

	if err := s.ApplyConfig(feature, config); err != nil {
		return nil, err
	}

	analysis, configs, err := encodeSession(s)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE wizard_sessions
		 SET analysis = $1, current_feature_index = $2, completed_features = $3,
		     configs = $4, status = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		analysis, s.Request.CurrentFeatureIndex, featureStrings(s.CompletedFeatures),
		configs, s.Status, s.ID,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save wizard config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wizard config: %w", err)
	}
	return s, nil
}

// DeleteWizardSession removes a session owned by userID.
func (db *DB) DeleteWizardSession(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM wizard_sessions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete wizard session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func scanSession(row pgx.Row) (*WizardSession, error) {
	var (
		s         WizardSession
		analysis  []byte
		configs   []byte
		completed []string
		cursor    int
	)
	if err := row.Scan(&s.ID, &s.UserID, &analysis, &cursor, &completed,
		&configs, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(analysis, &s.Request); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	if err := json.Unmarshal(configs, &s.Configs); err != nil {
		return nil, fmt.Errorf("failed to decode configs: %w", err)
	}

	s.Request.CurrentFeatureIndex = cursor
	s.CompletedFeatures = make([]types.FeatureType, len(completed))
	for i, ft := range completed {
		s.CompletedFeatures[i] = types.FeatureType(ft)
	}
	return &s, nil
}

func encodeSession(s *WizardSession) (analysis, configs []byte, err error) {
	analysis, err = json.Marshal(s.Request)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}
	configs, err = json.Marshal(s.Configs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal configs: %w", err)
	}
	return analysis, configs, nil
}

func featureStrings(fts []types.FeatureType) []string {
	out := make([]string, len(fts))
	for i, ft := range fts {
		out[i] = string(ft)
	}
	return out
}
