package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/aetherbuildapp/aetherbuild/internal/db"
	"github.com/aetherbuildapp/aetherbuild/internal/models"
)

// ProjectService persists site documents and token balances in PostgreSQL.
// Documents are stored as one JSONB blob per project; the engines own all
// document semantics, so the database never needs to understand sections.
type ProjectService struct {
	DB *db.PostgresClient
}

func NewProjectService(dbClient *db.PostgresClient) *ProjectService {
	return &ProjectService{DB: dbClient}
}

// Save upserts the document. Called by the builder's debounced auto-save and
// by the generation worker after the initial document is assembled.
func (s *ProjectService) Save(ctx context.Context, userID string, project models.Project) error {
	doc, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	query := `
		INSERT INTO projects (id, user_id, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET document = $3, updated_at = now()
	`
	if _, err := s.DB.Exec(ctx, query, project.ID, userID, doc); err != nil {
		return fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return nil
}

// LoadCurrent returns the user's most recently updated project, or nil when
// the user has none yet (the caller seeds the demo document in that case).
func (s *ProjectService) LoadCurrent(ctx context.Context, userID string) (*models.Project, error) {
	query := `
		SELECT document FROM projects
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`
	var doc []byte
	err := s.DB.QueryRow(ctx, query, userID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project for user %s: %w", userID, err)
	}

	var project models.Project
	if err := json.Unmarshal(doc, &project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}
	return &project, nil
}

func (s *ProjectService) Delete(ctx context.Context, userID, projectID string) error {
	query := `DELETE FROM projects WHERE id = $1 AND user_id = $2`
	if _, err := s.DB.Exec(ctx, query, projectID, userID); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", projectID, err)
	}
	return nil
}

// LoadTokens returns the user's token balance, seeding it with initial on
// first sight.
func (s *ProjectService) LoadTokens(ctx context.Context, userID string, initial int) (int, error) {
	query := `
		INSERT INTO token_balances (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = token_balances.user_id
		RETURNING balance
	`
	var balance int
	if err := s.DB.QueryRow(ctx, query, userID, initial).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to load token balance for user %s: %w", userID, err)
	}
	return balance, nil
}

func (s *ProjectService) SaveTokens(ctx context.Context, userID string, balance int) error {
	query := `
		INSERT INTO token_balances (user_id, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET balance = $2, updated_at = now()
	`
	if _, err := s.DB.Exec(ctx, query, userID, balance); err != nil {
		return fmt.Errorf("failed to save token balance for user %s: %w", userID, err)
	}
	return nil
}
