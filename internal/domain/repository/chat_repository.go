package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

type ChatHistoryRepository interface {
	Create(ctx context.Context, entry *model.ChatHistory) error
}

type sqlChatHistoryRepository struct {
	db *sqlx.DB
}

func NewSQLChatHistoryRepository(db *sqlx.DB) ChatHistoryRepository {
	return &sqlChatHistoryRepository{db: db}
}

func (r *sqlChatHistoryRepository) Create(ctx context.Context, entry *model.ChatHistory) error {
	blob, err := json.Marshal(entry.Context)
	if err != nil {
		return fmt.Errorf("sqlChatHistoryRepository.Create: %w", err)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO chat_history (session_id, problem_id, message, response, context, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.SessionID, entry.ProblemID, entry.Message, entry.Response, string(blob), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("sqlChatHistoryRepository.Create: %w", err)
	}
	entry.ID = id
	return nil
}
