package repository

import (
	"context"
	"fmt"
	"time"

	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

type SubmissionRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, sub *model.Submission) error
	// ListForUserProblem returns newest first.
	ListForUserProblem(ctx context.Context, userID, problemID int64) ([]model.Submission, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.Submission, error)
	ListRecent(ctx context.Context, limit int) ([]model.Submission, error)
	SolvedProblemIDs(ctx context.Context, userID int64) (map[int64]bool, error)
	CountByStatus(ctx context.Context) (total int, correct int, err error)
}

type sqlSubmissionRepository struct {
	db *sqlx.DB
}

func NewSQLSubmissionRepository(db *sqlx.DB) SubmissionRepository {
	return &sqlSubmissionRepository{db: db}
}

// Create always inserts a new row and sets ID and the timestamps on sub.
func (r *sqlSubmissionRepository) Create(ctx context.Context, tx *sqlx.Tx, sub *model.Submission) error {
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	status := string(sub.Status)
	if len(status) > model.MaxVerdictLength {
		status = status[:model.MaxVerdictLength]
	}
	id, err := insertReturningID(ctx, ext(r.db, tx),
		`INSERT INTO submissions (query, status, execution_time, exercise_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.Query, status, sub.ExecutionTime, sub.ProblemID, sub.UserID, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlSubmissionRepository.Create: %w", err)
	}
	sub.ID = id
	return nil
}

func (r *sqlSubmissionRepository) ListForUserProblem(ctx context.Context, userID, problemID int64) ([]model.Submission, error) {
	subs := []model.Submission{}
	err := r.db.SelectContext(ctx, &subs, r.db.Rebind(
		`SELECT id, user_id, exercise_id, query, status, execution_time, created_at, updated_at
		 FROM submissions WHERE user_id = ? AND exercise_id = ?
		 ORDER BY created_at DESC, id DESC`), userID, problemID)
	if err != nil {
		return nil, fmt.Errorf("sqlSubmissionRepository.ListForUserProblem: %w", err)
	}
	return subs, nil
}

func (r *sqlSubmissionRepository) ListForUser(ctx context.Context, userID int64, limit int) ([]model.Submission, error) {
	subs := []model.Submission{}
	err := r.db.SelectContext(ctx, &subs, r.db.Rebind(
		`SELECT s.id, s.user_id, s.exercise_id, s.query, s.status, s.execution_time, s.created_at, s.updated_at,
		        p.title AS exercise_title
		 FROM submissions s LEFT JOIN problems p ON p.id = s.exercise_id
		 WHERE s.user_id = ?
		 ORDER BY s.created_at DESC, s.id DESC LIMIT ?`), userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlSubmissionRepository.ListForUser: %w", err)
	}
	return subs, nil
}

func (r *sqlSubmissionRepository) ListRecent(ctx context.Context, limit int) ([]model.Submission, error) {
	subs := []model.Submission{}
	err := r.db.SelectContext(ctx, &subs, r.db.Rebind(
		`SELECT s.id, s.user_id, s.exercise_id, s.query, s.status, s.execution_time, s.created_at, s.updated_at,
		        p.title AS exercise_title, u.username
		 FROM submissions s
		 LEFT JOIN problems p ON p.id = s.exercise_id
		 LEFT JOIN users u ON u.id = s.user_id
		 ORDER BY s.created_at DESC, s.id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlSubmissionRepository.ListRecent: %w", err)
	}
	return subs, nil
}

func (r *sqlSubmissionRepository) SolvedProblemIDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, r.db.Rebind(
		`SELECT DISTINCT exercise_id FROM submissions WHERE user_id = ? AND status = ?`),
		userID, string(model.VerdictCorrect))
	if err != nil {
		return nil, fmt.Errorf("sqlSubmissionRepository.SolvedProblemIDs: %w", err)
	}
	solved := make(map[int64]bool, len(ids))
	for _, id := range ids {
		solved[id] = true
	}
	return solved, nil
}

func (r *sqlSubmissionRepository) CountByStatus(ctx context.Context) (int, int, error) {
	var counts struct {
		Total   int `db:"total"`
		Correct int `db:"correct"`
	}
	err := r.db.GetContext(ctx, &counts, r.db.Rebind(
		`SELECT COUNT(*) AS total, COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS correct
		 FROM submissions`), string(model.VerdictCorrect))
	if err != nil {
		return 0, 0, fmt.Errorf("sqlSubmissionRepository.CountByStatus: %w", err)
	}
	return counts.Total, counts.Correct, nil
}
