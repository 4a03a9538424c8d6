package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

// StatsRepository serves the instructor dashboards. Students are users
// without the admin flag.
type StatsRepository interface {
	CountStudents(ctx context.Context) (int, error)
	ListStudents(ctx context.Context) ([]model.StudentSummary, error)
	GetStudent(ctx context.Context, id int64) (*model.StudentSummary, error)
	ProblemStats(ctx context.Context) ([]model.ProblemStats, error)
}

type sqlStatsRepository struct {
	db *sqlx.DB
}

func NewSQLStatsRepository(db *sqlx.DB) StatsRepository {
	return &sqlStatsRepository{db: db}
}

const studentSummarySelect = `SELECT u.id, u.username, u.email, u.created_at, COUNT(s.id) AS submissions_count
	FROM users u LEFT JOIN submissions s ON s.user_id = u.id
	WHERE u.is_admin = ?`

const studentSummaryGroup = ` GROUP BY u.id, u.username, u.email, u.created_at`

func (r *sqlStatsRepository) CountStudents(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE is_admin = ?`), false); err != nil {
		return 0, fmt.Errorf("sqlStatsRepository.CountStudents: %w", err)
	}
	return n, nil
}

func (r *sqlStatsRepository) ListStudents(ctx context.Context) ([]model.StudentSummary, error) {
	students := []model.StudentSummary{}
	err := r.db.SelectContext(ctx, &students,
		r.db.Rebind(studentSummarySelect+studentSummaryGroup+` ORDER BY u.created_at DESC, u.id DESC`), false)
	if err != nil {
		return nil, fmt.Errorf("sqlStatsRepository.ListStudents: %w", err)
	}
	for i := range students {
		students[i].StudentID = studentNumber(students[i].ID)
	}
	return students, nil
}

func (r *sqlStatsRepository) GetStudent(ctx context.Context, id int64) (*model.StudentSummary, error) {
	student := &model.StudentSummary{}
	err := r.db.GetContext(ctx, student,
		r.db.Rebind(studentSummarySelect+` AND u.id = ?`+studentSummaryGroup), false, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlStatsRepository.GetStudent: %w", err)
	}
	student.StudentID = studentNumber(student.ID)
	return student, nil
}

func (r *sqlStatsRepository) ProblemStats(ctx context.Context) ([]model.ProblemStats, error) {
	stats := []model.ProblemStats{}
	err := r.db.SelectContext(ctx, &stats, r.db.Rebind(
		`SELECT p.id AS problem_id, p.title, COALESCE(p.difficulty, '') AS difficulty,
		        COUNT(s.id) AS total_submissions,
		        COALESCE(SUM(CASE WHEN s.status = ? THEN 1 ELSE 0 END), 0) AS correct_submissions,
		        COALESCE(SUM(CASE WHEN s.status = ? THEN 1 ELSE 0 END), 0) AS incorrect_submissions
		 FROM problems p LEFT JOIN submissions s ON s.exercise_id = p.id
		 GROUP BY p.id, p.title, p.difficulty
		 ORDER BY p.id`), string(model.VerdictCorrect), string(model.VerdictIncorrect))
	if err != nil {
		return nil, fmt.Errorf("sqlStatsRepository.ProblemStats: %w", err)
	}
	for i := range stats {
		if stats[i].TotalSubmissions > 0 {
			stats[i].CorrectRate = roundTo(float64(stats[i].CorrectSubmissions)*100/float64(stats[i].TotalSubmissions), 1)
		}
	}
	return stats, nil
}

func studentNumber(id int64) string {
	return fmt.Sprintf("STU%06d", id)
}
