package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

// ExerciseRepository manages the legacy, locally authored exercises and the
// schema groups they belong to.
type ExerciseRepository interface {
	ListSchemas(ctx context.Context) ([]model.DatabaseSchema, error)
	GetByID(ctx context.Context, id int64) (*model.Exercise, error)
	Create(ctx context.Context, ex *model.Exercise) error
	Update(ctx context.Context, ex *model.Exercise) error
	Delete(ctx context.Context, id int64) error
}

type sqlExerciseRepository struct {
	db *sqlx.DB
}

func NewSQLExerciseRepository(db *sqlx.DB) ExerciseRepository {
	return &sqlExerciseRepository{db: db}
}

func (r *sqlExerciseRepository) ListSchemas(ctx context.Context) ([]model.DatabaseSchema, error) {
	schemas := []model.DatabaseSchema{}
	err := r.db.SelectContext(ctx, &schemas,
		`SELECT s.id, s.name, s.display_name, COALESCE(s.description, '') AS description, s.db_name, s.created_at,
		        COUNT(e.id) AS exercise_count
		 FROM database_schemas s LEFT JOIN exercises e ON e.schema_id = s.id
		 GROUP BY s.id, s.name, s.display_name, s.description, s.db_name, s.created_at
		 ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("sqlExerciseRepository.ListSchemas: %w", err)
	}
	return schemas, nil
}

func (r *sqlExerciseRepository) GetByID(ctx context.Context, id int64) (*model.Exercise, error) {
	ex := &model.Exercise{}
	err := r.db.GetContext(ctx, ex, r.db.Rebind(
		`SELECT e.id, e.title, COALESCE(e.description, '') AS description, e.difficulty, e.schema_id,
		        COALESCE(s.db_name, '') AS db_name, COALESCE(e.initial_query, '') AS initial_query,
		        COALESCE(e.expected_query, '') AS expected_query, e.created_at, e.updated_at
		 FROM exercises e LEFT JOIN database_schemas s ON s.id = e.schema_id
		 WHERE e.id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlExerciseRepository.GetByID: %w", err)
	}
	return ex, nil
}

func (r *sqlExerciseRepository) Create(ctx context.Context, ex *model.Exercise) error {
	now := time.Now().UTC()
	ex.CreatedAt, ex.UpdatedAt = now, now
	id, err := insertReturningID(ctx, r.db,
		`INSERT INTO exercises (title, description, difficulty, schema_id, initial_query, expected_query, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.Title, ex.Description, ex.Difficulty, ex.SchemaID, ex.InitialQuery, ex.ExpectedQuery, ex.CreatedAt, ex.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlExerciseRepository.Create: %w", err)
	}
	ex.ID = id
	return nil
}

func (r *sqlExerciseRepository) Update(ctx context.Context, ex *model.Exercise) error {
	ex.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(
		`UPDATE exercises SET title = ?, description = ?, difficulty = ?, schema_id = ?,
		        initial_query = ?, expected_query = ?, updated_at = ?
		 WHERE id = ?`),
		ex.Title, ex.Description, ex.Difficulty, ex.SchemaID, ex.InitialQuery, ex.ExpectedQuery, ex.UpdatedAt, ex.ID)
	if err != nil {
		return fmt.Errorf("sqlExerciseRepository.Update: %w", err)
	}
	return requireAffected(res, "sqlExerciseRepository.Update")
}

func (r *sqlExerciseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM exercises WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlExerciseRepository.Delete: %w", err)
	}
	return requireAffected(res, "sqlExerciseRepository.Delete")
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
