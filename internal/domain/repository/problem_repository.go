package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"strings"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

// ProblemRepository reads the problem catalog. Nothing here writes to it.
type ProblemRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Problem, error)
	// All streams the catalog ordered by id. Each call re-queries.
	All(ctx context.Context) iter.Seq2[*model.Problem, error]
	Tables(ctx context.Context, problemID int64) ([]model.ProblemTable, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

type sqlProblemRepository struct {
	db *sqlx.DB
}

func NewSQLProblemRepository(db *sqlx.DB) ProblemRepository {
	return &sqlProblemRepository{db: db}
}

const problemColumns = `id, title, difficulty, tag, description, database_name, expected_query, expected_result, created_at`

type problemRow struct {
	ID             int64          `db:"id"`
	Title          string         `db:"title"`
	Difficulty     sql.NullString `db:"difficulty"`
	Tag            sql.NullString `db:"tag"`
	Description    sql.NullString `db:"description"`
	DatabaseName   sql.NullString `db:"database_name"`
	ExpectedQuery  sql.NullString `db:"expected_query"`
	ExpectedResult sql.NullString `db:"expected_result"`
	CreatedAt      sql.NullTime   `db:"created_at"`
}

// toModel canonicalises difficulty to lowercase, defaulting to easy.
func (row *problemRow) toModel() *model.Problem {
	p := &model.Problem{
		ID:            row.ID,
		Title:         row.Title,
		Difficulty:    strings.ToLower(strings.TrimSpace(row.Difficulty.String)),
		Tag:           row.Tag.String,
		Description:   row.Description.String,
		DatabaseName:  row.DatabaseName.String,
		ExpectedQuery: row.ExpectedQuery.String,
		CreatedAt:     row.CreatedAt.Time,
	}
	if p.Difficulty == "" {
		p.Difficulty = model.DefaultDifficulty
	}
	if row.ExpectedResult.Valid {
		v := row.ExpectedResult.String
		p.ExpectedResult = &v
	}
	return p
}

func (r *sqlProblemRepository) GetByID(ctx context.Context, id int64) (*model.Problem, error) {
	var row problemRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+problemColumns+` FROM problems WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlProblemRepository.GetByID: %w", err)
	}
	return row.toModel(), nil
}

func (r *sqlProblemRepository) All(ctx context.Context) iter.Seq2[*model.Problem, error] {
	return func(yield func(*model.Problem, error) bool) {
		rows, err := r.db.QueryxContext(ctx, `SELECT `+problemColumns+` FROM problems ORDER BY id`)
		if err != nil {
			yield(nil, fmt.Errorf("sqlProblemRepository.All: %w", err))
			return
		}
		defer rows.Close()
		for rows.Next() {
			var row problemRow
			if err := rows.StructScan(&row); err != nil {
				yield(nil, fmt.Errorf("sqlProblemRepository.All: %w", err))
				return
			}
			if !yield(row.toModel(), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("sqlProblemRepository.All: %w", err))
		}
	}
}

func (r *sqlProblemRepository) Tables(ctx context.Context, problemID int64) ([]model.ProblemTable, error) {
	tables := []model.ProblemTable{}
	err := r.db.SelectContext(ctx, &tables, r.db.Rebind(
		`SELECT problem_id, table_name, COALESCE(table_schema, '') AS table_schema,
		        COALESCE(sample_data, '') AS sample_data, display_order
		 FROM problem_tables WHERE problem_id = ? ORDER BY display_order, id`), problemID)
	if err != nil {
		return nil, fmt.Errorf("sqlProblemRepository.Tables: %w", err)
	}
	return tables, nil
}

func (r *sqlProblemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM problems WHERE id = ?`), id); err != nil {
		return false, fmt.Errorf("sqlProblemRepository.Exists: %w", err)
	}
	return n > 0, nil
}

func (r *sqlProblemRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM problems`); err != nil {
		return 0, fmt.Errorf("sqlProblemRepository.Count: %w", err)
	}
	return n, nil
}
