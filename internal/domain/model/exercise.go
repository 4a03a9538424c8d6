package model

import "time"

// DatabaseSchema groups legacy exercises under one named database.
type DatabaseSchema struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	DisplayName   string    `json:"display_name" db:"display_name"`
	Description   string    `json:"description" db:"description"`
	DBName        string    `json:"db_name" db:"db_name"`
	ExerciseCount int       `json:"exercise_count" db:"exercise_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Exercise is a legacy, locally authored problem. It has no per-problem
// database of its own unless its schema names one.
type Exercise struct {
	ID            int64     `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	Difficulty    string    `json:"difficulty" db:"difficulty"`
	SchemaID      *int64    `json:"schema_id" db:"schema_id"`
	SchemaDBName  string    `json:"db_name" db:"db_name"`
	InitialQuery  string    `json:"initial_query" db:"initial_query"`
	ExpectedQuery string    `json:"expected_query" db:"expected_query"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

func (e *Exercise) SourceID() int64           { return e.ID }
func (e *Exercise) SourceTitle() string       { return e.Title }
func (e *Exercise) SourceDescription() string { return e.Description }
func (e *Exercise) SourceDifficulty() string  { return e.Difficulty }
func (e *Exercise) TargetDatabase() string    { return e.SchemaDBName }
func (e *Exercise) ReferenceQuery() string    { return e.ExpectedQuery }
func (e *Exercise) CatalogBacked() bool       { return false }
