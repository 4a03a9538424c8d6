package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultDifficulty = "easy"

	problemDBPrefix = "chatsql_problem_"
)

// Problem is a catalog entry. Rows are loaded by an external process and
// only read here.
type Problem struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Difficulty     string    `json:"difficulty"`
	Tag            string    `json:"tag"`
	Description    string    `json:"description"`
	DatabaseName   string    `json:"database_name"`
	ExpectedQuery  string    `json:"expected_query"`
	ExpectedResult *string   `json:"expected_result,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Tags exposes the single tag as a sequence.
func (p *Problem) Tags() []string {
	if p.Tag == "" {
		return []string{}
	}
	return []string{p.Tag}
}

// SchemaName is the short database name shown to clients.
func (p *Problem) SchemaName() string {
	return strings.Replace(p.DatabaseName, problemDBPrefix, "problem_", 1)
}

func (p *Problem) SchemaDisplayName() string {
	label := p.Tag
	if label == "" {
		label = "Database"
	}
	return fmt.Sprintf("Problem %d %s", p.ID, label)
}

// ProblemTable describes one physical table of a problem database.
type ProblemTable struct {
	ProblemID    int64  `json:"-" db:"problem_id"`
	TableName    string `json:"table_name" db:"table_name"`
	TableSchema  string `json:"table_schema" db:"table_schema"`
	SampleData   string `json:"sample_data" db:"sample_data"`
	DisplayOrder int    `json:"display_order" db:"display_order"`
}

// ProblemSource is what grading and tutoring need from a problem, whether it
// comes from the catalog or from the legacy exercises table.
type ProblemSource interface {
	SourceID() int64
	SourceTitle() string
	SourceDescription() string
	SourceDifficulty() string
	TargetDatabase() string
	ReferenceQuery() string
	CatalogBacked() bool
}

func (p *Problem) SourceID() int64           { return p.ID }
func (p *Problem) SourceTitle() string       { return p.Title }
func (p *Problem) SourceDescription() string { return p.Description }
func (p *Problem) SourceDifficulty() string  { return p.Difficulty }
func (p *Problem) TargetDatabase() string    { return p.DatabaseName }
func (p *Problem) ReferenceQuery() string    { return p.ExpectedQuery }
func (p *Problem) CatalogBacked() bool       { return true }
