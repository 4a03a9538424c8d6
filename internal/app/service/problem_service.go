package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/domain/repository"

	"github.com/gosimple/slug"
)

// ProblemService serves the catalog and resolves problems for grading and
// tutoring.
type ProblemService struct {
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	exerciseRepo   repository.ExerciseRepository
}

func NewProblemService(
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	exerciseRepo repository.ExerciseRepository,
) *ProblemService {
	return &ProblemService{
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		exerciseRepo:   exerciseRepo,
	}
}

var errProblemNotFound = common.NewError(common.ErrNotFound, "Problem not found")

type ProblemFilter struct {
	Difficulty string
	Tag        string
}

type SchemaInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	DBName      string `json:"db_name"`
}

type ProblemSummary struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Difficulty  string     `json:"difficulty"`
	Schema      SchemaInfo `json:"schema"`
	Tags        []string   `json:"tags"`
	Completed   bool       `json:"completed"`
}

type ProblemDetail struct {
	ProblemSummary
	InitialQuery  string               `json:"initial_query"`
	ExpectedQuery string               `json:"expected_query"`
	Hints         []string             `json:"hints"`
	Tables        []model.ProblemTable `json:"tables"`
}

func summarize(p *model.Problem) ProblemSummary {
	return ProblemSummary{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        slug.Make(p.Title),
		Description: p.Description,
		Difficulty:  p.Difficulty,
		Schema: SchemaInfo{
			ID:          p.ID,
			Name:        p.SchemaName(),
			DisplayName: p.SchemaDisplayName(),
			DBName:      p.DatabaseName,
		},
		Tags: p.Tags(),
	}
}

// ListProblems returns the catalog filtered by exact difficulty and tag
// substring. completed is only computed for a signed-in caller.
func (s *ProblemService) ListProblems(ctx context.Context, filter ProblemFilter, userID int64) ([]ProblemSummary, error) {
	difficulty := strings.ToLower(strings.TrimSpace(filter.Difficulty))
	tag := strings.ToLower(strings.TrimSpace(filter.Tag))

	solved := map[int64]bool{}
	if userID != 0 {
		ids, err := s.submissionRepo.SolvedProblemIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("ProblemService.ListProblems: %w", err)
		}
		solved = ids
	}

	out := []ProblemSummary{}
	for p, err := range s.problemRepo.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("ProblemService.ListProblems: %w", err)
		}
		if difficulty != "" && p.Difficulty != difficulty {
			continue
		}
		if tag != "" && !strings.Contains(strings.ToLower(p.Tag), tag) {
			continue
		}
		sum := summarize(p)
		sum.Completed = solved[p.ID]
		out = append(out, sum)
	}
	return out, nil
}

func (s *ProblemService) GetProblem(ctx context.Context, id int64, userID int64) (*ProblemDetail, error) {
	p, err := s.problemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errProblemNotFound
		}
		return nil, fmt.Errorf("ProblemService.GetProblem: %w", err)
	}
	tables, err := s.problemRepo.Tables(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ProblemService.GetProblem: %w", err)
	}

	firstTable := "Unknown"
	if len(tables) > 0 {
		firstTable = tables[0].TableName
	}
	detail := &ProblemDetail{
		ProblemSummary: summarize(p),
		InitialQuery:   fmt.Sprintf("SELECT \n  -- Write your query here\nFROM %s", firstTable),
		ExpectedQuery:  p.ExpectedQuery,
		Hints:          []string{},
		Tables:         tables,
	}
	if userID != 0 {
		solved, err := s.submissionRepo.SolvedProblemIDs(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("ProblemService.GetProblem: %w", err)
		}
		detail.Completed = solved[id]
	}
	return detail, nil
}

// CatalogProblem returns the catalog entry for id or a client facing
// not found error.
func (s *ProblemService) CatalogProblem(ctx context.Context, id int64) (*model.Problem, error) {
	p, err := s.problemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errProblemNotFound
		}
		return nil, fmt.Errorf("ProblemService.CatalogProblem: %w", err)
	}
	return p, nil
}

// ResolveSource looks id up in the catalog first and falls back to the
// legacy exercises table.
func (s *ProblemService) ResolveSource(ctx context.Context, id int64) (model.ProblemSource, error) {
	p, err := s.problemRepo.GetByID(ctx, id)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("ProblemService.ResolveSource: %w", err)
	}
	ex, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errProblemNotFound
		}
		return nil, fmt.Errorf("ProblemService.ResolveSource: %w", err)
	}
	return ex, nil
}

func (s *ProblemService) ListSchemas(ctx context.Context) ([]model.DatabaseSchema, error) {
	schemas, err := s.exerciseRepo.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("ProblemService.ListSchemas: %w", err)
	}
	return schemas, nil
}
