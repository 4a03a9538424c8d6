package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatsql_backend/internal/app/executor"
	"chatsql_backend/internal/app/grading"
	"chatsql_backend/internal/app/ledger"
	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/domain/repository"
)

// SubmissionService runs, grades and records student queries.
type SubmissionService struct {
	problems       *ProblemService
	router         *executor.Router
	grader         *grading.Engine
	ledger         *ledger.Ledger
	submissionRepo repository.SubmissionRepository
}

func NewSubmissionService(
	problems *ProblemService,
	router *executor.Router,
	grader *grading.Engine,
	ledger *ledger.Ledger,
	submissionRepo repository.SubmissionRepository,
) *SubmissionService {
	return &SubmissionService{
		problems:       problems,
		router:         router,
		grader:         grader,
		ledger:         ledger,
		submissionRepo: submissionRepo,
	}
}

type QueryRequest struct {
	Query string `json:"query"`
}

var errQueryRequired = common.NewError(common.ErrValidation, "Query is required")

type SubmitResponse struct {
	*grading.Verdict
	Recorded bool `json:"recorded"`
}

type SubmissionView struct {
	ID            int64         `json:"id"`
	Query         string        `json:"query"`
	Status        model.Verdict `json:"status"`
	ExecutionTime *float64      `json:"execution_time"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Execute runs query against the problem's database without grading it.
func (s *SubmissionService) Execute(ctx context.Context, problemID int64, req QueryRequest) (*model.QueryResult, error) {
	problem, err := s.problems.CatalogProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errQueryRequired
	}
	return s.router.Execute(ctx, problem.DatabaseName, query), nil
}

// Submit grades query and appends it to the ledger. The verdict is returned
// even when the attempt could not be recorded; userID 0 is an anonymous caller.
func (s *SubmissionService) Submit(ctx context.Context, userID, problemID int64, req QueryRequest) (*SubmitResponse, error) {
	problem, err := s.problems.CatalogProblem(ctx, problemID)
	if err != nil {
		return nil, err
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, errQueryRequired
	}

	verdict := s.grader.Grade(ctx, problem, query)

	var execTime *float64
	if verdict.StudentResult != nil {
		t := verdict.StudentResult.ExecutionTime
		execTime = &t
	}
	res, err := s.ledger.Record(ctx, userID, problem.ID, query, model.VerdictFor(verdict.Correct), execTime)
	if err != nil {
		common.Logger().Error("submission graded but not recorded",
			"user_id", userID, "problem_id", problem.ID, "correct", verdict.Correct, "error", err)
	}
	return &SubmitResponse{Verdict: verdict, Recorded: res.Recorded()}, nil
}

// History lists the caller's attempts at one problem, newest first.
func (s *SubmissionService) History(ctx context.Context, userID, problemID int64) ([]SubmissionView, error) {
	subs, err := s.submissionRepo.ListForUserProblem(ctx, userID, problemID)
	if err != nil {
		return nil, fmt.Errorf("SubmissionService.History: %w", err)
	}
	out := make([]SubmissionView, 0, len(subs))
	for _, sub := range subs {
		out = append(out, SubmissionView{
			ID:            sub.ID,
			Query:         sub.Query,
			Status:        sub.Status,
			ExecutionTime: sub.ExecutionTime,
			CreatedAt:     sub.CreatedAt,
			UpdatedAt:     sub.UpdatedAt,
		})
	}
	return out, nil
}
