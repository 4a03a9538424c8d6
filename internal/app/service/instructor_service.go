package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/domain/repository"
)

const recentLimit = 20

// InstructorService backs the instructor dashboards. Callers are expected to
// have passed the instructor role check.
type InstructorService struct {
	statsRepo      repository.StatsRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	exerciseRepo   repository.ExerciseRepository
	problems       *ProblemService
}

func NewInstructorService(
	statsRepo repository.StatsRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	exerciseRepo repository.ExerciseRepository,
	problems *ProblemService,
) *InstructorService {
	return &InstructorService{
		statsRepo:      statsRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		exerciseRepo:   exerciseRepo,
		problems:       problems,
	}
}

type StudentSubmission struct {
	ID            int64         `json:"id"`
	ExerciseTitle string        `json:"exercise_title"`
	Status        model.Verdict `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

type StudentDetail struct {
	model.StudentSummary
	Submissions []StudentSubmission `json:"submissions"`
}

type ExerciseRequest struct {
	Title         string `json:"title" validate:"required,max=200"`
	Description   string `json:"description" validate:"required"`
	Difficulty    string `json:"difficulty" validate:"required,max=20"`
	SchemaID      *int64 `json:"schema_id"`
	InitialQuery  string `json:"initial_query"`
	ExpectedQuery string `json:"expected_query" validate:"required"`
}

type ExerciseResponse struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *InstructorService) Stats(ctx context.Context) (*model.InstructorStats, error) {
	students, err := s.statsRepo.CountStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.Stats: %w", err)
	}
	exercises, err := s.problemRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.Stats: %w", err)
	}
	total, correct, err := s.submissionRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.Stats: %w", err)
	}
	stats := &model.InstructorStats{
		TotalStudents:    students,
		TotalExercises:   exercises,
		TotalSubmissions: total,
	}
	if total > 0 {
		stats.AverageCompletionRate = roundRate(correct, total)
	}
	return stats, nil
}

func (s *InstructorService) Students(ctx context.Context) ([]model.StudentSummary, error) {
	students, err := s.statsRepo.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.Students: %w", err)
	}
	return students, nil
}

func (s *InstructorService) Student(ctx context.Context, id int64) (*StudentDetail, error) {
	student, err := s.statsRepo.GetStudent(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Student not found")
		}
		return nil, fmt.Errorf("InstructorService.Student: %w", err)
	}
	subs, err := s.submissionRepo.ListForUser(ctx, id, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.Student: %w", err)
	}
	detail := &StudentDetail{StudentSummary: *student, Submissions: make([]StudentSubmission, 0, len(subs))}
	for _, sub := range subs {
		detail.Submissions = append(detail.Submissions, StudentSubmission{
			ID:            sub.ID,
			ExerciseTitle: problemTitle(sub),
			Status:        sub.Status,
			CreatedAt:     sub.CreatedAt,
		})
	}
	return detail, nil
}

func (s *InstructorService) RecentActivity(ctx context.Context) ([]model.ActivityEntry, error) {
	subs, err := s.submissionRepo.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.RecentActivity: %w", err)
	}
	out := make([]model.ActivityEntry, 0, len(subs))
	for _, sub := range subs {
		user := fmt.Sprintf("User %d", sub.UserID)
		if sub.Username != nil {
			user = *sub.Username
		}
		out = append(out, model.ActivityEntry{
			ID:     sub.ID,
			User:   user,
			Action: fmt.Sprintf(`Submitted answer to "%s"`, problemTitle(sub)),
			Date:   sub.CreatedAt,
			Status: sub.Status,
		})
	}
	return out, nil
}

func (s *InstructorService) ProblemStats(ctx context.Context) ([]model.ProblemStats, error) {
	stats, err := s.statsRepo.ProblemStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("InstructorService.ProblemStats: %w", err)
	}
	return stats, nil
}

func (s *InstructorService) Exercises(ctx context.Context) ([]ProblemSummary, error) {
	return s.problems.ListProblems(ctx, ProblemFilter{}, 0)
}

func (s *InstructorService) CreateExercise(ctx context.Context, req ExerciseRequest) (*ExerciseResponse, error) {
	ex, err := exerciseFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.Create(ctx, ex); err != nil {
		return nil, fmt.Errorf("InstructorService.CreateExercise: %w", err)
	}
	common.Logger().Info("instructor: exercise created", "exercise_id", ex.ID, "title", ex.Title)
	return &ExerciseResponse{ID: ex.ID, Title: ex.Title, Message: "Exercise created successfully"}, nil
}

func (s *InstructorService) UpdateExercise(ctx context.Context, id int64, req ExerciseRequest) (*ExerciseResponse, error) {
	ex, err := exerciseFromRequest(req)
	if err != nil {
		return nil, err
	}
	ex.ID = id
	if err := s.exerciseRepo.Update(ctx, ex); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Exercise not found")
		}
		return nil, fmt.Errorf("InstructorService.UpdateExercise: %w", err)
	}
	return &ExerciseResponse{ID: ex.ID, Title: ex.Title, Message: "Exercise updated successfully"}, nil
}

func (s *InstructorService) DeleteExercise(ctx context.Context, id int64) error {
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, "Exercise not found")
		}
		return fmt.Errorf("InstructorService.DeleteExercise: %w", err)
	}
	return nil
}

func exerciseFromRequest(req ExerciseRequest) (*model.Exercise, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Difficulty = strings.ToLower(strings.TrimSpace(req.Difficulty))
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err, nil)
	}
	return &model.Exercise{
		Title:         req.Title,
		Description:   req.Description,
		Difficulty:    req.Difficulty,
		SchemaID:      req.SchemaID,
		InitialQuery:  req.InitialQuery,
		ExpectedQuery: req.ExpectedQuery,
	}, nil
}

func problemTitle(sub model.Submission) string {
	if sub.ProblemTitle != nil {
		return *sub.ProblemTitle
	}
	return fmt.Sprintf("Problem %d", sub.ProblemID)
}

func roundRate(part, total int) float64 {
	rate := float64(part) * 1000 / float64(total)
	return float64(int64(rate+0.5)) / 10
}
