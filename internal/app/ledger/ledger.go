// Package ledger appends graded attempts to the submissions table.
package ledger

import (
	"context"
	"fmt"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

// SkipReason says why an attempt was not written.
type SkipReason string

const (
	SkipUnauthenticated SkipReason = "unauthenticated"
	SkipUnknownProblem  SkipReason = "unknown_problem"
)

type ProblemChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type SubmissionWriter interface {
	Create(ctx context.Context, tx *sqlx.Tx, sub *model.Submission) error
}

// Result is the outcome of Record. Exactly one of Submission and Skipped is
// set when err is nil.
type Result struct {
	Submission *model.Submission
	Skipped    SkipReason
}

func (r Result) Recorded() bool { return r.Submission != nil }

type Ledger struct {
	problems ProblemChecker
	writer   SubmissionWriter
}

func New(problems ProblemChecker, writer SubmissionWriter) *Ledger {
	return &Ledger{problems: problems, writer: writer}
}

// Record inserts one submission row. A zero userID means the caller is
// anonymous. Every call inserts; there is no deduplication.
func (l *Ledger) Record(ctx context.Context, userID, problemID int64, query string, verdict model.Verdict, execTime *float64) (Result, error) {
	if userID == 0 {
		common.Logger().Info("ledger: submission not recorded", "reason", SkipUnauthenticated, "problem_id", problemID)
		return Result{Skipped: SkipUnauthenticated}, nil
	}

	ok, err := l.problems.Exists(ctx, problemID)
	if err != nil {
		return Result{}, fmt.Errorf("ledger.Record: %w", err)
	}
	if !ok {
		common.Logger().Info("ledger: submission not recorded", "reason", SkipUnknownProblem, "problem_id", problemID, "user_id", userID)
		return Result{Skipped: SkipUnknownProblem}, nil
	}

	sub := &model.Submission{
		UserID:        userID,
		ProblemID:     problemID,
		Query:         query,
		Status:        verdict,
		ExecutionTime: execTime,
	}
	if err := l.writer.Create(ctx, nil, sub); err != nil {
		common.Logger().Error("ledger: submission write failed", "problem_id", problemID, "user_id", userID, "error", err)
		return Result{}, fmt.Errorf("ledger.Record: %w", err)
	}
	return Result{Submission: sub}, nil
}
