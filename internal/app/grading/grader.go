// Package grading decides whether a student query produces the same result
// as a problem's reference query.
package grading

import (
	"context"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
)

const fallbackMessage = "Results compared (fallback mode)"

// Executor runs a statement for a problem database. The query router
// satisfies it.
type Executor interface {
	Execute(ctx context.Context, problemDatabase, sqlText string) *model.QueryResult
}

type Verdict struct {
	Correct       bool               `json:"correct"`
	Message       string             `json:"message"`
	Diff          *Diff              `json:"diff"`
	StudentResult *model.QueryResult `json:"user_result"`
	Fallback      bool               `json:"fallback,omitempty"`
}

type Engine struct {
	exec           Executor
	orderSensitive bool
}

func NewEngine(exec Executor) *Engine {
	return &Engine{exec: exec, orderSensitive: OrderSensitive}
}

// Grade runs the student query, then the reference query, against the
// problem's database and compares them. It always returns a verdict.
// Problems without a database of their own are compared on success and row
// count only.
func (e *Engine) Grade(ctx context.Context, problem model.ProblemSource, studentQuery string) *Verdict {
	dbName := problem.TargetDatabase()

	student := e.exec.Execute(ctx, dbName, studentQuery)
	if !student.Success {
		return &Verdict{
			Message:       "Your query failed: " + student.ErrorMessage(),
			StudentResult: student,
			Fallback:      dbName == "",
		}
	}

	reference := e.exec.Execute(ctx, dbName, problem.ReferenceQuery())
	if !reference.Success {
		common.Logger().Warn("grading: reference query failed",
			"problem_id", problem.SourceID(), "database", dbName, "error", reference.ErrorMessage())
		return &Verdict{
			Message:       "The reference solution for this problem could not be run, so your answer was not graded.",
			StudentResult: student,
			Fallback:      dbName == "",
		}
	}

	if dbName == "" {
		return &Verdict{
			Correct:       student.RowCount == reference.RowCount && !student.Truncated && !reference.Truncated,
			Message:       fallbackMessage,
			StudentResult: student,
			Fallback:      true,
			Diff: &Diff{
				ExpectedRowCount: reference.RowCount,
				ActualRowCount:   student.RowCount,
				ExpectedColumns:  reference.Columns,
				ActualColumns:    student.Columns,
			},
		}
	}

	if reference.Truncated {
		common.Logger().Warn("grading: reference result exceeds the row limit",
			"problem_id", problem.SourceID(), "database", dbName, "rows", reference.RowCount)
	}
	correct, msg, diff := Compare(reference, student, e.orderSensitive)
	return &Verdict{Correct: correct, Message: msg, Diff: diff, StudentResult: student}
}
