package model

import "time"

type Verdict string

const (
	VerdictPending   Verdict = "pending"
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// MaxVerdictLength is the width of submissions.status.
const MaxVerdictLength = 20

func VerdictFor(correct bool) Verdict {
	if correct {
		return VerdictCorrect
	}
	return VerdictIncorrect
}

type Submission struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	ProblemID     int64     `json:"exercise_id" db:"exercise_id"`
	Query         string    `json:"query" db:"query"`
	Status        Verdict   `json:"status" db:"status"`
	ExecutionTime *float64  `json:"execution_time" db:"execution_time"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	ProblemTitle *string `json:"exercise_title,omitempty" db:"exercise_title"` // For display
	Username     *string `json:"username,omitempty" db:"username"`             // For display
}
