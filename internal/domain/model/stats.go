package model

import "time"

type InstructorStats struct {
	TotalStudents         int     `json:"total_students"`
	TotalExercises        int     `json:"total_exercises"`
	TotalSubmissions      int     `json:"total_submissions"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
}

// StudentSummary is one roster line.
type StudentSummary struct {
	ID               int64     `json:"id" db:"id"`
	Username         string    `json:"username" db:"username"`
	Email            string    `json:"email" db:"email"`
	StudentID        string    `json:"student_id" db:"-"`
	DateJoined       time.Time `json:"date_joined" db:"created_at"`
	SubmissionsCount int       `json:"submissions_count" db:"submissions_count"`
}

type ActivityEntry struct {
	ID     int64     `json:"id"`
	User   string    `json:"user"`
	Action string    `json:"action"`
	Date   time.Time `json:"date"`
	Status Verdict   `json:"status"`
}

type ProblemStats struct {
	ProblemID            int64   `json:"problem_id" db:"problem_id"`
	Title                string  `json:"title" db:"title"`
	Difficulty           string  `json:"difficulty" db:"difficulty"`
	TotalSubmissions     int     `json:"total_submissions" db:"total_submissions"`
	CorrectSubmissions   int     `json:"correct_submissions" db:"correct_submissions"`
	IncorrectSubmissions int     `json:"incorrect_submissions" db:"incorrect_submissions"`
	CorrectRate          float64 `json:"correct_rate" db:"-"`
}
