package model

import "time"

type ChatContext struct {
	UserQuery      string  `json:"user_query"`
	Error          string  `json:"error"`
	AIGeneratedSQL *string `json:"ai_generated_sql"`
	Intent         string  `json:"intent"`
}

// ChatHistory records one tutoring exchange about a catalog problem.
type ChatHistory struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	ProblemID *int64      `json:"problem_id"`
	Message   string      `json:"message"`
	Response  string      `json:"response"`
	Context   ChatContext `json:"context"`
	CreatedAt time.Time   `json:"created_at"`
}
