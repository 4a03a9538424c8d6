// Package tutor turns a student's question into an LLM tutoring turn and,
// for questions about their own progress, a SQL statement to run.
package tutor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/platform/config"
	"chatsql_backend/internal/platform/llm"
)

type Intent string

const (
	IntentDataQuery Intent = "data_query"
	IntentTutoring  Intent = "tutoring"
	IntentDebug     Intent = "debug"
	IntentError     Intent = "error"
)

const (
	notConfiguredMessage = "AI tutor is not configured. Set LLM_API_KEY."
	userRequiredMessage  = "User ID is required"

	// MockProgressSQL is the statement the offline tutor generates for
	// progress questions. {user_id} is bound to the caller.
	MockProgressSQL = "SELECT COUNT(*) AS solved FROM submissions WHERE user_id = {user_id} AND status = 'correct'"
)

// Attempt is a prior submission as the client reports it.
type Attempt struct {
	Query     string `json:"query"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type Request struct {
	Message     string
	UserQuery   string
	Error       string
	Problem     model.ProblemSource
	UserID      int64
	Submissions []Attempt
}

type Reply struct {
	Response          string
	GeneratedSQL      *string
	ShouldAutoExecute bool
	Intent            Intent
}

type Adapter struct {
	provider llm.Provider
	mode     string
}

// NewAdapter returns a tutor in the given mode. provider may be nil, in
// which case real mode answers with a configuration error.
func NewAdapter(provider llm.Provider, mode string) *Adapter {
	if mode != config.TutorModeReal {
		mode = config.TutorModeMock
	}
	return &Adapter{provider: provider, mode: mode}
}

func (a *Adapter) Mode() string { return a.mode }

// Respond never fails; upstream errors come back as IntentError replies.
func (a *Adapter) Respond(ctx context.Context, req Request) *Reply {
	if a.mode != config.TutorModeReal {
		return mockReply(req)
	}
	if a.provider == nil {
		return &Reply{Response: notConfiguredMessage, Intent: IntentError}
	}
	if req.UserID == 0 {
		return &Reply{Response: userRequiredMessage, Intent: IntentError}
	}

	text, err := a.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(req)},
		{Role: llm.RoleUser, Content: userPrompt(req)},
	})
	if err != nil {
		common.Logger().Error("tutor: provider call failed", "provider", a.provider.Name(), "error", err)
		return &Reply{
			Response: fmt.Sprintf("AI tutor encountered an error: %v. Please try rephrasing your question.", err),
			Intent:   IntentError,
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &Reply{Response: "AI returned no content.", Intent: IntentError}
	}

	reply := &Reply{Response: text, Intent: IntentTutoring}
	if strings.Contains(text, debugTag) {
		reply.Intent = IntentDebug
		reply.Response = strings.TrimSpace(strings.ReplaceAll(text, debugTag, ""))
	}
	if stmt, ok := ExtractSQL(text, req.UserID); ok {
		reply.GeneratedSQL = &stmt
		reply.Intent = IntentDataQuery
		reply.ShouldAutoExecute = true
	}
	return reply
}

var progressKeywords = []string{"how many", "show me", "find", "list", "count", "what is my", "my progress", "did i solve"}

func mockReply(req Request) *Reply {
	msg := strings.ToLower(req.Message)
	for _, kw := range progressKeywords {
		if !strings.Contains(msg, kw) {
			continue
		}
		if req.UserID == 0 {
			return &Reply{
				Response: "Please log in so I can look up your progress.",
				Intent:   IntentDataQuery,
			}
		}
		stmt := bindUser(MockProgressSQL, req.UserID)
		return &Reply{
			Response:          "Based on your question, here's what I found about your progress.",
			GeneratedSQL:      &stmt,
			ShouldAutoExecute: true,
			Intent:            IntentDataQuery,
		}
	}

	title := "the exercise"
	if req.Problem != nil && req.Problem.SourceTitle() != "" {
		title = req.Problem.SourceTitle()
	}

	reply := &Reply{Intent: IntentTutoring}
	switch {
	case req.Error != "":
		reply.Intent = IntentDebug
		reply.Response = fmt.Sprintf("I see an error: %s. Check your SELECT columns and WHERE clause for typos.", req.Error)
	case req.UserQuery != "":
		reply.Response = fmt.Sprintf("Your query looks reasonable for %s. Consider ordering results or selecting explicit columns.", title)
	default:
		reply.Response = fmt.Sprintf("Try selecting the relevant columns from the table for %s.", title)
	}
	if n := len(req.Submissions); n > 0 {
		correct := 0
		for _, s := range req.Submissions {
			if s.Status == string(model.VerdictCorrect) {
				correct++
			}
		}
		reply.Response += fmt.Sprintf("\n\nYou have %d submission(s) for this problem (%d correct).", n, correct)
	}
	return reply
}

func bindUser(stmt string, userID int64) string {
	return strings.ReplaceAll(stmt, "{user_id}", strconv.FormatInt(userID, 10))
}
