package service

import (
	"context"
	"fmt"
	"strings"

	"chatsql_backend/internal/app/executor"
	"chatsql_backend/internal/app/tutor"
	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/domain/repository"

	"github.com/google/uuid"
)

// TutorService answers tutoring questions about a problem and runs the SQL
// the tutor generates for progress questions.
type TutorService struct {
	problems *ProblemService
	adapter  *tutor.Adapter
	router   *executor.Router
	chatRepo repository.ChatHistoryRepository
}

func NewTutorService(
	problems *ProblemService,
	adapter *tutor.Adapter,
	router *executor.Router,
	chatRepo repository.ChatHistoryRepository,
) *TutorService {
	return &TutorService{problems: problems, adapter: adapter, router: router, chatRepo: chatRepo}
}

type AskRequest struct {
	Message     string          `json:"message"`
	UserQuery   string          `json:"user_query"`
	Error       string          `json:"error"`
	Submissions []tutor.Attempt `json:"submissions"`
}

type AskResponse struct {
	Response       string             `json:"response"`
	Intent         tutor.Intent       `json:"intent"`
	SQLQuery       *string            `json:"sql_query,omitempty"`
	QueryResult    *model.QueryResult `json:"query_result,omitempty"`
	Executed       bool               `json:"executed"`
	ExecutionError string             `json:"execution_error,omitempty"`
}

// Ask runs one tutoring turn. sessionKey is empty for anonymous callers.
func (s *TutorService) Ask(ctx context.Context, problemID, userID int64, sessionKey string, req AskRequest) (*AskResponse, error) {
	problem, err := s.problems.ResolveSource(ctx, problemID)
	if err != nil {
		return nil, err
	}

	req.Message = strings.TrimSpace(req.Message)
	req.UserQuery = strings.TrimSpace(req.UserQuery)
	req.Error = strings.TrimSpace(req.Error)
	if req.Message == "" && req.UserQuery == "" && req.Error == "" {
		return nil, common.NewError(common.ErrValidation, "Message, user_query, or error is required")
	}
	message := req.Message
	if message == "" {
		message = req.UserQuery
	}
	if message == "" {
		message = "Help me"
	}

	reply := s.adapter.Respond(ctx, tutor.Request{
		Message:     message,
		UserQuery:   req.UserQuery,
		Error:       req.Error,
		Problem:     problem,
		UserID:      userID,
		Submissions: req.Submissions,
	})

	resp := &AskResponse{Response: reply.Response, Intent: reply.Intent, SQLQuery: reply.GeneratedSQL}
	if reply.ShouldAutoExecute && reply.GeneratedSQL != nil {
		result := s.router.ExecuteOn(ctx, executor.Target{System: true}, *reply.GeneratedSQL)
		resp.QueryResult = result
		resp.Executed = result.Success
		if !result.Success {
			resp.ExecutionError = result.ErrorMessage()
		}
		resp.Response = reply.Response + "\n\n" + summarizeResult(result)
	}

	if problem.CatalogBacked() {
		s.saveHistory(ctx, problem.SourceID(), sessionKey, message, resp, req)
	}
	return resp, nil
}

func (s *TutorService) saveHistory(ctx context.Context, problemID int64, sessionKey, message string, resp *AskResponse, req AskRequest) {
	if sessionKey == "" {
		sessionKey = "anon-" + uuid.NewString()
	}
	entry := &model.ChatHistory{
		SessionID: sessionKey,
		ProblemID: &problemID,
		Message:   message,
		Response:  resp.Response,
		Context: model.ChatContext{
			UserQuery:      req.UserQuery,
			Error:          req.Error,
			AIGeneratedSQL: resp.SQLQuery,
			Intent:         string(resp.Intent),
		},
	}
	if err := s.chatRepo.Create(ctx, entry); err != nil {
		common.Logger().Warn("tutor: failed to save chat history", "problem_id", problemID, "error", err)
	}
}

func summarizeResult(res *model.QueryResult) string {
	switch {
	case !res.Success:
		return "Query execution failed: " + res.ErrorMessage()
	case res.AffectedRows != nil:
		return res.Message
	case res.RowCount == 0:
		return "Query executed successfully (0 results)."
	case res.RowCount == 1:
		return "Query returned 1 result."
	default:
		return fmt.Sprintf("Query returned %d results.", res.RowCount)
	}
}
