package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/platform/config"
	"chatsql_backend/internal/platform/llm"
)

type scriptedProvider struct {
	reply    string
	err      error
	messages []llm.Message
	calls    int
}

func (p *scriptedProvider) Chat(_ context.Context, messages []llm.Message) (string, error) {
	p.calls++
	p.messages = messages
	return p.reply, p.err
}

func (p *scriptedProvider) Name() string { return "scripted" }

var sampleProblem = &model.Problem{
	ID:           1,
	Title:        "Top customers",
	Difficulty:   "medium",
	Description:  strings.Repeat("d", 400),
	DatabaseName: "chatsql_problem_1",
}

func TestMockProgressQuestionGeneratesBoundSQL(t *testing.T) {
	provider := &scriptedProvider{}
	a := NewAdapter(provider, config.TutorModeMock)

	reply := a.Respond(context.Background(), Request{Message: "how many problems did I solve", Problem: sampleProblem, UserID: 42})
	if reply.Intent != IntentDataQuery {
		t.Fatalf("expected data_query, got %q", reply.Intent)
	}
	if reply.GeneratedSQL == nil || !strings.Contains(*reply.GeneratedSQL, "user_id = 42") {
		t.Fatalf("expected SQL bound to the caller, got %v", reply.GeneratedSQL)
	}
	if strings.Contains(*reply.GeneratedSQL, "{user_id}") || !reply.ShouldAutoExecute {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if provider.calls != 0 {
		t.Fatalf("mock mode must not call the provider")
	}
}

func TestMockProgressQuestionAnonymous(t *testing.T) {
	reply := NewAdapter(nil, config.TutorModeMock).Respond(context.Background(), Request{Message: "Show me my progress"})
	if reply.GeneratedSQL != nil || reply.ShouldAutoExecute {
		t.Fatalf("anonymous callers get no SQL, got %+v", reply)
	}
	if !strings.Contains(reply.Response, "log in") {
		t.Fatalf("expected a login hint, got %q", reply.Response)
	}
}

func TestMockTutoringAndDebug(t *testing.T) {
	a := NewAdapter(nil, "")
	if a.Mode() != config.TutorModeMock {
		t.Fatalf("unknown modes default to mock")
	}

	debug := a.Respond(context.Background(), Request{Message: "help", Error: "no such column: nme"})
	if debug.Intent != IntentDebug || !strings.Contains(debug.Response, "no such column: nme") {
		t.Fatalf("unexpected debug reply %+v", debug)
	}

	tutoring := a.Respond(context.Background(), Request{
		Message:   "is this right?",
		UserQuery: "SELECT name FROM customers",
		Problem:   sampleProblem,
		Submissions: []Attempt{
			{Query: "SELECT 1", Status: "incorrect"},
			{Query: "SELECT name FROM customers", Status: "correct"},
		},
	})
	if tutoring.Intent != IntentTutoring || tutoring.GeneratedSQL != nil {
		t.Fatalf("unexpected tutoring reply %+v", tutoring)
	}
	if !strings.Contains(tutoring.Response, "Top customers") || !strings.Contains(tutoring.Response, "2 submission(s) for this problem (1 correct)") {
		t.Fatalf("unexpected tutoring text %q", tutoring.Response)
	}
}

func TestRealModeRequiresProviderAndUser(t *testing.T) {
	reply := NewAdapter(nil, config.TutorModeReal).Respond(context.Background(), Request{Message: "hi", UserID: 1})
	if reply.Intent != IntentError || reply.Response != notConfiguredMessage {
		t.Fatalf("unexpected reply %+v", reply)
	}

	provider := &scriptedProvider{reply: "hello"}
	reply = NewAdapter(provider, config.TutorModeReal).Respond(context.Background(), Request{Message: "hi"})
	if reply.Intent != IntentError || reply.Response != userRequiredMessage || provider.calls != 0 {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestRealModeDataQuery(t *testing.T) {
	provider := &scriptedProvider{reply: "[SQL_QUERY]\n```sql\nSELECT COUNT(*) FROM submissions\nWHERE user_id = {user_id} AND status = 'correct'\n```\n\nThis counts your solved problems."}
	a := NewAdapter(provider, config.TutorModeReal)

	reply := a.Respond(context.Background(), Request{Message: "how many did I solve", Problem: sampleProblem, UserID: 9})
	if reply.Intent != IntentDataQuery || !reply.ShouldAutoExecute {
		t.Fatalf("unexpected reply %+v", reply)
	}
	want := "SELECT COUNT(*) FROM submissions\nWHERE user_id = 9 AND status = 'correct'"
	if *reply.GeneratedSQL != want {
		t.Fatalf("got %q, want %q", *reply.GeneratedSQL, want)
	}

	if len(provider.messages) != 2 || provider.messages[0].Role != llm.RoleSystem {
		t.Fatalf("expected system and user messages, got %+v", provider.messages)
	}
	user := provider.messages[1].Content
	if !strings.Contains(user, "Problem description: "+strings.Repeat("d", 300)) || strings.Contains(user, strings.Repeat("d", 301)) {
		t.Fatalf("description should be cut to 300 characters")
	}
	if !strings.Contains(provider.messages[0].Content, "chatsql_problem_1") {
		t.Fatalf("system prompt should name the problem database")
	}
}

func TestRealModeTaggedDebugAndFailedExtraction(t *testing.T) {
	provider := &scriptedProvider{reply: "[DEBUG] Your WHERE clause compares a string to a number."}
	reply := NewAdapter(provider, config.TutorModeReal).Respond(context.Background(), Request{Message: "why", UserID: 1})
	if reply.Intent != IntentDebug || strings.Contains(reply.Response, "[DEBUG]") {
		t.Fatalf("unexpected reply %+v", reply)
	}

	provider.reply = "[SQL_QUERY]\nI could not work out a statement for that."
	reply = NewAdapter(provider, config.TutorModeReal).Respond(context.Background(), Request{Message: "count", UserID: 1})
	if reply.Intent != IntentTutoring || reply.GeneratedSQL != nil || reply.ShouldAutoExecute {
		t.Fatalf("failed extraction degrades to tutoring, got %+v", reply)
	}
}

func TestRealModeUpstreamError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("rate limited")}
	reply := NewAdapter(provider, config.TutorModeReal).Respond(context.Background(), Request{Message: "hi", UserID: 1})
	if reply.Intent != IntentError || !strings.HasPrefix(reply.Response, "AI tutor encountered an error: ") {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if !strings.Contains(reply.Response, "rate limited") {
		t.Fatalf("error text should be carried, got %q", reply.Response)
	}
}

func TestExtractSQL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"no marker", "SELECT 1", "", false},
		{"plain", "[SQL_QUERY]\nselect * from submissions where user_id={user_id}", "select * from submissions where user_id=3", true},
		{"stops at blank line", "[SQL_QUERY]\nSELECT a FROM b\n\nSELECT c FROM d", "SELECT a FROM b", true},
		{"ignores text before marker", "Delete nothing please.\n[SQL_QUERY]\nSELECT 2", "SELECT 2", true},
		{"marker without sql", "[SQL_QUERY] nothing here", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractSQL(tc.in, 3)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ExtractSQL = %q, %v; want %q, %v", got, ok, tc.want, tc.ok)
			}
		})
	}
}
