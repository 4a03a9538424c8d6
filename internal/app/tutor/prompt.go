package tutor

import (
	"fmt"
	"strings"
)

const maxPromptSubmissions = 5

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString(`You are an SQL tutor for students. Decide what the student wants:

1. DATA_QUERY: the student asks about their own progress or submissions.
2. TUTORING: the student needs an SQL concept explained.
3. DEBUG: the student needs help fixing a query.

Keep answers to two or three sentences unless asked for more.

For DATA_QUERY, put the marker [SQL_QUERY] on its own line, then one executable
statement, then a blank line and a one-sentence explanation. Always filter by
user_id = {user_id}.
For DEBUG, start the answer with [DEBUG].
For TUTORING and DEBUG, do not generate SQL to run; one short example is fine.
`)

	if p := req.Problem; p != nil {
		desc := p.SourceDescription()
		if desc == "" {
			desc = "N/A"
		}
		fmt.Fprintf(&b, "\nCurrent problem:\n- ID: %d\n- Title: %s\n- Description: %s\n- Difficulty: %s\n",
			p.SourceID(), p.SourceTitle(), truncate(desc, 200), p.SourceDifficulty())
	}

	if len(req.Submissions) == 0 {
		b.WriteString("\nSubmission history: no submissions yet for this problem.\n")
	} else {
		recent := req.Submissions
		if len(recent) > maxPromptSubmissions {
			recent = recent[len(recent)-maxPromptSubmissions:]
		}
		b.WriteString("\nRecent submissions for this problem:\n")
		for i, s := range recent {
			q := truncate(s.Query, 100)
			if q != s.Query {
				q += "..."
			}
			fmt.Fprintf(&b, "%d. status=%s time=%s\n   %s\n", i+1, s.Status, s.CreatedAt, q)
		}
		if len(req.Submissions) > len(recent) {
			fmt.Fprintf(&b, "(showing %d of %d submissions)\n", len(recent), len(req.Submissions))
		}
	}

	dbName := "N/A"
	if req.Problem != nil && req.Problem.TargetDatabase() != "" {
		dbName = req.Problem.TargetDatabase()
	}
	fmt.Fprintf(&b, `
System tables (queries naming them run against the system database):
- submissions(id, user_id, exercise_id, query, status, execution_time, created_at)
  status is one of 'correct', 'incorrect', 'pending'
- problems(id, title, description, difficulty, tag, database_name)
- problem_tables(problem_id, table_name, table_schema)
Problem tables live in a per-problem database. Current problem database: %s
`, dbName)
	return b.String()
}

func userPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User message: %s", req.Message)
	if p := req.Problem; p != nil {
		fmt.Fprintf(&b, "\nCurrent exercise: %s\nDifficulty: %s", p.SourceTitle(), p.SourceDifficulty())
		if d := p.SourceDescription(); d != "" {
			fmt.Fprintf(&b, "\nProblem description: %s", truncate(d, 300))
		}
	}
	if req.UserQuery != "" {
		fmt.Fprintf(&b, "\nStudent's SQL attempt: %s", req.UserQuery)
	}
	if req.Error != "" {
		fmt.Fprintf(&b, "\nExecution error: %s", req.Error)
	}
	if n := len(req.Submissions); n > 0 {
		fmt.Fprintf(&b, "\n\nUser has %d previous submission(s) for this problem.", n)
	}
	return b.String()
}
