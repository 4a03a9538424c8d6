package grading

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"chatsql_backend/internal/app/executor"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/platform/config"
	"chatsql_backend/internal/platform/database"
	"chatsql_backend/internal/platform/lock"

	_ "github.com/mattn/go-sqlite3"
)

type fakeExecutor struct {
	results map[string]*model.QueryResult
	calls   []string
}

func (f *fakeExecutor) Execute(_ context.Context, dbName, sqlText string) *model.QueryResult {
	f.calls = append(f.calls, dbName+"|"+sqlText)
	if res, ok := f.results[sqlText]; ok {
		return res
	}
	msg := "no such table"
	return &model.QueryResult{Error: &msg, ErrorType: model.ErrorTypeExecution}
}

func ok(columns []string, rows ...[]any) *model.QueryResult {
	if rows == nil {
		rows = [][]any{}
	}
	return &model.QueryResult{Success: true, Columns: columns, Rows: rows, RowCount: len(rows)}
}

func TestOrderInsensitiveIsTheDefault(t *testing.T) {
	if OrderSensitive {
		t.Fatalf("grading is expected to ignore row order")
	}
	if NewEngine(nil).orderSensitive {
		t.Fatalf("engine should use the package default")
	}
}

func TestScenarioOrderInsensitiveGrading(t *testing.T) {
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "probdb_1.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Exec(`CREATE TABLE t (id INTEGER)`)
	db.Exec(`INSERT INTO t (id) VALUES (2), (3), (1)`)
	db.Close()

	pools := executor.NewPools(
		database.Endpoint{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "system.db")},
		database.Endpoint{Driver: config.DriverSQLite, SQLiteDir: dir},
	)
	defer pools.Close()
	router := executor.NewRouter(pools, lock.NewLocal(), executor.Options{})

	problem := &model.Problem{ID: 1, DatabaseName: "probdb_1", ExpectedQuery: "SELECT id FROM t ORDER BY id"}
	verdict := NewEngine(router).Grade(context.Background(), problem, "SELECT id FROM t")
	if !verdict.Correct {
		t.Fatalf("expected correct under order-insensitive comparison: %s %+v", verdict.Message, verdict.Diff)
	}
	if verdict.Diff != nil {
		t.Fatalf("correct verdicts carry no diff")
	}

	reference := router.Execute(context.Background(), "probdb_1", problem.ExpectedQuery)
	student := router.Execute(context.Background(), "probdb_1", "SELECT id FROM t")
	if correct, _, _ := Compare(reference, student, true); correct {
		t.Fatalf("expected incorrect under order-sensitive comparison")
	}
}

func TestCompareMismatches(t *testing.T) {
	cols := []string{"id"}
	cases := []struct {
		name     string
		expected *model.QueryResult
		actual   *model.QueryResult
		wantMsg  string
	}{
		{"row count", ok(cols, []any{1}, []any{2}), ok(cols, []any{1}), "Row count mismatch"},
		{"column count", ok(cols, []any{1}), ok([]string{"id", "x"}, []any{1, 2}), "Column count mismatch"},
		{"contents", ok(cols, []any{1}, []any{2}), ok(cols, []any{1}, []any{3}), "do not match"},
		{"duplicates matter", ok(cols, []any{1}, []any{1}), ok(cols, []any{1}, []any{2}), "do not match"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			correct, msg, diff := Compare(tc.expected, tc.actual, false)
			if correct {
				t.Fatalf("expected mismatch")
			}
			if !strings.Contains(msg, tc.wantMsg) {
				t.Fatalf("message %q does not mention %q", msg, tc.wantMsg)
			}
			if diff == nil || diff.ExpectedRowCount != tc.expected.RowCount {
				t.Fatalf("expected diff with counts, got %+v", diff)
			}
		})
	}

	_, _, diff := Compare(ok(cols, []any{1}, []any{2}), ok(cols, []any{1}, []any{3}), false)
	if len(diff.MissingRows) != 1 || diff.MissingRows[0][0] != 2 || diff.UnexpectedRows[0][0] != 3 {
		t.Fatalf("unexpected diff rows %+v", diff)
	}
}

func TestCompareCoercesValues(t *testing.T) {
	expected := ok([]string{"n", "avg", "name", "missing"}, []any{int64(3), 2.5, "ann", nil})
	actual := ok([]string{"count", "average", "who", "m"}, []any{"3", []byte("2.50"), []byte("ann"), nil})
	if correct, msg, _ := Compare(expected, actual, false); !correct {
		t.Fatalf("expected coerced values to match: %s", msg)
	}

	nullVsText := ok([]string{"x"}, []any{"null"})
	if correct, _, _ := Compare(ok([]string{"x"}, []any{nil}), nullVsText, false); correct {
		t.Fatalf("NULL must not equal the text null")
	}
}

func TestCompareMutations(t *testing.T) {
	two, three := int64(2), int64(3)
	expected := &model.QueryResult{Success: true, AffectedRows: &two}
	if correct, _, _ := Compare(expected, &model.QueryResult{Success: true, AffectedRows: &two}, false); !correct {
		t.Fatalf("equal affected rows should match")
	}
	if correct, _, _ := Compare(expected, &model.QueryResult{Success: true, AffectedRows: &three}, false); correct {
		t.Fatalf("different affected rows should not match")
	}
	if correct, msg, _ := Compare(expected, ok([]string{"id"}), false); correct || !strings.Contains(msg, "statement type") {
		t.Fatalf("select vs mutation should not match: %s", msg)
	}
}

func TestGradeStudentFailure(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*model.QueryResult{"SELECT 1": ok([]string{"1"}, []any{1})}}
	problem := &model.Problem{ID: 1, DatabaseName: "probdb_1", ExpectedQuery: "SELECT 1"}

	verdict := NewEngine(exec).Grade(context.Background(), problem, "SELEC 1")
	if verdict.Correct {
		t.Fatalf("failed query cannot be correct")
	}
	if verdict.StudentResult.Success || verdict.StudentResult.ErrorMessage() == "" {
		t.Fatalf("student error should be visible in the result")
	}
	if !strings.HasPrefix(verdict.Message, "Your query failed") {
		t.Fatalf("unexpected message %q", verdict.Message)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("reference should not run after a student failure, calls %v", exec.calls)
	}
}

func TestGradeReferenceFailure(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*model.QueryResult{"SELECT 1": ok([]string{"1"}, []any{1})}}
	problem := &model.Problem{ID: 1, DatabaseName: "probdb_1", ExpectedQuery: "SELECT broken"}

	verdict := NewEngine(exec).Grade(context.Background(), problem, "SELECT 1")
	if verdict.Correct || !verdict.StudentResult.Success {
		t.Fatalf("reference failure should yield an incorrect verdict with the student's result")
	}
	if exec.calls[0] != "probdb_1|SELECT 1" || exec.calls[1] != "probdb_1|SELECT broken" {
		t.Fatalf("student query must run before the reference, calls %v", exec.calls)
	}
}

func TestGradeFallbackComparesRowCounts(t *testing.T) {
	exec := &fakeExecutor{results: map[string]*model.QueryResult{
		"SELECT a FROM x": ok([]string{"a"}, []any{1}, []any{2}),
		"SELECT b FROM x": ok([]string{"b"}, []any{9}, []any{8}),
		"SELECT c FROM x": ok([]string{"c"}, []any{1}),
	}}
	legacy := &model.Exercise{ID: 4, ExpectedQuery: "SELECT a FROM x"}

	verdict := NewEngine(exec).Grade(context.Background(), legacy, "SELECT b FROM x")
	if !verdict.Correct || !verdict.Fallback || verdict.Message != fallbackMessage {
		t.Fatalf("fallback compares only row counts: %+v", verdict)
	}
	if exec.calls[0] != "|SELECT b FROM x" {
		t.Fatalf("fallback should run with no database name, calls %v", exec.calls)
	}

	verdict = NewEngine(exec).Grade(context.Background(), legacy, "SELECT c FROM x")
	if verdict.Correct {
		t.Fatalf("different row counts are incorrect in fallback mode")
	}
}

func TestTruncatedResultsAreNotCertified(t *testing.T) {
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "bigdb.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Exec(`CREATE TABLE n (v INTEGER)`)
	for i := 0; i < 25; i++ {
		db.Exec(fmt.Sprintf(`INSERT INTO n (v) VALUES (%d)`, i))
	}
	db.Close()

	pools := executor.NewPools(
		database.Endpoint{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "system.db")},
		database.Endpoint{Driver: config.DriverSQLite, SQLiteDir: dir},
	)
	defer pools.Close()
	router := executor.NewRouter(pools, lock.NewLocal(), executor.Options{MaxRows: 10})
	engine := NewEngine(router)
	problem := &model.Problem{ID: 1, DatabaseName: "bigdb", ExpectedQuery: "SELECT v FROM n"}

	for _, query := range []string{"SELECT v FROM n WHERE v < 12", "SELECT v FROM n"} {
		verdict := engine.Grade(context.Background(), problem, query)
		if verdict.Correct {
			t.Fatalf("%q: a result cut at the row limit must not be graded correct", query)
		}
		if !verdict.StudentResult.Truncated || !strings.Contains(verdict.Message, "10") {
			t.Fatalf("%q: unexpected verdict %q", query, verdict.Message)
		}
	}

	if correct, msg, _ := Compare(ok([]string{"v"}, []any{1}), &model.QueryResult{
		Success: true, Columns: []string{"v"}, Rows: [][]any{{1}}, RowCount: 1, Truncated: true,
	}, false); correct || !strings.Contains(msg, "more than 1") {
		t.Fatalf("truncated student result should be a row count mismatch: %s", msg)
	}

	exec := &fakeExecutor{results: map[string]*model.QueryResult{
		"SELECT a FROM x": {Success: true, Columns: []string{"a"}, Rows: [][]any{{1}}, RowCount: 1, Truncated: true},
	}}
	legacy := &model.Exercise{ID: 4, ExpectedQuery: "SELECT a FROM x"}
	if verdict := NewEngine(exec).Grade(context.Background(), legacy, "SELECT a FROM x"); verdict.Correct {
		t.Fatalf("fallback grading must not certify truncated results")
	}
}
