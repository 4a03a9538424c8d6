package executor

import "testing"

func TestIsRowReturning(t *testing.T) {
	cases := map[string]bool{
		"SELECT 1":                             true,
		"  select * from t":                    true,
		"-- note\nSELECT 1":                    true,
		"/* hi */ (SELECT 1) UNION (SELECT 2)": true,
		"WITH x AS (SELECT 1) SELECT * FROM x": true,
		"SHOW TABLES":                          true,
		"UPDATE t SET a = 1":                   false,
		"INSERT INTO t VALUES (1)":             false,
		"DELETE FROM t":                        false,
		"SELECTED":                             false,
		"":                                     false,
	}
	for stmt, want := range cases {
		if got := IsRowReturning(stmt); got != want {
			t.Errorf("IsRowReturning(%q) = %v, want %v", stmt, got, want)
		}
	}
}

func TestReferencesSystemTables(t *testing.T) {
	cases := []struct {
		stmt      string
		substring bool
		tokens    bool
	}{
		{"SELECT * FROM submissions", true, true},
		{"select count(*) from chatsql_system.PROBLEMS", true, true},
		{"SELECT * FROM `exercises`", true, true},
		{"SELECT 'problems' AS label", true, false},
		{"SELECT 'it''s problems' FROM t", true, false},
		{"SELECT id FROM t -- join submissions later", true, false},
		{"SELECT id /* problems */ FROM t", true, false},
		{"SELECT * FROM my_problems", true, false},
		{"SELECT * FROM customers", false, false},
	}
	for _, tc := range cases {
		if got := ReferencesSystemTables(tc.stmt, RoutingSubstring); got != tc.substring {
			t.Errorf("substring(%q) = %v, want %v", tc.stmt, got, tc.substring)
		}
		if got := ReferencesSystemTables(tc.stmt, RoutingTokens); got != tc.tokens {
			t.Errorf("tokens(%q) = %v, want %v", tc.stmt, got, tc.tokens)
		}
	}
}

func TestMayModify(t *testing.T) {
	cases := map[string]bool{
		"SELECT * FROM t":                                       false,
		"SELECT 'delete' FROM t":                                false,
		"SELECT updated_at FROM t":                              false,
		"WITH x AS (SELECT 1) DELETE FROM t":                    true,
		"WITH d AS (DELETE FROM t RETURNING *) SELECT * FROM d": true,
		"UPDATE t SET a = 1":                                    true,
		"CREATE TABLE x (a INT)":                                true,
	}
	for stmt, want := range cases {
		if got := MayModify(stmt); got != want {
			t.Errorf("MayModify(%q) = %v, want %v", stmt, got, want)
		}
	}
}

func TestIsMultiStatement(t *testing.T) {
	cases := map[string]bool{
		"SELECT 1":                    false,
		"SELECT 1;":                   false,
		"SELECT 1 ; \n ;":             false,
		"SELECT ';' FROM t":           false,
		"SELECT 1 -- a; b":            false,
		"SELECT 1 /* ; */ FROM t":     false,
		"SELECT 1; DELETE FROM t":     true,
		"UPDATE t SET a = 1;SELECT 1": true,
	}
	for stmt, want := range cases {
		if got := IsMultiStatement(stmt); got != want {
			t.Errorf("IsMultiStatement(%q) = %v, want %v", stmt, got, want)
		}
	}
}

func TestIsSchemaChange(t *testing.T) {
	cases := map[string]bool{
		"DROP TABLE t":              true,
		"  create index i on t (a)": true,
		"/* x */ TRUNCATE t":        true,
		"GRANT ALL ON *.* TO u":     true,
		"SELECT created FROM t":     false,
		"UPDATE t SET dropped = 1":  false,
	}
	for stmt, want := range cases {
		if got := IsSchemaChange(stmt); got != want {
			t.Errorf("IsSchemaChange(%q) = %v, want %v", stmt, got, want)
		}
	}
}
