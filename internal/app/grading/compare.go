package grading

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"chatsql_backend/internal/domain/model"
)

// OrderSensitive selects how rows are compared. Rows are compared as a
// multiset: a student result with the right rows in a different order is
// correct, even when the reference query has ORDER BY.
const OrderSensitive = false

// maxDiffRows bounds the sample rows reported in a Diff.
const maxDiffRows = 5

type Diff struct {
	ExpectedRowCount int      `json:"expected_row_count"`
	ActualRowCount   int      `json:"actual_row_count"`
	ExpectedColumns  []string `json:"expected_columns"`
	ActualColumns    []string `json:"actual_columns"`
	MissingRows      [][]any  `json:"missing_rows,omitempty"`
	UnexpectedRows   [][]any  `json:"unexpected_rows,omitempty"`
}

// Compare checks actual against expected. Column names are ignored; column
// count, row count and row contents must match. Truncated results are never
// graded correct.
func Compare(expected, actual *model.QueryResult, orderSensitive bool) (bool, string, *Diff) {
	diff := &Diff{
		ExpectedRowCount: expected.RowCount,
		ActualRowCount:   actual.RowCount,
		ExpectedColumns:  expected.Columns,
		ActualColumns:    actual.Columns,
	}

	if (expected.AffectedRows != nil) != (actual.AffectedRows != nil) {
		return false, "Your statement type does not match the expected query.", diff
	}
	if expected.AffectedRows != nil {
		if *expected.AffectedRows != *actual.AffectedRows {
			return false, fmt.Sprintf("Expected %d affected row(s), got %d.", *expected.AffectedRows, *actual.AffectedRows), diff
		}
		return true, correctMessage, nil
	}

	// A capped result cannot prove equality: rows past the cap were never read.
	switch {
	case expected.Truncated && actual.Truncated:
		return false, fmt.Sprintf("Both results exceed the %d-row limit, so they cannot be compared. Narrow your query.", expected.RowCount), diff
	case actual.Truncated:
		return false, fmt.Sprintf("Row count mismatch: expected %d rows, got more than %d.", expected.RowCount, actual.RowCount), diff
	case expected.Truncated:
		return false, fmt.Sprintf("Row count mismatch: expected more than %d rows, got %d.", expected.RowCount, actual.RowCount), diff
	}

	if len(expected.Columns) != len(actual.Columns) {
		return false, fmt.Sprintf("Column count mismatch: expected %d columns, got %d.", len(expected.Columns), len(actual.Columns)), diff
	}
	if expected.RowCount != actual.RowCount {
		return false, fmt.Sprintf("Row count mismatch: expected %d rows, got %d.", expected.RowCount, actual.RowCount), diff
	}

	if orderSensitive {
		for i := range expected.Rows {
			if rowKey(expected.Rows[i]) != rowKey(actual.Rows[i]) {
				diff.MissingRows = [][]any{expected.Rows[i]}
				diff.UnexpectedRows = [][]any{actual.Rows[i]}
				return false, fmt.Sprintf("Row %d does not match the expected output.", i+1), diff
			}
		}
		return true, correctMessage, nil
	}

	remaining := make(map[string]int, len(expected.Rows))
	for _, row := range expected.Rows {
		remaining[rowKey(row)]++
	}
	for _, row := range actual.Rows {
		k := rowKey(row)
		if remaining[k] > 0 {
			remaining[k]--
			continue
		}
		if len(diff.UnexpectedRows) < maxDiffRows {
			diff.UnexpectedRows = append(diff.UnexpectedRows, row)
		}
	}
	for _, row := range expected.Rows {
		k := rowKey(row)
		if remaining[k] > 0 {
			remaining[k]--
			if len(diff.MissingRows) < maxDiffRows {
				diff.MissingRows = append(diff.MissingRows, row)
			}
		}
	}
	if len(diff.MissingRows) > 0 || len(diff.UnexpectedRows) > 0 {
		return false, "Your result rows do not match the expected output.", diff
	}
	return true, correctMessage, nil
}

const correctMessage = "Correct! Your query returned the expected results."

func rowKey(row []any) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = canonical(v)
	}
	return strings.Join(parts, "\x1f")
}

// canonical renders a value so that equal values from different drivers
// compare equal: numeric text and numbers agree, floats are rounded to six
// decimals and times are compared in UTC.
func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00null"
	case []byte:
		return canonicalText(string(x))
	case string:
		return canonicalText(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return canonicalFloat(x)
	case float32:
		return canonicalFloat(float64(x))
	case bool:
		if x {
			return "1"
		}
		return "0"
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func canonicalText(s string) string {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return canonicalFloat(f)
	}
	return s
}

func canonicalFloat(f float64) string {
	return strconv.FormatFloat(math.Round(f*1e6)/1e6, 'f', -1, 64)
}
