package model

// ErrorType separates failures to reach a database from failures of the
// statement itself.
type ErrorType string

const (
	ErrorTypeConnection ErrorType = "connection"
	ErrorTypeExecution  ErrorType = "execution"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// QueryResult is the outcome of one statement. For row-returning statements
// RowCount == len(Rows); mutating statements set AffectedRows instead.
type QueryResult struct {
	Success       bool      `json:"success"`
	Columns       []string  `json:"columns"`
	Rows          [][]any   `json:"rows"`
	RowCount      int       `json:"row_count"`
	ExecutionTime float64   `json:"execution_time"`
	Error         *string   `json:"error"`
	ErrorType     ErrorType `json:"error_type,omitempty"`
	AffectedRows  *int64    `json:"affected_rows,omitempty"`
	Message       string    `json:"message,omitempty"`
	Truncated     bool      `json:"truncated"`
	Database      string    `json:"database,omitempty"`
}

func (r *QueryResult) ErrorMessage() string {
	if r == nil || r.Error == nil {
		return ""
	}
	return *r.Error
}
