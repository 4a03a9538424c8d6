// Package executor runs student and generated SQL against the system
// database or a per-problem database.
package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/domain/model"
	"chatsql_backend/internal/platform/database"
	"chatsql_backend/internal/platform/lock"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// DefaultMaxRows caps result sets when no limit is configured.
const DefaultMaxRows = 1000

type Options struct {
	MaxRows          int
	Timeout          time.Duration
	Mode             RoutingMode
	SandboxMutations bool
}

// Target is where a statement runs.
type Target struct {
	Database string
	System   bool
}

type Router struct {
	resolver Resolver
	locker   lock.Locker
	opts     Options
}

func NewRouter(resolver Resolver, locker lock.Locker, opts Options) *Router {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Mode == "" {
		opts.Mode = RoutingTokens
	}
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Router{resolver: resolver, locker: locker, opts: opts}
}

func (r *Router) MaxRows() int { return r.opts.MaxRows }

// Route picks the database for sqlText. An empty problem database name
// falls back to the system database.
func (r *Router) Route(problemDatabase, sqlText string) Target {
	if problemDatabase == "" || ReferencesSystemTables(sqlText, r.opts.Mode) {
		return Target{System: true}
	}
	return Target{Database: problemDatabase}
}

// Execute runs sqlText and reports the outcome. Failures are returned inside
// the result, never as an error.
func (r *Router) Execute(ctx context.Context, problemDatabase, sqlText string) *model.QueryResult {
	target := r.Route(problemDatabase, sqlText)
	return r.ExecuteOn(ctx, target, sqlText)
}

// ExecuteOn runs sqlText on an explicit target, bypassing routing.
func (r *Router) ExecuteOn(ctx context.Context, target Target, sqlText string) *model.QueryResult {
	label := target.Database
	if target.System {
		label = "system"
	}

	var (
		db  *sqlx.DB
		err error
	)
	if target.System {
		db, err = r.resolver.System(ctx)
	} else {
		db, err = r.resolver.Problem(ctx, target.Database)
	}
	if err != nil {
		common.Logger().Warn("executor: connection failed", "database", label, "error", err)
		res := failed(model.ErrorTypeConnection, connectionMessage(label, err))
		res.Database = label
		return res
	}

	if IsMultiStatement(sqlText) {
		res := failed(model.ErrorTypeExecution, "Only one SQL statement can be run at a time")
		res.Database = label
		return res
	}

	// Statements on the system database never commit. Problem databases are
	// sandboxed when configured.
	sandbox := target.System || r.opts.SandboxMutations
	if sandbox && db.DriverName() == "mysql" && IsSchemaChange(sqlText) {
		res := failed(model.ErrorTypeExecution, "Schema and privilege changes are not allowed")
		res.Database = label
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	var res *model.QueryResult
	if sandbox {
		res = r.sandboxed(ctx, db, target, sqlText)
	} else {
		res = r.run(ctx, db, sqlText)
	}
	res.Database = label
	return res
}

// runner is satisfied by both *sqlx.DB and *sqlx.Tx.
type runner interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

func (r *Router) run(ctx context.Context, q runner, sqlText string) *model.QueryResult {
	if IsRowReturning(sqlText) {
		return r.query(ctx, q, sqlText)
	}
	return r.exec(ctx, q, sqlText)
}

// sandboxed runs sqlText inside a transaction that is always rolled back.
// Statements that may modify a problem database also hold that database's
// lock, so concurrent attempts see the original data.
func (r *Router) sandboxed(ctx context.Context, db *sqlx.DB, target Target, sqlText string) *model.QueryResult {
	if !target.System && MayModify(sqlText) {
		release, err := r.locker.Acquire(ctx, "db:"+target.Database)
		if err != nil {
			return failed(model.ErrorTypeTimeout, "Database is busy, please retry")
		}
		defer release()
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return r.executionFailure(ctx, err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			common.Logger().Warn("executor: rollback failed", "database", target.Database, "system", target.System, "error", err)
		}
	}()
	return r.run(ctx, tx, sqlText)
}

func (r *Router) query(ctx context.Context, q runner, sqlText string) *model.QueryResult {
	start := time.Now()
	rows, err := q.QueryxContext(ctx, sqlText)
	if err != nil {
		return r.executionFailure(ctx, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return r.executionFailure(ctx, err)
	}

	res := &model.QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if len(res.Rows) == r.opts.MaxRows {
			res.Truncated = true
			break
		}
		values, err := rows.SliceScan()
		if err != nil {
			return r.executionFailure(ctx, err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return r.executionFailure(ctx, err)
	}

	res.Success = true
	res.RowCount = len(res.Rows)
	res.ExecutionTime = roundSeconds(time.Since(start))
	return res
}

func (r *Router) exec(ctx context.Context, q runner, sqlText string) *model.QueryResult {
	start := time.Now()
	result, err := q.ExecContext(ctx, sqlText)
	if err != nil {
		return r.executionFailure(ctx, err)
	}
	affected, _ := result.RowsAffected()

	return &model.QueryResult{
		Success:       true,
		Columns:       []string{},
		Rows:          [][]any{},
		AffectedRows:  &affected,
		Message:       fmt.Sprintf("%d row(s) affected", affected),
		ExecutionTime: roundSeconds(time.Since(start)),
	}
}

func (r *Router) executionFailure(ctx context.Context, err error) *model.QueryResult {
	if isTimeout(ctx, err) {
		return failed(model.ErrorTypeTimeout, fmt.Sprintf("Query exceeded the %s time limit", r.opts.Timeout))
	}
	return failed(model.ErrorTypeExecution, err.Error())
}

func failed(kind model.ErrorType, msg string) *model.QueryResult {
	return &model.QueryResult{
		Success:   false,
		Columns:   []string{},
		Rows:      [][]any{},
		Error:     &msg,
		ErrorType: kind,
	}
}

func connectionMessage(label string, err error) string {
	if database.IsUnknownDatabase(err) {
		return fmt.Sprintf("Database '%s' does not exist", label)
	}
	return fmt.Sprintf("Could not connect to database '%s'", label)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "57014" { // query_canceled
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 3024 { // max_execution_time exceeded
		return true
	}
	return false
}

// roundSeconds keeps millisecond precision.
func roundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
