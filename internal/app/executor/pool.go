package executor

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"chatsql_backend/internal/common"
	"chatsql_backend/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

var validDatabaseName = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// Resolver hands out connections for the system database and for problem
// databases looked up by name.
type Resolver interface {
	System(ctx context.Context) (*sqlx.DB, error)
	Problem(ctx context.Context, name string) (*sqlx.DB, error)
}

// Pools opens one pool per database on first use and keeps it for the life
// of the process.
type Pools struct {
	system  database.Endpoint
	problem database.Endpoint
	open    func(ctx context.Context, e database.Endpoint) (*sqlx.DB, error)

	mu  sync.Mutex
	dbs map[string]*sqlx.DB
}

// NewPools takes the system endpoint used for routed statements and a template
// whose Name is replaced by each problem database name.
func NewPools(system, problemTemplate database.Endpoint) *Pools {
	return &Pools{
		system:  system,
		problem: problemTemplate,
		open:    database.Open,
		dbs:     make(map[string]*sqlx.DB),
	}
}

func (p *Pools) System(ctx context.Context) (*sqlx.DB, error) {
	return p.get(ctx, "system:"+p.system.Name, p.system)
}

func (p *Pools) Problem(ctx context.Context, name string) (*sqlx.DB, error) {
	if !validDatabaseName.MatchString(name) {
		return nil, fmt.Errorf("%w: invalid database name %q", database.ErrUnknownDatabase, name)
	}
	e := p.problem
	e.Name = name
	return p.get(ctx, "problem:"+name, e)
}

func (p *Pools) get(ctx context.Context, key string, e database.Endpoint) (*sqlx.DB, error) {
	p.mu.Lock()
	db, ok := p.dbs[key]
	p.mu.Unlock()
	if ok {
		return db, nil
	}

	opened, err := p.open(ctx, e)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.dbs[key]; ok {
		opened.Close()
		return existing, nil
	}
	p.dbs[key] = opened
	common.Logger().Info("executor: opened database pool", "database", e.Name, "driver", e.DriverName())
	return opened, nil
}

func (p *Pools) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var firstErr error
	for key, db := range p.dbs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.dbs, key)
	}
	return firstErr
}
