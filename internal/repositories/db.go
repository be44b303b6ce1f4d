package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	_ "github.com/lib/pq"
	"modernc.org/sqlite"
)

// sqliteLowerFunc folds the full Unicode range; the built-in LOWER only folds ASCII.
const sqliteLowerFunc = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			default:
				return v, nil
			}
		})
}

// Dialect captures the differences between the supported SQL backends.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Rebind rewrites ? placeholders into the dialect's bind syntax.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Lower names the SQL function used for case-insensitive search.
func (d Dialect) Lower() string {
	if d == DialectSQLite {
		return sqliteLowerFunc
	}
	return "LOWER"
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database url")
	}

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		db, err = sql.Open("postgres", dsn)
	case DialectSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	if err := Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ensureDir(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Migrate creates the tasks table and its indexes when missing.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	var stmts []string
	switch dialect {
	case DialectPostgres:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id          BIGSERIAL PRIMARY KEY,
				title       VARCHAR(80) NOT NULL,
				description VARCHAR(250) NOT NULL DEFAULT '',
				status      VARCHAR(16) NOT NULL,
				priority    VARCHAR(16) NOT NULL,
				due_date    DATE,
				created_at  TIMESTAMPTZ NOT NULL,
				updated_at  TIMESTAMPTZ NOT NULL
			);`,
		}
	case DialectSQLite:
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS tasks (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				status      TEXT NOT NULL,
				priority    TEXT NOT NULL,
				due_date    TEXT,
				created_at  DATETIME NOT NULL,
				updated_at  DATETIME NOT NULL
			);`,
		}
	default:
		return fmt.Errorf("unsupported database driver %q", dialect)
	}
	stmts = append(stmts,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);`,
	)

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	log.Printf("[db][migrate][ok] dialect=%s", dialect)
	return nil
}

// nullDate scans DATE columns from either backend: postgres yields time.Time,
// sqlite yields the stored YYYY-MM-DD text.
type nullDate struct {
	Date  civil.Date
	Valid bool
}

func (n *nullDate) Scan(src any) error {
	n.Valid = false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		n.Date = civil.DateOf(v)
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("unsupported due_date type %T", src)
	}
	n.Valid = true
	return nil
}

func (n *nullDate) parse(s string) error {
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return fmt.Errorf("parse due_date %q: %w", s, err)
	}
	n.Date = d
	n.Valid = true
	return nil
}
