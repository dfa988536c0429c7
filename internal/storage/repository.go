package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"rehabcenter/internal/core"
)

// SQLRepository implements Store on top of database/sql for every dialect.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLRepository opens the database, verifies connectivity and applies
// migrations. For sqlite, dsn is a file path whose directory is created.
func NewSQLRepository(ctx context.Context, d Dialect, dsn string) (*SQLRepository, error) {
	dsn, err := d.NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}

	if _, ok := d.(SQLite); ok {
		path, _, _ := strings.Cut(dsn, "?")
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.Name(), err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: d}, nil
}

// Dialect returns the SQL dialect in use.
func (r *SQLRepository) Dialect() Dialect { return r.dialect }

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if r.dialect.Returning() {
		var id int64
		if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLRepository) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func queryAll[T any](ctx context.Context, r *SQLRepository, scan func(rowScanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func queryOne[T any](ctx context.Context, r *SQLRepository, scan func(rowScanner) (T, error), query string, args ...any) (T, error) {
	v, err := scan(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return v, core.ErrNotFound
	}
	return v, err
}

// optText stores empty strings as NULL.
func optText(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// textCol scans a nullable text column into a string.
type textCol struct{ dst *string }

func (c textCol) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*c.dst = ns.String
	return nil
}

// boolCol scans a nullable boolean column into a *bool.
type boolCol struct{ dst **bool }

func (c boolCol) Scan(src any) error {
	var nb sql.NullBool
	if err := nb.Scan(src); err != nil {
		return err
	}
	if !nb.Valid {
		*c.dst = nil
		return nil
	}
	v := nb.Bool
	*c.dst = &v
	return nil
}

func optBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
