package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"rehabcenter/internal/core"
)

// Dialect hides the SQL differences between supported engines. Queries are
// written with `?` placeholders and rebound per dialect.
type Dialect interface {
	// Name is the migration directory and backend name.
	Name() string
	// DriverName is the database/sql driver to open.
	DriverName() string
	// Rebind rewrites `?` placeholders into the dialect's form.
	Rebind(query string) string
	// PeriodClause matches a date expression against a calendar month.
	PeriodClause(expr string, p core.Period) (string, []any)
	// Returning reports whether INSERT ... RETURNING id is supported.
	Returning() bool
	// NormalizeDSN adapts a configured DSN to what the driver expects.
	NormalizeDSN(dsn string) (string, error)
}

// ParseDialect returns the dialect for a backend name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlite":
		return SQLite{}, nil
	case "postgres", "postgresql":
		return Postgres{}, nil
	case "mysql":
		return MySQL{}, nil
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", name)
	}
}

// SQLite stores dates as YYYY-MM-DD text and buckets with strftime.
type SQLite struct{}

func (SQLite) Name() string               { return "sqlite" }
func (SQLite) DriverName() string         { return "sqlite" }
func (SQLite) Rebind(query string) string { return query }
func (SQLite) Returning() bool            { return false }

func (SQLite) PeriodClause(expr string, p core.Period) (string, []any) {
	clause := fmt.Sprintf("strftime('%%Y', %s) = ? AND strftime('%%m', %s) = ?", expr, expr)
	return clause, []any{fmt.Sprintf("%04d", p.Year), fmt.Sprintf("%02d", p.Month)}
}

func (SQLite) NormalizeDSN(dsn string) (string, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	if dsn == "" {
		return "", fmt.Errorf("empty sqlite path")
	}
	if strings.Contains(dsn, "_pragma=") {
		return dsn, nil
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)", nil
}

// Postgres uses native DATE columns and $n placeholders.
type Postgres struct{}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) DriverName() string { return "pgx" }
func (Postgres) Returning() bool    { return true }

func (Postgres) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (Postgres) PeriodClause(expr string, p core.Period) (string, []any) {
	clause := fmt.Sprintf("EXTRACT(YEAR FROM %s) = ? AND EXTRACT(MONTH FROM %s) = ?", expr, expr)
	return clause, []any{p.Year, p.Month}
}

func (Postgres) NormalizeDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("empty postgres DSN")
	}
	return strings.Replace(dsn, "postgresql+psycopg://", "postgres://", 1), nil
}

// MySQL uses DATE columns and YEAR()/MONTH().
type MySQL struct{}

func (MySQL) Name() string               { return "mysql" }
func (MySQL) DriverName() string         { return "mysql" }
func (MySQL) Rebind(query string) string { return query }
func (MySQL) Returning() bool            { return false }

func (MySQL) PeriodClause(expr string, p core.Period) (string, []any) {
	clause := fmt.Sprintf("YEAR(%s) = ? AND MONTH(%s) = ?", expr, expr)
	return clause, []any{p.Year, p.Month}
}

// NormalizeDSN enables the options the repository relies on: parsed DATE
// values, multi-statement migrations and matched-row counts on UPDATE.
func (MySQL) NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(strings.TrimPrefix(dsn, "mysql://"))
	if err != nil {
		return "", fmt.Errorf("parse mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// assetDateExpr is the SQL counterpart of core.AssetRehab.EffectiveDate.
func assetDateExpr(field core.DateField) string {
	if field == core.DateFieldSecondary {
		return "supply_date"
	}
	return "COALESCE(rehab_date, supply_date)"
}
