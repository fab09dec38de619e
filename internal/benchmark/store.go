package benchmark

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/logging"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store is the SQLite-backed company table.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string, logger logging.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("benchmark: empty database path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	l := logging.OrNop(logger).With(logging.Component("benchmark-store"))
	l.Info("benchmark store opened", logging.Field{Key: "path", Value: path})
	return &Store{db: db, logger: l}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Upsert inserts c or replaces the row with the same brand key, including
// its aliases.
func (s *Store) Upsert(ctx context.Context, c Company) error {
	key := Key(c.Brand)
	if key == "" {
		return errors.New("benchmark: company has no brand")
	}
	if c.RiskLevel == "" {
		c.RiskLevel = assessor.RiskUnknown
	}
	themes, err := marshalThemes(c.Themes)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO companies (brand, brand_key, product_categories, countries, risk_level, sources,
			reason, ktc_score, ktc_rank, benchmark_year, themes, source_url, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(brand_key) DO UPDATE SET
			brand = excluded.brand,
			product_categories = excluded.product_categories,
			countries = excluded.countries,
			risk_level = excluded.risk_level,
			sources = excluded.sources,
			reason = excluded.reason,
			ktc_score = excluded.ktc_score,
			ktc_rank = excluded.ktc_rank,
			benchmark_year = excluded.benchmark_year,
			themes = excluded.themes,
			source_url = excluded.source_url,
			last_updated = excluded.last_updated
		RETURNING id`,
		strings.TrimSpace(c.Brand), key, jsonList(c.ProductCategories), jsonList(c.Countries),
		string(c.RiskLevel), jsonList(c.Sources), c.Reason, c.KTCScore, c.KTCRank, c.BenchmarkYear,
		themes, c.SourceURL, c.LastUpdated,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("upsert company %q: %w", c.Brand, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM company_aliases WHERE company_id = ?`, id); err != nil {
		return fmt.Errorf("clear aliases: %w", err)
	}
	for _, alias := range c.Aliases {
		ak := Key(alias)
		if ak == "" || ak == key {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO company_aliases (company_id, alias, alias_key) VALUES (?, ?, ?)`,
			id, strings.TrimSpace(alias), ak); err != nil {
			return fmt.Errorf("insert alias %q: %w", alias, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Lookup matches name against brands first, then aliases, ignoring case.
func (s *Store) Lookup(ctx context.Context, name string) (*Company, error) {
	key := Key(name)
	if key == "" {
		return nil, ErrNotFound
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.brand, c.product_categories, c.countries, c.risk_level, c.sources, c.reason,
			c.ktc_score, c.ktc_rank, c.benchmark_year, c.themes, c.source_url, c.last_updated, 0 AS prio
		FROM companies c
		WHERE c.brand_key = ?
		UNION ALL
		SELECT c.id, c.brand, c.product_categories, c.countries, c.risk_level, c.sources, c.reason,
			c.ktc_score, c.ktc_rank, c.benchmark_year, c.themes, c.source_url, c.last_updated, 1 AS prio
		FROM companies c JOIN company_aliases a ON a.company_id = c.id
		WHERE a.alias_key = ?
		ORDER BY prio, id
		LIMIT 1`, key, key)

	var (
		id, prio                    int64
		c                           Company
		categories, countries, srcs string
		level                       string
		score                       sql.NullFloat64
		rank, year                  sql.NullInt64
		themes                      sql.NullString
	)
	err := row.Scan(&id, &c.Brand, &categories, &countries, &level, &srcs, &c.Reason,
		&score, &rank, &year, &themes, &c.SourceURL, &c.LastUpdated, &prio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}

	c.RiskLevel = assessor.RiskLevel(level)
	c.ProductCategories = parseList(categories)
	c.Countries = parseList(countries)
	c.Sources = parseList(srcs)
	if score.Valid {
		c.KTCScore = &score.Float64
	}
	if rank.Valid {
		r := int(rank.Int64)
		c.KTCRank = &r
	}
	if year.Valid {
		y := int(year.Int64)
		c.BenchmarkYear = &y
	}
	if themes.Valid && themes.String != "" {
		var th assessor.Themes
		if err := json.Unmarshal([]byte(themes.String), &th); err == nil {
			c.Themes = &th
		}
	}

	aliases, err := s.aliases(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Aliases = aliases
	return &c, nil
}

func (s *Store) aliases(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT alias FROM company_aliases WHERE company_id = ? ORDER BY alias`, id)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Count returns the number of companies.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func jsonList(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(vals)
	return string(b)
}

func parseList(s string) []string {
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil || len(out) == 0 {
		return nil
	}
	return out
}

func marshalThemes(t *assessor.Themes) (any, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode themes: %w", err)
	}
	return string(b), nil
}
