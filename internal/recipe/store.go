package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store provides the unscaled baseline recipes. Scaling is always applied to
// what a Store returns, never to a previously scaled copy.
type Store interface {
	GetRecipeBySlug(ctx context.Context, slug string) (*Recipe, error)
	ListRecipes(ctx context.Context, category string) ([]*Recipe, error)
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// PoolOptions tunes the database connection pool. Zero values keep the
// database/sql defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

const recipeColumns = "slug, title, description, category, servings, ingredients, instructions, notes"

// recipeRow mirrors the recipes table; JSONB columns are decoded after scanning.
type recipeRow struct {
	Slug         string `db:"slug"`
	Title        string `db:"title"`
	Description  string `db:"description"`
	Category     string `db:"category"`
	Servings     int    `db:"servings"`
	Ingredients  []byte `db:"ingredients"`
	Instructions []byte `db:"instructions"`
	Notes        string `db:"notes"`
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(dataSourceName string, pool PoolOptions) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	// Create recipes table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		servings INTEGER NOT NULL DEFAULT 0,
		ingredients JSONB NOT NULL DEFAULT '[]',
		instructions JSONB NOT NULL DEFAULT '[]',
		notes TEXT NOT NULL DEFAULT ''
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// GetRecipeBySlug retrieves a recipe by its slug.
func (s *PostgresStore) GetRecipeBySlug(ctx context.Context, slug string) (*Recipe, error) {
	var row recipeRow
	err := s.db.GetContext(ctx, &row, "SELECT "+recipeColumns+" FROM recipes WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by slug: %w", err)
	}
	return row.toRecipe()
}

// ListRecipes retrieves recipes ordered by title, optionally filtered by category.
func (s *PostgresStore) ListRecipes(ctx context.Context, category string) ([]*Recipe, error) {
	var args []interface{}
	query := "SELECT " + recipeColumns + " FROM recipes"
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY title"

	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	recipes := make([]*Recipe, 0, len(rows))
	for _, row := range rows {
		r, err := row.toRecipe()
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func (row recipeRow) toRecipe() (*Recipe, error) {
	r := &Recipe{
		Slug:        row.Slug,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		Servings:    row.Servings,
		Notes:       row.Notes,
	}
	if err := json.Unmarshal(row.Ingredients, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients for %q: %w", row.Slug, err)
	}
	if err := json.Unmarshal(row.Instructions, &r.Instructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instructions for %q: %w", row.Slug, err)
	}
	return r, nil
}
