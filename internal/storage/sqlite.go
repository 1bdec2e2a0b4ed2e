package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/ryori/internal/models"
	"github.com/hyperjump/ryori/internal/vector"
)

// SQLiteStore keeps recipes in SQLite using the same tables as the PostgreSQL
// deployment. It is the default snapshot source and the target of import.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		recipe_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_name ON recipes(name);

	CREATE TABLE IF NOT EXISTS nutrition_facts (
		recipe_id TEXT PRIMARY KEY,
		calories REAL,
		total_fat REAL,
		protein REAL,
		carbs REAL,
		FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS ingredients (
		recipe_id TEXT PRIMARY KEY,
		ingredient_text TEXT,
		FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS directions (
		recipe_id TEXT PRIMARY KEY,
		instruction_text TEXT,
		FOREIGN KEY (recipe_id) REFERENCES recipes(recipe_id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS recipe_embeddings (
		name TEXT PRIMARY KEY,
		embedding TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveRecipe inserts item and its embedding in one transaction and returns the new recipe id.
// An existing embedding for the same name is replaced.
func (s *SQLiteStore) SaveRecipe(ctx context.Context, item models.Item, embedding []float32) (string, error) {
	if item.Name == "" {
		return "", fmt.Errorf("%w: recipe name is required", models.ErrData)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.New().String()
	n := item.Nutrition
	stmts := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO recipes (recipe_id, name, description) VALUES (?, ?, ?)`,
			[]any{id, item.Name, item.Description}},
		{`INSERT INTO nutrition_facts (recipe_id, calories, total_fat, protein, carbs) VALUES (?, ?, ?, ?, ?)`,
			[]any{id, n.Calories, n.TotalFat, n.Protein, n.Carbs}},
		{`INSERT INTO ingredients (recipe_id, ingredient_text) VALUES (?, ?)`,
			[]any{id, item.IngredientText}},
		{`INSERT INTO directions (recipe_id, instruction_text) VALUES (?, ?)`,
			[]any{id, item.InstructionText}},
		{`INSERT OR REPLACE INTO recipe_embeddings (name, embedding) VALUES (?, ?)`,
			[]any{item.Name, vector.EncodeHex(embedding)}},
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.query, st.args...); err != nil {
			return "", fmt.Errorf("failed to save recipe %q: %w", item.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// DeleteRecipe removes every recipe named name along with its embedding.
func (s *SQLiteStore) DeleteRecipe(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	res, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_embeddings WHERE name = ?`, name); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("recipe %q: %w", name, models.ErrNotFound)
	}
	return tx.Commit()
}

// LoadItems returns every joined recipe row in insertion order.
func (s *SQLiteStore) LoadItems(ctx context.Context) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, recipeColumns+` ORDER BY r.rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var n nullableItem
		if err := rows.Scan(&n.name, &n.description, &n.calories, &n.totalFat, &n.protein, &n.carbs,
			&n.ingredients, &n.instructions); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		items = append(items, n.item())
	}
	return items, rows.Err()
}

// LoadEmbeddings returns every stored embedding in insertion order.
func (s *SQLiteStore) LoadEmbeddings(ctx context.Context) ([]models.EmbeddingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, embedding FROM recipe_embeddings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var records []models.EmbeddingRecord
	for rows.Next() {
		var name, hex string
		if err := rows.Scan(&name, &hex); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		rec, err := decodeEmbedding(name, hex)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LoadSnapshot reads items and embeddings.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	items, err := s.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := s.LoadEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{Items: items, Embeddings: embeddings}, nil
}

// CountRecipes returns the number of recipe rows.
func (s *SQLiteStore) CountRecipes(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM recipes`)
}

// CountEmbeddings returns the number of stored embeddings.
func (s *SQLiteStore) CountEmbeddings(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM recipe_embeddings`)
}

func (s *SQLiteStore) count(ctx context.Context, query string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, query).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
