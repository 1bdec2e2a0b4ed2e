package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyperjump/ryori/internal/models"
)

// PostgresSource reads the recipe snapshot from the PostgreSQL recipe database.
// The embedding column may be bytea or text; both are read in \x hex form.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource connects to dsn and verifies the connection.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	if dsn == "" {
		return nil, errors.New("postgres connection string is empty")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// LoadItems returns every joined recipe row ordered by recipe id.
func (p *PostgresSource) LoadItems(ctx context.Context) ([]models.Item, error) {
	rows, err := p.pool.Query(ctx, `
	SELECT r.name, r.description, n.calories::float8, n.total_fat::float8, n.protein::float8, n.carbs::float8,
	       i.ingredient_text, d.instruction_text
	FROM recipes r
	JOIN nutrition_facts n ON r.recipe_id = n.recipe_id
	JOIN ingredients i ON r.recipe_id = i.recipe_id
	JOIN directions d ON r.recipe_id = d.recipe_id
	ORDER BY r.recipe_id`)
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

// LoadEmbeddings returns every stored embedding ordered by name.
func (p *PostgresSource) LoadEmbeddings(ctx context.Context) ([]models.EmbeddingRecord, error) {
	rows, err := p.pool.Query(ctx, `SELECT name, embedding::text FROM recipe_embeddings ORDER BY name`)
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
func (p *PostgresSource) LoadSnapshot(ctx context.Context) (*models.Snapshot, error) {
	items, err := p.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := p.LoadEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{Items: items, Embeddings: embeddings}, nil
}

// Close closes the pool.
func (p *PostgresSource) Close() error {
	p.pool.Close()
	return nil
}
