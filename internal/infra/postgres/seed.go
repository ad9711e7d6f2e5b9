package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"timed-quiz/internal/domain"
)

// SeedCategories upserts question sets into the categories table.
func SeedCategories(ctx context.Context, db *bun.DB, categories []domain.Category) error {
	for _, category := range categories {
		data, err := json.Marshal(category)
		if err != nil {
			return fmt.Errorf("marshal category %s: %w", category.ID, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO categories (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
			category.ID, string(data),
		); err != nil {
			return fmt.Errorf("seed category %s: %w", category.ID, err)
		}
	}
	return nil
}
