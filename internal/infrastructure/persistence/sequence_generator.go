package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceGenerator hands out per-key counters from the sequences table.
// The increment is a single upsert, so concurrent callers never share a value.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next returns the next value for key, starting at 1
func (g *GormSequenceGenerator) Next(ctx context.Context, key string) (int64, error) {
	row := models.SequenceModel{Key: key, Value: 1, UpdatedAt: time.Now().UTC()}
	err := g.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "key"}},
				DoUpdates: clause.Assignments(map[string]any{
					"value":      gorm.Expr("sequences.value + 1"),
					"updated_at": row.UpdatedAt,
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "value"}}},
		).
		Create(&row).Error
	if err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", key, err)
	}
	return row.Value, nil
}

// Ensure GormSequenceGenerator implements SequenceGenerator
var _ shared.SequenceGenerator = (*GormSequenceGenerator)(nil)
