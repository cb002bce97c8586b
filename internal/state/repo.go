package state

import (
	"context"
	"errors"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository reads and writes terminal_state pointers.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored value, or ("", false) when the key is absent.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	var row models.TerminalState
	err := r.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

// Set upserts the key.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	row := models.TerminalState{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
}

// Clear removes the key; clearing an absent key is not an error.
func (r *Repository) Clear(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.TerminalState{}, "key = ?", key).Error
}
