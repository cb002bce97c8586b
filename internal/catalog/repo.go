package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists the local catalog snapshot.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ReplaceAll swaps the branch snapshot atomically: old rows are discarded
// wholesale, never merged.
func (r *Repository) ReplaceAll(ctx context.Context, branchID int, units []models.CatalogUnit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CatalogUnit{}, "branch_id = ?", branchID).Error; err != nil {
			return err
		}
		if len(units) == 0 {
			return nil
		}
		return tx.CreateInBatches(units, 200).Error
	})
}

// Search filters the snapshot by case-insensitive name/SKU substring. The
// term is matched literally; LIKE wildcards typed by the operator are escaped.
func (r *Repository) Search(ctx context.Context, branchID int, term string) ([]models.CatalogUnit, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(term))) + "%"
	var rows []models.CatalogUnit
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(sku) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func escapeLike(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	term = strings.ReplaceAll(term, "%", `\%`)
	term = strings.ReplaceAll(term, "_", `\_`)
	return term
}

// BySKU returns the unit with the exact SKU, or (nil, nil) on a miss.
func (r *Repository) BySKU(ctx context.Context, branchID int, sku string) (*models.CatalogUnit, error) {
	var row models.CatalogUnit
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND sku = ?", branchID, strings.TrimSpace(sku)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Count reports the snapshot size for the branch.
func (r *Repository) Count(ctx context.Context, branchID int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CatalogUnit{}).
		Where("branch_id = ?", branchID).
		Count(&count).Error
	return count, err
}

// StockFor returns available stock for the given units from the snapshot.
// Units absent from the snapshot are omitted from the map.
func (r *Repository) StockFor(ctx context.Context, branchID int, unitIDs []int64) (map[int64]float64, error) {
	if len(unitIDs) == 0 {
		return map[int64]float64{}, nil
	}
	var rows []models.CatalogUnit
	err := r.db.WithContext(ctx).
		Select("unit_id", "stock").
		Where("branch_id = ? AND unit_id IN ?", branchID, unitIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	stock := make(map[int64]float64, len(rows))
	for _, row := range rows {
		stock[row.UnitID] = row.Stock
	}
	return stock, nil
}
