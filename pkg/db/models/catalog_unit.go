package models

import "time"

// CatalogUnit is one sellable presentation of a product, snapshotted from the
// backend catalog for a branch. Rows are replaced wholesale on every sync.
type CatalogUnit struct {
	UnitID           int64     `gorm:"column:unit_id;primaryKey" json:"unit_id"`
	BranchID         int       `gorm:"column:branch_id;not null;index" json:"branch_id"`
	ProductID        int64     `gorm:"column:product_id;not null" json:"product_id"`
	SKU              string    `gorm:"column:sku;not null;index" json:"sku"`
	Name             string    `gorm:"column:name;not null" json:"name"`
	Presentation     string    `gorm:"column:presentation;not null" json:"presentation"`
	ConversionFactor float64   `gorm:"column:conversion_factor;not null;default:1" json:"conversion_factor"`
	RetailPrice      float64   `gorm:"column:retail_price;not null" json:"retail_price"`
	WholesalePrice   float64   `gorm:"column:wholesale_price;not null" json:"wholesale_price"`
	Stock            float64   `gorm:"column:stock;not null;default:0" json:"stock"`
	Bulk             bool      `gorm:"column:bulk;not null;default:false" json:"bulk"`
	Composite        bool      `gorm:"column:composite;not null;default:false" json:"composite"`
	SyncedAt         time.Time `gorm:"column:synced_at;autoCreateTime" json:"synced_at"`
}

func (CatalogUnit) TableName() string { return "catalog_units" }
