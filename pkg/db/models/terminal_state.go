package models

import "time"

// Keys used in the terminal_state table.
const (
	StateKeyCurrentShift    = "current_shift_id"
	StateKeyCatalogBranch   = "catalog_branch_id"
	StateKeyCatalogSyncedAt = "catalog_synced_at"
)

// TerminalState is a small key/value row for terminal-scoped pointers that
// must survive restarts (current shift, last catalog sync).
type TerminalState struct {
	Key       string    `gorm:"column:key;primaryKey" json:"key"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TerminalState) TableName() string { return "terminal_state" }
