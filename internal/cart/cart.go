package cart

import (
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
)

// Line is one cart entry. Unit is a snapshot taken at add time; later catalog
// refreshes never touch it.
type Line struct {
	Unit         models.CatalogUnit `json:"unit"`
	Quantity     float64            `json:"quantity"`
	Wholesale    bool               `json:"wholesale"`
	CostOverride *float64           `json:"cost_override,omitempty"`
}

// UnitPrice resolves the price this line actually charges: the snapshotted
// retail or wholesale price, unless the cashier overrode it.
func (l Line) UnitPrice() float64 {
	price := l.Unit.RetailPrice
	if l.Wholesale {
		price = l.Unit.WholesalePrice
	}
	if l.CostOverride != nil {
		price = *l.CostOverride
	}
	return price
}

// Subtotal derives the line amount from the snapshotted prices. Never cached.
func (l Line) Subtotal() float64 {
	return l.Quantity * l.UnitPrice()
}

// Cart is one independent ticket. Lines keep insertion order for display.
type Cart struct {
	ID          string              `json:"id"`
	Label       string              `json:"label"`
	Lines       []Line              `json:"lines"`
	PendingBulk *models.CatalogUnit `json:"pending_bulk,omitempty"`
}

// Total recomputes the ticket amount from the lines on every call.
func (c *Cart) Total() float64 {
	var total float64
	for _, line := range c.Lines {
		total += line.Subtotal()
	}
	return total
}

func (c *Cart) lineIndex(unitID int64) int {
	for i, line := range c.Lines {
		if line.Unit.UnitID == unitID {
			return i
		}
	}
	return -1
}
