package sync

import (
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
)

// Payment methods accepted by the backend contract.
const (
	PaymentCash = 0
	PaymentCard = 1
)

// SaleLine is one finished line of a to-be-submitted sale, snapshotted from
// the cart.
type SaleLine struct {
	UnitID    int64   `json:"unit_id"`
	ProductID int64   `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Wholesale bool    `json:"wholesale"`
	Subtotal  float64 `json:"subtotal"`
}

// Sale is the full payload handed to the sync engine by the cart surface.
type Sale struct {
	Lines          []SaleLine `json:"lines"`
	Total          float64    `json:"total"`
	PaymentMethod  int        `json:"payment_method"`
	AmountTendered float64    `json:"amount_tendered"`
	CashierID      int        `json:"cashier_id"`
	BranchID       int        `json:"branch_id"`
	ShiftID        *int64     `json:"shift_id,omitempty"`
	CustomerID     *int64     `json:"customer_id,omitempty"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// Result is the terminal-facing outcome of a submit: a backend folio when the
// sale went through online, or the local queue id when it was stored offline.
// Either way the sale is recorded from the operator's point of view.
type Result struct {
	Folio   string `json:"folio,omitempty"`
	LocalID string `json:"local_id,omitempty"`
	Queued  bool   `json:"queued"`
}

func (s Sale) toRequest() backend.SaleRequest {
	lines := make([]backend.SaleLineWire, 0, len(s.Lines))
	for _, line := range s.Lines {
		lines = append(lines, backend.SaleLineWire{
			UnitID:    line.UnitID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Wholesale: line.Wholesale,
			Subtotal:  line.Subtotal,
		})
	}
	return backend.SaleRequest{
		CashierID:      s.CashierID,
		BranchID:       s.BranchID,
		PaymentMethod:  s.PaymentMethod,
		AmountTendered: s.AmountTendered,
		Total:          s.Total,
		Lines:          lines,
		CustomerID:     s.CustomerID,
		ShiftID:        s.ShiftID,
		IdempotencyKey: s.IdempotencyKey,
	}
}
