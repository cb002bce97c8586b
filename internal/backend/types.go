package backend

// Wire shapes for the POS backend API. Field names follow the backend's
// Spanish contract and must not drift.

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// CatalogUnitWire is one sellable unit as served by the catalog endpoint.
type CatalogUnitWire struct {
	UnitID           int64   `json:"id_unidad"`
	ProductID        int64   `json:"id_producto"`
	SKU              string  `json:"codigo_barras"`
	Name             string  `json:"nombre"`
	Presentation     string  `json:"presentacion"`
	ConversionFactor float64 `json:"factor"`
	RetailPrice      float64 `json:"precio_venta"`
	WholesalePrice   float64 `json:"precio_mayoreo"`
	Stock            float64 `json:"existencias"`
	Bulk             bool    `json:"granel"`
	Composite        bool    `json:"compuesto"`
}

// SaleLineWire is one product line inside a sale submission.
type SaleLineWire struct {
	UnitID    int64   `json:"id_unidad"`
	ProductID int64   `json:"id_producto"`
	Quantity  float64 `json:"cantidad"`
	UnitPrice float64 `json:"precio_unitario"`
	Wholesale bool    `json:"mayoreo"`
	Subtotal  float64 `json:"subtotal"`
}

// SaleRequest is the sale submission payload.
type SaleRequest struct {
	CashierID      int            `json:"usuario"`
	BranchID       int            `json:"sucursal"`
	PaymentMethod  int            `json:"metodo_pago"`
	AmountTendered float64        `json:"monto_recibido"`
	Total          float64        `json:"total"`
	Lines          []SaleLineWire `json:"productos"`
	CustomerID     *int64         `json:"id_cliente"`
	ShiftID        *int64         `json:"id_turno"`
	IdempotencyKey string         `json:"clave_idempotencia"`
}

// ExistShiftResult reports whether an open shift already exists for the
// cashier/branch pair.
type ExistShiftResult struct {
	Exists  bool   `json:"existe"`
	ShiftID *int64 `json:"id_turno,omitempty"`
}

// OpenShiftRequest creates a new shift.
type OpenShiftRequest struct {
	CashierID   int     `json:"usuario"`
	BranchID    int     `json:"sucursal"`
	OpeningCash float64 `json:"efectivo_apertura"`
	Notes       string  `json:"observaciones"`
}

// OpenShiftResult is the backend-assigned shift identity.
type OpenShiftResult struct {
	ShiftID  int64  `json:"id_turno"`
	OpenedAt string `json:"fecha_apertura"`
}

// CloseShiftRequest closes the open shift with the counted cash.
type CloseShiftRequest struct {
	ShiftID     int64   `json:"id_turno"`
	CashierID   int     `json:"id_usuario_cierre"`
	CountedCash float64 `json:"efectivo_contado"`
	Notes       string  `json:"observaciones_cierre"`
}

// ReconciliationReport carries the backend-computed close aggregates.
type ReconciliationReport struct {
	CashSales    float64 `json:"ventas_efectivo"`
	CardSales    float64 `json:"ventas_tarjeta"`
	Purchases    float64 `json:"compras"`
	Expenses     float64 `json:"gastos"`
	Deposits     float64 `json:"depositos"`
	Withdrawals  float64 `json:"retiros"`
	OpeningCash  float64 `json:"efectivo_apertura"`
	ExpectedCash float64 `json:"efectivo_esperado"`
	CountedCash  float64 `json:"efectivo_contado"`
	Difference   float64 `json:"diferencia"`
}

// ShiftWire is the closed shift record returned alongside the report.
type ShiftWire struct {
	ShiftID     int64   `json:"id_turno"`
	BranchID    int     `json:"sucursal"`
	CashierID   int     `json:"usuario"`
	OpeningCash float64 `json:"efectivo_apertura"`
	OpenedAt    string  `json:"fecha_apertura"`
	Status      string  `json:"estado"`
	CountedCash float64 `json:"efectivo_contado"`
	ClosedAt    string  `json:"fecha_cierre"`
	Notes       string  `json:"observaciones_cierre"`
}

// CloseShiftResult bundles the shift record and the reconciliation summary.
type CloseShiftResult struct {
	Shift   ShiftWire            `json:"turno"`
	Summary ReconciliationReport `json:"resumen"`
}

// Cash movement kinds accepted by the movements endpoint.
const (
	MovementDeposit    = "deposito"
	MovementWithdrawal = "retiro"
	MovementExpense    = "gasto"
)

// MovementRequest records a shift-scoped cash movement or expense.
type MovementRequest struct {
	ShiftID   int64   `json:"id_turno"`
	CashierID int     `json:"usuario"`
	Kind      string  `json:"tipo"`
	Amount    float64 `json:"monto"`
	Concept   string  `json:"concepto"`
}
