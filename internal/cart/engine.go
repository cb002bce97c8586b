package cart

import (
	"math"
	"sync"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/google/uuid"
)

// Engine owns the terminal's open tickets. One operator drives it, but the
// local HTTP surface can overlap requests, so mutations are serialized.
type Engine struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewEngine() *Engine {
	return &Engine{carts: make(map[string]*Cart)}
}

// CreateCart allocates a new empty ticket and returns its id.
func (e *Engine) CreateCart(label string) *Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart := &Cart{ID: uuid.NewString(), Label: label}
	e.carts[cart.ID] = cart
	return cart
}

// Get returns a copy of the cart for display.
func (e *Engine) Get(cartID string) (*Cart, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return nil, err
	}
	return snapshot(cart), nil
}

// List returns copies of every open cart.
func (e *Engine) List() []*Cart {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*Cart, 0, len(e.carts))
	for _, cart := range e.carts {
		out = append(out, snapshot(cart))
	}
	return out
}

// AddLine appends the unit to the cart, snapshotting its prices. Adding a
// bulk unit without a quantity does not mutate the cart: it stages a
// pending-bulk confirmation that ConfirmBulkQuantity or CancelBulkQuantity
// must resolve. The returned bool reports whether the add was staged.
func (e *Engine) AddLine(cartID string, unit models.CatalogUnit, quantity *float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return false, err
	}
	if cart.PendingBulk != nil {
		return false, pkgerrors.New(pkgerrors.CodeStateConflict, "a bulk quantity confirmation is already pending")
	}

	if unit.Bulk && quantity == nil {
		staged := unit
		cart.PendingBulk = &staged
		return true, nil
	}

	qty := 1.0
	if quantity != nil {
		qty = *quantity
	}
	if err := validateQuantity(unit, qty); err != nil {
		return false, err
	}

	e.upsertLine(cart, unit, qty)
	return false, nil
}

// ConfirmBulkQuantity commits the staged bulk unit with the given quantity.
// A non-positive quantity is rejected and the cart is left unchanged.
func (e *Engine) ConfirmBulkQuantity(cartID string, quantity float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	if cart.PendingBulk == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no bulk quantity confirmation pending")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "bulk quantity must be greater than zero")
	}

	unit := *cart.PendingBulk
	cart.PendingBulk = nil
	e.upsertLine(cart, unit, quantity)
	return nil
}

// CancelBulkQuantity discards the staged bulk unit.
func (e *Engine) CancelBulkQuantity(cartID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	cart.PendingBulk = nil
	return nil
}

// IncrementQuantity adds 1 to the unit's line.
func (e *Engine) IncrementQuantity(cartID string, unitID int64) error {
	return e.adjustQuantity(cartID, unitID, 1)
}

// DecrementQuantity subtracts 1; reaching zero removes the line.
func (e *Engine) DecrementQuantity(cartID string, unitID int64) error {
	return e.adjustQuantity(cartID, unitID, -1)
}

func (e *Engine) adjustQuantity(cartID string, unitID int64, delta float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	idx := cart.lineIndex(unitID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}

	cart.Lines[idx].Quantity += delta
	if cart.Lines[idx].Quantity <= 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	}
	return nil
}

// RemoveLine deletes the unit's line unconditionally.
func (e *Engine) RemoveLine(cartID string, unitID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	idx := cart.lineIndex(unitID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	return nil
}

// ToggleWholesalePrice flips the line's price tier. No minimum-quantity
// threshold applies.
func (e *Engine) ToggleWholesalePrice(cartID string, unitID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	idx := cart.lineIndex(unitID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	cart.Lines[idx].Wholesale = !cart.Lines[idx].Wholesale
	return nil
}

// UpdateUnitPrice overrides the cost used for this line only. Purchase carts
// use it for prices negotiated at acquisition time.
func (e *Engine) UpdateUnitPrice(cartID string, unitID int64, price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	idx := cart.lineIndex(unitID)
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
	}
	override := price
	cart.Lines[idx].CostOverride = &override
	return nil
}

// ComputeTotal recomputes the cart total from its lines.
func (e *Engine) ComputeTotal(cartID string) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return 0, err
	}
	return cart.Total(), nil
}

// ClearCart drops every line and any staged bulk confirmation.
func (e *Engine) ClearCart(cartID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cart, err := e.cart(cartID)
	if err != nil {
		return err
	}
	cart.Lines = nil
	cart.PendingBulk = nil
	return nil
}

// RemoveCart discards the ticket entirely.
func (e *Engine) RemoveCart(cartID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.carts[cartID]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	delete(e.carts, cartID)
	return nil
}

func (e *Engine) cart(cartID string) (*Cart, error) {
	cart, ok := e.carts[cartID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}

func (e *Engine) upsertLine(cart *Cart, unit models.CatalogUnit, qty float64) {
	if idx := cart.lineIndex(unit.UnitID); idx >= 0 {
		cart.Lines[idx].Quantity += qty
		return
	}
	cart.Lines = append(cart.Lines, Line{Unit: unit, Quantity: qty})
}

func validateQuantity(unit models.CatalogUnit, qty float64) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be greater than zero")
	}
	if !unit.Bulk && qty != math.Trunc(qty) {
		return pkgerrors.New(pkgerrors.CodeValidation, "fractional quantity requires a bulk unit")
	}
	return nil
}

func snapshot(cart *Cart) *Cart {
	copied := &Cart{ID: cart.ID, Label: cart.Label}
	copied.Lines = append([]Line(nil), cart.Lines...)
	if cart.PendingBulk != nil {
		staged := *cart.PendingBulk
		copied.PendingBulk = &staged
	}
	return copied
}
