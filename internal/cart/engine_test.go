package cart

import (
	"testing"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
)

func soapUnit() models.CatalogUnit {
	return models.CatalogUnit{UnitID: 12, ProductID: 6, SKU: "7501003", Name: "Jabon de barra", RetailPrice: 10, WholesalePrice: 8, Stock: 20}
}

func sugarBulkUnit() models.CatalogUnit {
	return models.CatalogUnit{UnitID: 10, ProductID: 4, SKU: "7501001", Name: "Azucar Estandar", RetailPrice: 28.5, WholesalePrice: 26, Stock: 40, Bulk: true}
}

func qty(v float64) *float64 { return &v }

func TestAddLineSnapshotsAndMerges(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	if _, err := engine.AddLine(cart.ID, soapUnit(), nil); err != nil {
		t.Fatalf("add line failed: %v", err)
	}
	// same unit again increments instead of duplicating
	if _, err := engine.AddLine(cart.ID, soapUnit(), nil); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	got, err := engine.Get(cart.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Lines) != 1 {
		t.Fatalf("expected 1 merged line, got %d", len(got.Lines))
	}
	if got.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %v", got.Lines[0].Quantity)
	}

	total, err := engine.ComputeTotal(cart.ID)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if total != 20 {
		t.Fatalf("expected total 20, got %v", total)
	}
}

func TestAddLinePriceSnapshotSurvivesCatalogRefresh(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	unit := soapUnit()
	if _, err := engine.AddLine(cart.ID, unit, qty(3)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	// a later catalog replace changes the source unit; the line keeps its prices
	unit.RetailPrice = 99

	got, _ := engine.Get(cart.ID)
	if got.Lines[0].Unit.RetailPrice != 10 {
		t.Fatalf("line price drifted: %v", got.Lines[0].Unit.RetailPrice)
	}
}

func TestFractionalQuantityRequiresBulk(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	_, err := engine.AddLine(cart.ID, soapUnit(), qty(1.5))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := engine.AddLine(cart.ID, sugarBulkUnit(), qty(1.5)); err != nil {
		t.Fatalf("bulk fractional add failed: %v", err)
	}
}

func TestBulkStagingStateMachine(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	staged, err := engine.AddLine(cart.ID, sugarBulkUnit(), nil)
	if err != nil {
		t.Fatalf("staging add failed: %v", err)
	}
	if !staged {
		t.Fatal("expected bulk add without quantity to stage")
	}

	got, _ := engine.Get(cart.ID)
	if len(got.Lines) != 0 {
		t.Fatalf("staging must not mutate the cart, found %d lines", len(got.Lines))
	}
	if got.PendingBulk == nil {
		t.Fatal("expected pending bulk unit")
	}

	// only one staging slot per cart
	if _, err := engine.AddLine(cart.ID, soapUnit(), nil); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict while staging, got %v", err)
	}

	// rejected confirm leaves everything in place
	if err := engine.ConfirmBulkQuantity(cart.ID, 0); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	got, _ = engine.Get(cart.ID)
	if got.PendingBulk == nil || len(got.Lines) != 0 {
		t.Fatal("failed confirm must leave the staging state untouched")
	}

	if err := engine.ConfirmBulkQuantity(cart.ID, 2.25); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	got, _ = engine.Get(cart.ID)
	if got.PendingBulk != nil {
		t.Fatal("confirm must clear the staging state")
	}
	if len(got.Lines) != 1 || got.Lines[0].Quantity != 2.25 {
		t.Fatalf("unexpected lines after confirm: %+v", got.Lines)
	}

	// confirm with nothing staged
	if err := engine.ConfirmBulkQuantity(cart.ID, 1); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelBulkQuantity(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	if _, err := engine.AddLine(cart.ID, sugarBulkUnit(), nil); err != nil {
		t.Fatalf("staging add failed: %v", err)
	}
	if err := engine.CancelBulkQuantity(cart.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	got, _ := engine.Get(cart.ID)
	if got.PendingBulk != nil || len(got.Lines) != 0 {
		t.Fatal("cancel must return the cart to idle unchanged")
	}
}

func TestIncrementDecrementRemove(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	if _, err := engine.AddLine(cart.ID, soapUnit(), qty(2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.IncrementQuantity(cart.ID, 12); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := engine.DecrementQuantity(cart.ID, 12); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}

	got, _ := engine.Get(cart.ID)
	if got.Lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %v", got.Lines[0].Quantity)
	}

	// decrement to zero removes the line
	if err := engine.DecrementQuantity(cart.ID, 12); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if err := engine.DecrementQuantity(cart.ID, 12); err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	got, _ = engine.Get(cart.ID)
	if len(got.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(got.Lines))
	}

	if _, err := engine.AddLine(cart.ID, soapUnit(), nil); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.RemoveLine(cart.ID, 12); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := engine.RemoveLine(cart.ID, 12); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestToggleWholesaleChangesOnlyThatLine(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("venta")

	if _, err := engine.AddLine(cart.ID, soapUnit(), qty(5)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	other := models.CatalogUnit{UnitID: 13, Name: "Aceite 1L", RetailPrice: 40, WholesalePrice: 36}
	if _, err := engine.AddLine(cart.ID, other, qty(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	total, _ := engine.ComputeTotal(cart.ID)
	if total != 90 {
		t.Fatalf("expected 90, got %v", total)
	}

	if err := engine.ToggleWholesalePrice(cart.ID, 12); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	total, _ = engine.ComputeTotal(cart.ID)
	if total != 80 {
		t.Fatalf("expected 80 with wholesale soap, got %v", total)
	}

	got, _ := engine.Get(cart.ID)
	if got.Lines[1].Wholesale {
		t.Fatal("toggling one line must not affect another")
	}

	if err := engine.ToggleWholesalePrice(cart.ID, 12); err != nil {
		t.Fatalf("toggle back failed: %v", err)
	}
	total, _ = engine.ComputeTotal(cart.ID)
	if total != 90 {
		t.Fatalf("expected 90 after toggling back, got %v", total)
	}
}

func TestUpdateUnitPriceForPurchaseCart(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	cart := engine.CreateCart("compra")

	if _, err := engine.AddLine(cart.ID, soapUnit(), qty(10)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := engine.UpdateUnitPrice(cart.ID, 12, 7.5); err != nil {
		t.Fatalf("price override failed: %v", err)
	}
	total, _ := engine.ComputeTotal(cart.ID)
	if total != 75 {
		t.Fatalf("expected 75 with negotiated cost, got %v", total)
	}

	if err := engine.UpdateUnitPrice(cart.ID, 12, -1); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
}

func TestMultipleCartsAreIndependent(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	sale := engine.CreateCart("venta")
	purchase := engine.CreateCart("compra")

	if _, err := engine.AddLine(sale.ID, soapUnit(), qty(2)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := engine.AddLine(purchase.ID, sugarBulkUnit(), qty(5)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	saleTotal, _ := engine.ComputeTotal(sale.ID)
	purchaseTotal, _ := engine.ComputeTotal(purchase.ID)
	if saleTotal != 20 || purchaseTotal != 142.5 {
		t.Fatalf("cart state leaked: sale=%v purchase=%v", saleTotal, purchaseTotal)
	}

	if err := engine.ClearCart(sale.ID); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	saleTotal, _ = engine.ComputeTotal(sale.ID)
	purchaseTotal, _ = engine.ComputeTotal(purchase.ID)
	if saleTotal != 0 || purchaseTotal != 142.5 {
		t.Fatalf("clear leaked across carts: sale=%v purchase=%v", saleTotal, purchaseTotal)
	}

	if err := engine.RemoveCart(sale.ID); err != nil {
		t.Fatalf("remove cart failed: %v", err)
	}
	if _, err := engine.Get(sale.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after removal, got %v", err)
	}
}
