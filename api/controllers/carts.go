package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/responses"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/validators"
	cartsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/cart"
	catalogsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/catalog"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

type createCartRequest struct {
	Label string `json:"label"`
}

type addLineRequest struct {
	SKU      string   `json:"sku" validate:"required"`
	Quantity *float64 `json:"quantity,omitempty"`
}

type addLineResponse struct {
	Staged bool         `json:"staged"`
	Cart   *cartsvc.Cart `json:"cart,omitempty"`
}

type bulkConfirmRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

type updatePriceRequest struct {
	Price float64 `json:"price" validate:"gte=0"`
}

// CartCreate opens a fresh ticket.
func CartCreate(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createCartRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		cart := engine.CreateCart(payload.Label)
		responses.WriteSuccessStatus(w, http.StatusCreated, cart)
	}
}

// CartList returns every open ticket.
func CartList(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, engine.List())
	}
}

// CartFetch returns one ticket with its running total.
func CartFetch(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cart, err := engine.Get(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cart": cart, "total": cart.Total()})
	}
}

// CartRemove discards a ticket entirely.
func CartRemove(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := engine.RemoveCart(chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartAddLine resolves the scanned sku against the catalog and adds it to the
// ticket. Bulk units scanned without a quantity stage a pending entry that
// must be confirmed or cancelled before the ticket accepts anything else.
func CartAddLine(engine *cartsvc.Engine, catalog catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addLineRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		unit, err := catalog.LookupBySKU(r.Context(), payload.SKU)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartID := chi.URLParam(r, "id")
		staged, err := engine.AddLine(cartID, *unit, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := engine.Get(cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, addLineResponse{Staged: staged, Cart: cart})
	}
}

// CartBulkConfirm applies the weighed quantity to the staged bulk unit.
func CartBulkConfirm(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload bulkConfirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartID := chi.URLParam(r, "id")
		if err := engine.ConfirmBulkQuantity(cartID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, engine, cartID, logg)
	}
}

// CartBulkCancel drops the staged bulk unit without touching the ticket.
func CartBulkCancel(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := chi.URLParam(r, "id")
		if err := engine.CancelBulkQuantity(cartID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, engine, cartID, logg)
	}
}

// CartLineIncrement bumps a line by one unit.
func CartLineIncrement(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return cartLineOp(engine, logg, engine.IncrementQuantity)
}

// CartLineDecrement lowers a line by one unit, removing it at zero.
func CartLineDecrement(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return cartLineOp(engine, logg, engine.DecrementQuantity)
}

// CartLineRemove deletes a line outright.
func CartLineRemove(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return cartLineOp(engine, logg, engine.RemoveLine)
}

// CartLineWholesale flips a line between retail and wholesale pricing.
func CartLineWholesale(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return cartLineOp(engine, logg, engine.ToggleWholesalePrice)
}

// CartLinePrice overrides the unit price on one line.
func CartLinePrice(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updatePriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cartID := chi.URLParam(r, "id")
		unitID, err := unitIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := engine.UpdateUnitPrice(cartID, unitID, payload.Price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, engine, cartID, logg)
	}
}

// CartClear empties the ticket but keeps it open.
func CartClear(engine *cartsvc.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := chi.URLParam(r, "id")
		if err := engine.ClearCart(cartID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, engine, cartID, logg)
	}
}

func cartLineOp(engine *cartsvc.Engine, logg *logger.Logger, op func(cartID string, unitID int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := chi.URLParam(r, "id")
		unitID, err := unitIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := op(cartID, unitID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCart(w, r, engine, cartID, logg)
	}
}

func unitIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "unitId")
	unitID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit id")
	}
	return unitID, nil
}

func writeCart(w http.ResponseWriter, r *http.Request, engine *cartsvc.Engine, cartID string, logg *logger.Logger) {
	cart, err := engine.Get(cartID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"cart": cart, "total": cart.Total()})
}
