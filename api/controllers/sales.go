package controllers

import (
	"net/http"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/responses"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/validators"
	cartsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/cart"
	syncsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/sync"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/config"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

type submitSaleRequest struct {
	CartID         string  `json:"cart_id" validate:"required"`
	PaymentMethod  int     `json:"payment_method" validate:"oneof=0 1"`
	AmountTendered float64 `json:"amount_tendered" validate:"gte=0"`
	CustomerID     *int64  `json:"customer_id,omitempty"`
}

// SaleSubmit checks the ticket out. The sale is recorded online when the
// backend answers, queued locally when it does not; the cart is released
// either way.
func SaleSubmit(engine *cartsvc.Engine, svc syncsvc.Service, terminal config.TerminalConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload submitSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := engine.Get(payload.CartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if cart.PendingBulk != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeStateConflict, "a bulk quantity is pending confirmation"))
			return
		}

		sale := saleFromCart(cart, payload, terminal)
		result, err := svc.SubmitSale(r.Context(), sale)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := engine.RemoveCart(payload.CartID); err != nil && logg != nil {
			logg.Warn(logg.WithCartID(r.Context(), payload.CartID), "release sold cart")
		}

		responses.WriteSuccess(w, result)
	}
}

// SaleDrain replays the offline queue immediately instead of waiting for the
// connectivity monitor.
func SaleDrain(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DrainQueue(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pending, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"pending": len(pending)})
	}
}

// SalePending lists the sales still waiting for the backend.
func SalePending(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := svc.ListPending(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pending)
	}
}

func saleFromCart(cart *cartsvc.Cart, payload submitSaleRequest, terminal config.TerminalConfig) syncsvc.Sale {
	lines := make([]syncsvc.SaleLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, syncsvc.SaleLine{
			UnitID:    line.Unit.UnitID,
			ProductID: line.Unit.ProductID,
			SKU:       line.Unit.SKU,
			Name:      line.Unit.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice(),
			Wholesale: line.Wholesale,
			Subtotal:  line.Subtotal(),
		})
	}
	return syncsvc.Sale{
		Lines:          lines,
		Total:          cart.Total(),
		PaymentMethod:  payload.PaymentMethod,
		AmountTendered: payload.AmountTendered,
		CashierID:      terminal.CashierID,
		BranchID:       terminal.BranchID,
		CustomerID:     payload.CustomerID,
	}
}
