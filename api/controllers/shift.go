package controllers

import (
	"net/http"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/responses"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/validators"
	shiftsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/shift"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

type openShiftRequest struct {
	OpeningCash float64 `json:"opening_cash" validate:"gte=0"`
	Notes       string  `json:"notes"`
}

type closeShiftRequest struct {
	CountedCash float64 `json:"counted_cash" validate:"gte=0"`
	Notes       string  `json:"notes"`
}

type movementRequest struct {
	Kind    string  `json:"kind" validate:"required,oneof=deposito retiro gasto"`
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Concept string  `json:"concept"`
}

// ShiftCurrent reports which shift the terminal is attached to, if any.
func ShiftCurrent(svc shiftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Current(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// ShiftOpen opens a shift, or reattaches to the one the backend already has
// open for this cashier.
func ShiftOpen(svc shiftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload openShiftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.Open(r.Context(), payload.OpeningCash, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}

// ShiftClose settles the shift against the counted drawer cash and returns
// the reconciliation report.
func ShiftClose(svc shiftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload closeShiftRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Close(r.Context(), payload.CountedCash, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ShiftMovement records a deposit, withdrawal or expense against the open
// shift.
func ShiftMovement(svc shiftsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload movementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RecordMovement(r.Context(), payload.Kind, payload.Amount, payload.Concept); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
