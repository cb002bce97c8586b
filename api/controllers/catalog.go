package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/api/responses"
	catalogsvc "github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/catalog"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

// CatalogSync forces a fresh snapshot download from the backend.
func CatalogSync(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		units, err := svc.Sync(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"unidades": len(units)})
	}
}

// CatalogSearch serves product lookups from the local snapshot.
func CatalogSearch(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		term := strings.TrimSpace(r.URL.Query().Get("q"))
		if term == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "query term is required"))
			return
		}

		units, err := svc.Search(r.Context(), term)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, units)
	}
}

// CatalogBySKU resolves a scanned barcode to its sellable unit.
func CatalogBySKU(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sku := strings.TrimSpace(chi.URLParam(r, "sku"))
		if sku == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "sku is required"))
			return
		}

		unit, err := svc.LookupBySKU(r.Context(), sku)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, unit)
	}
}
