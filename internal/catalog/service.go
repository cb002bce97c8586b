package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/metrics"
)

type catalogFetcher interface {
	GetCatalog(ctx context.Context, branchID int) ([]backend.CatalogUnitWire, error)
}

type stateWriter interface {
	Set(ctx context.Context, key, value string) error
}

// Service is the local-first catalog cache for the active branch.
type Service interface {
	Sync(ctx context.Context) ([]models.CatalogUnit, error)
	Search(ctx context.Context, term string) ([]models.CatalogUnit, error)
	LookupBySKU(ctx context.Context, sku string) (*models.CatalogUnit, error)
	StockFor(ctx context.Context, unitIDs []int64) (map[int64]float64, error)
}

type service struct {
	repo     *Repository
	fetcher  catalogFetcher
	state    stateWriter
	branchID int
	logg     *logger.Logger
	metrics  *metrics.SyncMetrics
	now      func() time.Time
}

// NewService builds the catalog cache for the given branch.
func NewService(repo *Repository, fetcher catalogFetcher, state stateWriter, branchID int, logg *logger.Logger, m *metrics.SyncMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("catalog fetcher required")
	}
	if state == nil {
		return nil, fmt.Errorf("state repository required")
	}
	return &service{
		repo:     repo,
		fetcher:  fetcher,
		state:    state,
		branchID: branchID,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
	}, nil
}

// Sync fetches the full branch catalog and replaces the local snapshot.
func (s *service) Sync(ctx context.Context) ([]models.CatalogUnit, error) {
	wires, err := s.fetcher.GetCatalog(ctx, s.branchID)
	if err != nil {
		return nil, err
	}

	syncedAt := s.now()
	units := make([]models.CatalogUnit, 0, len(wires))
	for _, wire := range wires {
		units = append(units, unitFromWire(wire, s.branchID, syncedAt))
	}

	if err := s.repo.ReplaceAll(ctx, s.branchID, units); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace catalog snapshot")
	}

	if err := s.state.Set(ctx, models.StateKeyCatalogSyncedAt, syncedAt.Format(time.RFC3339)); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to record catalog sync timestamp")
	}
	if err := s.state.Set(ctx, models.StateKeyCatalogBranch, strconv.Itoa(s.branchID)); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "failed to record catalog branch")
	}
	s.metrics.SetCatalogSyncedAt(syncedAt.Unix())

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"branch_id": s.branchID, "units": len(units)})
		s.logg.Info(ctx, "catalog snapshot replaced")
	}
	return units, nil
}

// Search answers from the snapshot when one exists, even offline. With no
// snapshot it syncs once as a side effect; a miss is an empty list, not an
// error, unless no data source is left.
func (s *service) Search(ctx context.Context, term string) ([]models.CatalogUnit, error) {
	count, err := s.repo.Count(ctx, s.branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count snapshot")
	}
	if count > 0 {
		rows, err := s.repo.Search(ctx, s.branchID, term)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search snapshot")
		}
		return rows, nil
	}

	if _, err := s.Sync(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeCatalogUnavailable, err, "no local snapshot and backend unreachable")
	}
	rows, err := s.repo.Search(ctx, s.branchID, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search snapshot")
	}
	return rows, nil
}

// LookupBySKU resolves a unit by exact SKU, local-first.
func (s *service) LookupBySKU(ctx context.Context, sku string) (*models.CatalogUnit, error) {
	count, err := s.repo.Count(ctx, s.branchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count snapshot")
	}

	if count == 0 {
		if _, err := s.Sync(ctx); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeCatalogUnavailable, err, "no local snapshot and backend unreachable")
		}
	}

	unit, err := s.repo.BySKU(ctx, s.branchID, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup sku")
	}
	if unit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").WithDetails(map[string]any{"sku": sku})
	}
	return unit, nil
}

// StockFor reads the freshest snapshot stock for the given units.
func (s *service) StockFor(ctx context.Context, unitIDs []int64) (map[int64]float64, error) {
	stock, err := s.repo.StockFor(ctx, s.branchID, unitIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read stock")
	}
	return stock, nil
}

func unitFromWire(wire backend.CatalogUnitWire, branchID int, syncedAt time.Time) models.CatalogUnit {
	return models.CatalogUnit{
		UnitID:           wire.UnitID,
		BranchID:         branchID,
		ProductID:        wire.ProductID,
		SKU:              wire.SKU,
		Name:             wire.Name,
		Presentation:     wire.Presentation,
		ConversionFactor: wire.ConversionFactor,
		RetailPrice:      wire.RetailPrice,
		WholesalePrice:   wire.WholesalePrice,
		Stock:            wire.Stock,
		Bulk:             wire.Bulk,
		Composite:        wire.Composite,
		SyncedAt:         syncedAt,
	}
}
