package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBranch = 2

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CatalogUnit{}, &models.TerminalState{}))
	return NewRepository(conn)
}

type stubFetcher struct {
	units []backend.CatalogUnitWire
	err   error
	calls int
}

func (s *stubFetcher) GetCatalog(ctx context.Context, branchID int) ([]backend.CatalogUnitWire, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.units, nil
}

type stubState struct {
	values map[string]string
}

func (s *stubState) Set(ctx context.Context, key, value string) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

func sampleWires() []backend.CatalogUnitWire {
	return []backend.CatalogUnitWire{
		{UnitID: 10, ProductID: 4, SKU: "7501001", Name: "Azucar Estandar", Presentation: "kg", ConversionFactor: 1, RetailPrice: 28.5, WholesalePrice: 26, Stock: 40, Bulk: true},
		{UnitID: 11, ProductID: 5, SKU: "7501002", Name: "Refresco Cola 600ml", Presentation: "pieza", ConversionFactor: 1, RetailPrice: 18, WholesalePrice: 16, Stock: 24},
		{UnitID: 12, ProductID: 6, SKU: "7501003", Name: "Jabon de barra", Presentation: "pieza", ConversionFactor: 1, RetailPrice: 12, WholesalePrice: 10.5, Stock: 8},
	}
}

func newTestService(t *testing.T, fetcher *stubFetcher) (Service, *Repository) {
	t.Helper()
	repo := newTestRepo(t)
	svc, err := NewService(repo, fetcher, &stubState{}, testBranch, nil, nil)
	require.NoError(t, err)
	return svc, repo
}

func TestSyncReplacesSnapshotWholesale(t *testing.T) {
	fetcher := &stubFetcher{units: sampleWires()}
	svc, repo := newTestService(t, fetcher)
	ctx := context.Background()

	units, err := svc.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, units, 3)

	// second sync with a smaller catalog discards stale rows
	fetcher.units = sampleWires()[:1]
	_, err = svc.Sync(ctx)
	require.NoError(t, err)

	count, err := repo.Count(ctx, testBranch)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSearchUsesLocalSnapshotWithoutNetwork(t *testing.T) {
	fetcher := &stubFetcher{units: sampleWires()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	_, err := svc.Sync(ctx)
	require.NoError(t, err)
	callsAfterSync := fetcher.calls

	// network now down; local snapshot still answers
	fetcher.err = pkgerrors.New(pkgerrors.CodeNetwork, "down")

	results, err := svc.Search(ctx, "azucar")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "7501001", results[0].SKU)
	require.Equal(t, callsAfterSync, fetcher.calls, "search must not touch the network with a snapshot present")

	bySKU, err := svc.Search(ctx, "7501002")
	require.NoError(t, err)
	require.Len(t, bySKU, 1)

	empty, err := svc.Search(ctx, "no-such-product")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSearchPopulatesSnapshotWhenEmpty(t *testing.T) {
	fetcher := &stubFetcher{units: sampleWires()}
	svc, repo := newTestService(t, fetcher)
	ctx := context.Background()

	results, err := svc.Search(ctx, "refresco")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, 1, fetcher.calls)

	count, err := repo.Count(ctx, testBranch)
	require.NoError(t, err)
	require.Equal(t, int64(3), count, "network search populates the snapshot as a side effect")
}

func TestSearchUnavailableWhenNoSnapshotAndOffline(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	svc, _ := newTestService(t, fetcher)

	_, err := svc.Search(context.Background(), "azucar")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeCatalogUnavailable, typed.Code())
}

func TestLookupBySKU(t *testing.T) {
	fetcher := &stubFetcher{units: sampleWires()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	unit, err := svc.LookupBySKU(ctx, "7501003")
	require.NoError(t, err)
	require.Equal(t, "Jabon de barra", unit.Name)

	_, err = svc.LookupBySKU(ctx, "000000")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	units := []models.CatalogUnit{
		{UnitID: 20, BranchID: testBranch, ProductID: 8, SKU: "D100", Name: "Descuento 100%", RetailPrice: 10, WholesalePrice: 9},
		{UnitID: 21, BranchID: testBranch, ProductID: 9, SKU: "A1000", Name: "Azucar 1000g", RetailPrice: 30, WholesalePrice: 28},
		{UnitID: 22, BranchID: testBranch, ProductID: 10, SKU: "TE_V", Name: "te_verde", RetailPrice: 15, WholesalePrice: 13},
		{UnitID: 23, BranchID: testBranch, ProductID: 11, SKU: "TEAV", Name: "teaverde", RetailPrice: 15, WholesalePrice: 13},
	}
	require.NoError(t, repo.ReplaceAll(ctx, testBranch, units))

	// "%" is a literal character in the operator's term, not a wildcard
	rows, err := repo.Search(ctx, testBranch, "100%")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "D100", rows[0].SKU)

	// same for "_"
	rows, err = repo.Search(ctx, testBranch, "e_v")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "TE_V", rows[0].SKU)
}

func TestStockForReadsSnapshot(t *testing.T) {
	fetcher := &stubFetcher{units: sampleWires()}
	svc, _ := newTestService(t, fetcher)
	ctx := context.Background()

	_, err := svc.Sync(ctx)
	require.NoError(t, err)

	stock, err := svc.StockFor(ctx, []int64{10, 12, 999})
	require.NoError(t, err)
	require.Equal(t, 40.0, stock[10])
	require.Equal(t, 8.0, stock[12])
	_, ok := stock[999]
	require.False(t, ok)
}
