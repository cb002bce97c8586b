package sync

import (
	"context"
	"testing"
	"time"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubSubmitter struct {
	folios   []string
	err      error
	failLeft int // fail the first N calls with a network error, then succeed
	failAt   int // 1-based call index that fails with a network error
	calls    int
	requests []backend.SaleRequest
}

func (s *stubSubmitter) SubmitSale(ctx context.Context, req backend.SaleRequest) (string, error) {
	s.calls++
	s.requests = append(s.requests, req)
	if s.failLeft > 0 {
		s.failLeft--
		return "", pkgerrors.New(pkgerrors.CodeNetwork, "backend unreachable")
	}
	if s.failAt > 0 && s.calls == s.failAt {
		return "", pkgerrors.New(pkgerrors.CodeNetwork, "backend unreachable")
	}
	if s.err != nil {
		return "", s.err
	}
	folio := "F-001"
	if len(s.folios) > 0 {
		folio = s.folios[0]
		s.folios = s.folios[1:]
	}
	return folio, nil
}

type stubStock struct {
	stock map[int64]float64
}

func (s *stubStock) StockFor(ctx context.Context, unitIDs []int64) (map[int64]float64, error) {
	if s.stock == nil {
		return map[int64]float64{}, nil
	}
	return s.stock, nil
}

type stubShifts struct {
	id *int64
}

func (s *stubShifts) CurrentID(ctx context.Context) (*int64, error) { return s.id, nil }

type stubConn struct {
	online bool
}

func (c *stubConn) Online() bool                                { return c.online }
func (c *stubConn) SetOnline(ctx context.Context, online bool) { c.online = online }

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.PendingSale{}))
	return NewRepository(conn)
}

func validSale() Sale {
	return Sale{
		Lines: []SaleLine{
			{UnitID: 10, ProductID: 4, SKU: "7501001", Name: "Azucar", Quantity: 2, UnitPrice: 28.5, Subtotal: 57},
			{UnitID: 11, ProductID: 5, SKU: "7501002", Name: "Refresco", Quantity: 1, UnitPrice: 18, Subtotal: 18},
		},
		Total:          75,
		PaymentMethod:  PaymentCash,
		AmountTendered: 100,
		CashierID:      7,
		BranchID:       2,
	}
}

func newTestService(t *testing.T, repo *Repository, sub *stubSubmitter, conn *stubConn, stock *stubStock) Service {
	t.Helper()
	shiftID := int64(55)
	var stockDep stockReader
	if stock != nil {
		stockDep = stock
	}
	svc, err := NewService(repo, sub, stockDep, &stubShifts{id: &shiftID}, conn, nil, nil, nil, 0)
	require.NoError(t, err)
	return svc
}

func TestSubmitSaleOnlineReturnsFolio(t *testing.T) {
	repo := newTestRepo(t)
	sub := &stubSubmitter{folios: []string{"F-777"}}
	svc := newTestService(t, repo, sub, &stubConn{online: true}, nil)

	res, err := svc.SubmitSale(context.Background(), validSale())
	require.NoError(t, err)
	require.Equal(t, "F-777", res.Folio)
	require.False(t, res.Queued)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, count, "online success must not queue")

	require.Len(t, sub.requests, 1)
	require.NotEmpty(t, sub.requests[0].IdempotencyKey, "every submit carries an idempotency token")
	require.NotNil(t, sub.requests[0].ShiftID)
	require.Equal(t, int64(55), *sub.requests[0].ShiftID)
}

func TestSubmitSaleQueuesWhenOffline(t *testing.T) {
	repo := newTestRepo(t)
	sub := &stubSubmitter{}
	svc := newTestService(t, repo, sub, &stubConn{online: false}, nil)

	res, err := svc.SubmitSale(context.Background(), validSale())
	require.NoError(t, err, "the operator is never blocked on connectivity")
	require.True(t, res.Queued)
	require.NotEmpty(t, res.LocalID)
	require.Empty(t, sub.requests, "known-offline submit must not touch the network")

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestSubmitSaleFallsBackToQueueOnTransportFailure(t *testing.T) {
	repo := newTestRepo(t)
	sub := &stubSubmitter{failLeft: 1}
	conn := &stubConn{online: true}
	svc := newTestService(t, repo, sub, conn, nil)

	res, err := svc.SubmitSale(context.Background(), validSale())
	require.NoError(t, err)
	require.True(t, res.Queued)
	require.False(t, conn.online, "a transport failure flips the connectivity state")

	count, _ := repo.Count(context.Background())
	require.Equal(t, int64(1), count)
}

func TestSubmitSaleSurfacesBusinessRejection(t *testing.T) {
	repo := newTestRepo(t)
	sub := &stubSubmitter{err: pkgerrors.New(pkgerrors.CodeValidation, "cliente bloqueado")}
	svc := newTestService(t, repo, sub, &stubConn{online: true}, nil)

	_, err := svc.SubmitSale(context.Background(), validSale())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())

	count, _ := repo.Count(context.Background())
	require.Zero(t, count, "business rejections are terminal, not queued")
}

func TestSubmitSaleValidation(t *testing.T) {
	repo := newTestRepo(t)
	sub := &stubSubmitter{}
	svc := newTestService(t, repo, sub, &stubConn{online: true}, nil)
	ctx := context.Background()

	_, err := svc.SubmitSale(ctx, Sale{PaymentMethod: PaymentCash})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), "empty cart")

	short := validSale()
	short.AmountTendered = 50
	_, err = svc.SubmitSale(ctx, short)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), "tendered below total")

	require.Empty(t, sub.requests, "validation happens before any network call")

	// card sales do not require tendered >= total
	card := validSale()
	card.PaymentMethod = PaymentCard
	card.AmountTendered = 0
	_, err = svc.SubmitSale(ctx, card)
	require.NoError(t, err)
}

func TestSubmitSaleStockRecheck(t *testing.T) {
	repo := newTestRepo(t)
	sub := &stubSubmitter{}
	stock := &stubStock{stock: map[int64]float64{10: 1, 11: 50}}
	svc := newTestService(t, repo, sub, &stubConn{online: true}, stock)

	_, err := svc.SubmitSale(context.Background(), validSale())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Empty(t, sub.requests, "stock shortfall is caught before the network")

	stock.stock[10] = 10
	_, err = svc.SubmitSale(context.Background(), validSale())
	require.NoError(t, err)
}

func TestDrainQueueFIFOAndAbortOnFailure(t *testing.T) {
	repo := newTestRepo(t)
	conn := &stubConn{online: false}
	sub := &stubSubmitter{}
	svc := newTestService(t, repo, sub, conn, nil)
	ctx := context.Background()

	// queue three sales offline, spaced so enqueue order is unambiguous
	for i := 0; i < 3; i++ {
		sale := validSale()
		sale.AmountTendered = 100 + float64(i)
		_, err := svc.SubmitSale(ctx, sale)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	// reconnect; the first replay lands, the second fails in transit
	conn.online = true
	firstPass := &stubSubmitter{failAt: 2}
	svc2 := newTestService(t, repo, firstPass, conn, nil)

	err := svc2.DrainQueue(ctx)
	require.Error(t, err)

	remaining, err := repo.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2, "failed entry and everything behind it stay queued")
	require.Equal(t, 1, remaining[0].AttemptCount, "failed head records the attempt")

	// next drain succeeds end to end
	svc3 := newTestService(t, repo, &stubSubmitter{}, conn, nil)
	require.NoError(t, svc3.DrainQueue(ctx))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)

	require.Equal(t, 100.0, firstPass.requests[0].AmountTendered, "drain replays oldest first")
}

func TestQueuedSaleKeepsIdempotencyKeyAcrossReplay(t *testing.T) {
	repo := newTestRepo(t)
	conn := &stubConn{online: false}
	sub := &stubSubmitter{}
	svc := newTestService(t, repo, sub, conn, nil)
	ctx := context.Background()

	_, err := svc.SubmitSale(ctx, validSale())
	require.NoError(t, err)

	rows, err := repo.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	queuedKey := rows[0].IdempotencyKey.String()

	conn.online = true
	require.NoError(t, svc.DrainQueue(ctx))
	require.Len(t, sub.requests, 1)
	require.Equal(t, queuedKey, sub.requests[0].IdempotencyKey, "replay reuses the original token")
}

func TestQueueSurvivesRestartAndDrainsAtBoot(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.PendingSale{}))

	repo := NewRepository(conn)
	offline := &stubConn{online: false}
	svc := newTestService(t, repo, &stubSubmitter{}, offline, nil)
	ctx := context.Background()

	_, err = svc.SubmitSale(ctx, validSale())
	require.NoError(t, err)

	// a new repository over the same store sees the queued sale
	rebooted := NewRepository(conn)
	rows, err := rebooted.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	queuedKey := rows[0].IdempotencyKey.String()

	// a restarted terminal with a healthy backend never sees an
	// offline→online edge, so the boot-time drain must replay the queue
	sub := &stubSubmitter{}
	bootSvc := newTestService(t, rebooted, sub, &stubConn{online: true}, nil)
	require.NoError(t, bootSvc.DrainQueue(ctx))

	count, err := rebooted.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Len(t, sub.requests, 1)
	require.Equal(t, queuedKey, sub.requests[0].IdempotencyKey)
}

func TestListPendingBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	queuedAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	want := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		row := models.PendingSale{
			LocalID:        uuid.New(),
			IdempotencyKey: uuid.New(),
			Payload:        []byte(`{}`),
			Status:         models.PendingSaleStatusPending,
			QueuedAt:       queuedAt,
		}
		require.NoError(t, repo.db.Create(&row).Error)
		want = append(want, row.LocalID.String())
	}

	rows, err := repo.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for i, row := range rows {
		require.Equal(t, want[i], row.LocalID.String(), "identical timestamps must replay in insertion order")
	}
}

func TestDrainParksCorruptPayload(t *testing.T) {
	repo := newTestRepo(t)
	conn := &stubConn{online: false}
	svc := newTestService(t, repo, &stubSubmitter{}, conn, nil)
	ctx := context.Background()

	corrupt := models.PendingSale{
		LocalID:        uuid.New(),
		IdempotencyKey: uuid.New(),
		Payload:        []byte(`{not json`),
		Status:         models.PendingSaleStatusPending,
		QueuedAt:       time.Now().Add(-time.Minute),
	}
	require.NoError(t, repo.db.Create(&corrupt).Error)

	_, err := svc.SubmitSale(ctx, validSale())
	require.NoError(t, err)

	conn.online = true
	sub := &stubSubmitter{}
	drainSvc := newTestService(t, repo, sub, conn, nil)
	require.NoError(t, drainSvc.DrainQueue(ctx))

	// the readable sale replayed, the corrupt one was parked for good
	require.Len(t, sub.requests, 1)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, count, "parked rows leave the queue depth")

	rows, err := repo.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, rows)

	var parked models.PendingSale
	require.NoError(t, repo.db.First(&parked, "local_id = ?", corrupt.LocalID).Error)
	require.Equal(t, models.PendingSaleStatusFailed, parked.Status)
	require.NotNil(t, parked.LastError)

	// later passes never touch it again
	require.NoError(t, drainSvc.DrainQueue(ctx))
	require.Len(t, sub.requests, 1)
}
