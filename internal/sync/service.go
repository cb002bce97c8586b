package sync

import (
	"context"
	"encoding/json"
	"fmt"
	stdsync "sync"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/printer"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/metrics"
	"github.com/google/uuid"
)

type submitter interface {
	SubmitSale(ctx context.Context, req backend.SaleRequest) (string, error)
}

type stockReader interface {
	StockFor(ctx context.Context, unitIDs []int64) (map[int64]float64, error)
}

type shiftResolver interface {
	CurrentID(ctx context.Context) (*int64, error)
}

type connectivityState interface {
	Online() bool
	SetOnline(ctx context.Context, online bool)
}

// Service records finished sales durably: online when possible, through the
// local queue otherwise, replaying the queue on reconnect.
type Service interface {
	SubmitSale(ctx context.Context, sale Sale) (*Result, error)
	DrainQueue(ctx context.Context) error
	ListPending(ctx context.Context) ([]Sale, error)
}

type service struct {
	repo       *Repository
	backend    submitter
	stock      stockReader
	shifts     shiftResolver
	conn       connectivityState
	notifier   *printer.Notifier
	logg       *logger.Logger
	metrics    *metrics.SyncMetrics
	drainBatch int

	drainMu stdsync.Mutex
}

// NewService builds the sync engine.
func NewService(repo *Repository, submit submitter, stock stockReader, shifts shiftResolver, conn connectivityState, notifier *printer.Notifier, logg *logger.Logger, m *metrics.SyncMetrics, drainBatch int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pending sale repository required")
	}
	if submit == nil {
		return nil, fmt.Errorf("backend submitter required")
	}
	if conn == nil {
		return nil, fmt.Errorf("connectivity state required")
	}
	if drainBatch <= 0 {
		drainBatch = 50
	}
	return &service{
		repo:       repo,
		backend:    submit,
		stock:      stock,
		shifts:     shifts,
		conn:       conn,
		notifier:   notifier,
		logg:       logg,
		metrics:    m,
		drainBatch: drainBatch,
	}, nil
}

// SubmitSale validates the payload, then records it online or queues it
// offline. Transport failures never reach the operator.
func (s *service) SubmitSale(ctx context.Context, sale Sale) (*Result, error) {
	if err := s.validate(ctx, &sale); err != nil {
		return nil, err
	}

	if sale.IdempotencyKey == "" {
		sale.IdempotencyKey = uuid.NewString()
	}
	if sale.ShiftID == nil && s.shifts != nil {
		shiftID, err := s.shifts.CurrentID(ctx)
		if err == nil {
			sale.ShiftID = shiftID
		}
	}

	if s.conn.Online() {
		folio, err := s.backend.SubmitSale(ctx, sale.toRequest())
		if err == nil {
			s.metrics.IncSubmitted(metrics.OutcomeOnline)
			s.notify(ctx, sale, folio, "", false)
			if s.logg != nil {
				s.logg.Info(s.logg.WithFolio(ctx, folio), "sale recorded online")
			}
			return &Result{Folio: folio}, nil
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNetwork {
			// business rejection, not a transport failure
			return nil, err
		}
		s.conn.SetOnline(ctx, false)
	}

	row, err := s.repo.Enqueue(ctx, sale)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queue sale")
	}
	s.metrics.IncSubmitted(metrics.OutcomeQueued)
	s.refreshQueueDepth(ctx)
	s.notify(ctx, sale, "", row.LocalID.String(), true)
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "local_id", row.LocalID.String()), "sale queued offline")
	}
	return &Result{LocalID: row.LocalID.String(), Queued: true}, nil
}

// DrainQueue replays queued sales in FIFO order. The first failure aborts the
// pass and leaves the remainder untouched; a pass already in progress makes
// this call a no-op.
func (s *service) DrainQueue(ctx context.Context) error {
	if !s.drainMu.TryLock() {
		return nil
	}
	defer s.drainMu.Unlock()

	rows, err := s.repo.ListPending(ctx, s.drainBatch)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending sales")
	}

	for _, row := range rows {
		var sale Sale
		if err := json.Unmarshal(row.Payload, &sale); err != nil {
			// unreadable payload would wedge the queue forever; park it in a
			// terminal status so later passes stop re-reading it
			if s.logg != nil {
				s.logg.Error(s.logg.WithField(ctx, "local_id", row.LocalID.String()), "corrupt queued sale payload", err)
			}
			if markErr := s.repo.MarkCorrupt(ctx, row.LocalID, err); markErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, markErr, "park corrupt sale")
			}
			continue
		}

		if _, err := s.backend.SubmitSale(ctx, sale.toRequest()); err != nil {
			_ = s.repo.MarkFailed(ctx, row.LocalID, err)
			s.metrics.IncDrainAborted()
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNetwork {
				s.conn.SetOnline(ctx, false)
			}
			if s.logg != nil {
				s.logg.Error(s.logg.WithField(ctx, "local_id", row.LocalID.String()), "drain pass aborted", err)
			}
			return err
		}

		if err := s.repo.Remove(ctx, row.LocalID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "dequeue acknowledged sale")
		}
		s.metrics.IncDrained()
		if s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "local_id", row.LocalID.String()), "queued sale confirmed")
		}
	}

	s.refreshQueueDepth(ctx)
	return nil
}

// ListPending exposes the queued sales for the UI's pending view.
func (s *service) ListPending(ctx context.Context) ([]Sale, error) {
	rows, err := s.repo.ListPending(ctx, 0)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending sales")
	}
	sales := make([]Sale, 0, len(rows))
	for _, row := range rows {
		var sale Sale
		if err := json.Unmarshal(row.Payload, &sale); err != nil {
			continue
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// validate enforces the payload-level rules checked before any network IO.
func (s *service) validate(ctx context.Context, sale *Sale) error {
	if len(sale.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	var total float64
	for _, line := range sale.Lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be greater than zero").
				WithDetails(map[string]any{"unit_id": line.UnitID})
		}
		total += line.Subtotal
	}
	sale.Total = total

	if sale.PaymentMethod == PaymentCash && sale.AmountTendered < total {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount tendered is less than the total").
			WithDetails(map[string]any{"total": total, "tendered": sale.AmountTendered})
	}

	return s.recheckStock(ctx, sale)
}

// recheckStock revalidates availability against the freshest snapshot; stock
// moves between add-time and checkout in a way prices do not.
func (s *service) recheckStock(ctx context.Context, sale *Sale) error {
	if s.stock == nil {
		return nil
	}
	unitIDs := make([]int64, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		unitIDs = append(unitIDs, line.UnitID)
	}
	stock, err := s.stock.StockFor(ctx, unitIDs)
	if err != nil {
		return nil // snapshot unreadable; nothing fresher to check against
	}

	var short []map[string]any
	for _, line := range sale.Lines {
		available, known := stock[line.UnitID]
		if known && line.Quantity > available {
			short = append(short, map[string]any{
				"unit_id":   line.UnitID,
				"name":      line.Name,
				"requested": line.Quantity,
				"available": available,
			})
		}
	}
	if len(short) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "insufficient stock").
			WithDetails(map[string]any{"lines": short})
	}
	return nil
}

func (s *service) notify(ctx context.Context, sale Sale, folio, localID string, queued bool) {
	if s.notifier == nil {
		return
	}
	lines := make([]printer.TicketLine, 0, len(sale.Lines))
	for _, line := range sale.Lines {
		lines = append(lines, printer.TicketLine{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		})
	}
	change := sale.AmountTendered - sale.Total
	if sale.PaymentMethod != PaymentCash {
		change = 0
	}
	s.notifier.Notify(ctx, printer.TicketDescriptor{
		Folio:          folio,
		LocalID:        localID,
		QueuedOffline:  queued,
		Lines:          lines,
		Total:          sale.Total,
		AmountTendered: sale.AmountTendered,
		Change:         change,
		PaymentMethod:  sale.PaymentMethod,
	}, sale.PaymentMethod == PaymentCash)
}

func (s *service) refreshQueueDepth(ctx context.Context) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return
	}
	s.metrics.SetQueueDepth(count)
}
