package shift

import (
	"context"
	"strconv"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/internal/backend"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/logger"
)

type shiftBackend interface {
	ExistShift(ctx context.Context, cashierID, branchID int) (*backend.ExistShiftResult, error)
	OpenShift(ctx context.Context, req backend.OpenShiftRequest) (*backend.OpenShiftResult, error)
	CloseShift(ctx context.Context, req backend.CloseShiftRequest) (*backend.CloseShiftResult, error)
	RecordMovement(ctx context.Context, req backend.MovementRequest) error
}

type stateStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
}

// Status describes the shift the terminal is currently attached to.
type Status struct {
	Open     bool   `json:"abierto"`
	ShiftID  int64  `json:"id_turno,omitempty"`
	OpenedAt string `json:"fecha_apertura,omitempty"`
	Resumed  bool   `json:"recuperado,omitempty"`
}

// Service manages the cashier shift lifecycle. Every operation talks to the
// backend; shifts are a back-office concern and are never created offline.
type Service interface {
	Open(ctx context.Context, openingCash float64, notes string) (*Status, error)
	Current(ctx context.Context) (*Status, error)
	CurrentID(ctx context.Context) (*int64, error)
	Close(ctx context.Context, countedCash float64, notes string) (*backend.CloseShiftResult, error)
	RecordMovement(ctx context.Context, kind string, amount float64, concept string) error
}

type service struct {
	backend   shiftBackend
	state     stateStore
	cashierID int
	branchID  int
	logg      *logger.Logger
}

// NewService builds the shift manager for this terminal's cashier and branch.
func NewService(be shiftBackend, state stateStore, cashierID, branchID int, logg *logger.Logger) (Service, error) {
	if be == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shift backend required")
	}
	if state == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "state store required")
	}
	return &service{
		backend:   be,
		state:     state,
		cashierID: cashierID,
		branchID:  branchID,
		logg:      logg,
	}, nil
}

// Open attaches the terminal to a shift. When the backend already has an open
// shift for this cashier and branch, that shift is adopted instead of opening
// a duplicate, so retrying after a crash or a dropped response is safe.
func (s *service) Open(ctx context.Context, openingCash float64, notes string) (*Status, error) {
	if openingCash < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "opening cash cannot be negative")
	}

	existing, err := s.backend.ExistShift(ctx, s.cashierID, s.branchID)
	if err != nil {
		return nil, err
	}
	if existing.Exists && existing.ShiftID != nil {
		if err := s.setCurrent(ctx, *existing.ShiftID); err != nil {
			return nil, err
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithShiftID(ctx, *existing.ShiftID), "resumed open shift")
		}
		return &Status{Open: true, ShiftID: *existing.ShiftID, Resumed: true}, nil
	}

	opened, err := s.backend.OpenShift(ctx, backend.OpenShiftRequest{
		CashierID:   s.cashierID,
		BranchID:    s.branchID,
		OpeningCash: openingCash,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}
	if err := s.setCurrent(ctx, opened.ShiftID); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithShiftID(ctx, opened.ShiftID), "shift opened")
	}
	return &Status{Open: true, ShiftID: opened.ShiftID, OpenedAt: opened.OpenedAt}, nil
}

// Current reports the locally tracked shift without touching the backend.
func (s *service) Current(ctx context.Context) (*Status, error) {
	id, err := s.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return &Status{}, nil
	}
	return &Status{Open: true, ShiftID: *id}, nil
}

// CurrentID returns the tracked shift id, or nil when no shift is open.
func (s *service) CurrentID(ctx context.Context) (*int64, error) {
	value, found, err := s.state.Get(ctx, models.StateKeyCurrentShift)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read shift pointer")
	}
	if !found {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse shift pointer")
	}
	return &id, nil
}

// Close settles the tracked shift against the counted cash. The local pointer
// is cleared only after the backend confirms; a failed close leaves the shift
// attached so the cashier can retry.
func (s *service) Close(ctx context.Context, countedCash float64, notes string) (*backend.CloseShiftResult, error) {
	if countedCash < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counted cash cannot be negative")
	}
	id, err := s.CurrentID(ctx)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no open shift to close")
	}

	result, err := s.backend.CloseShift(ctx, backend.CloseShiftRequest{
		ShiftID:     *id,
		CashierID:   s.cashierID,
		CountedCash: countedCash,
		Notes:       notes,
	})
	if err != nil {
		return nil, err
	}

	// the drawer difference is recomputed locally so a stale backend build
	// cannot hand the cashier an inconsistent report
	result.Summary.CountedCash = countedCash
	result.Summary.Difference = countedCash - result.Summary.ExpectedCash

	if err := s.state.Clear(ctx, models.StateKeyCurrentShift); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear shift pointer")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithShiftID(ctx, *id), "shift closed")
	}
	return result, nil
}

// RecordMovement registers a deposit, withdrawal or expense against the
// tracked shift.
func (s *service) RecordMovement(ctx context.Context, kind string, amount float64, concept string) error {
	switch kind {
	case backend.MovementDeposit, backend.MovementWithdrawal, backend.MovementExpense:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown movement kind").
			WithDetails(map[string]any{"tipo": kind})
	}
	if amount <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "movement amount must be greater than zero")
	}
	id, err := s.CurrentID(ctx)
	if err != nil {
		return err
	}
	if id == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no open shift")
	}
	return s.backend.RecordMovement(ctx, backend.MovementRequest{
		ShiftID:   *id,
		CashierID: s.cashierID,
		Kind:      kind,
		Amount:    amount,
		Concept:   concept,
	})
}

func (s *service) setCurrent(ctx context.Context, id int64) error {
	if err := s.state.Set(ctx, models.StateKeyCurrentShift, strconv.FormatInt(id, 10)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store shift pointer")
	}
	return nil
}
