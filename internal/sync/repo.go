package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db"
	"github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/db/models"
	pkgerrors "github.com/GaelCM/Hermes-Pos-Lite-sub000/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists the offline sale queue. Rows are appended on enqueue
// and deleted only after the backend acknowledges the sale.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Enqueue stores the sale durably and returns its local id.
func (r *Repository) Enqueue(ctx context.Context, sale Sale) (*models.PendingSale, error) {
	key, err := uuid.Parse(sale.IdempotencyKey)
	if err != nil {
		key = uuid.New()
		sale.IdempotencyKey = key.String()
	}
	payload, err := json.Marshal(sale)
	if err != nil {
		return nil, err
	}
	row := models.PendingSale{
		LocalID:        uuid.New(),
		IdempotencyKey: key,
		Payload:        payload,
		Status:         models.PendingSaleStatusPending,
		QueuedAt:       time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsUniqueViolation(err, "pending_sales.idempotency_key") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sale already queued")
		}
		return nil, err
	}
	return &row, nil
}

// ListPending returns queued sales in FIFO order. rowid breaks ties between
// sales enqueued within the same clock tick.
func (r *Repository) ListPending(ctx context.Context, limit int) ([]models.PendingSale, error) {
	var rows []models.PendingSale
	q := r.db.WithContext(ctx).
		Where("status = ?", models.PendingSaleStatusPending).
		Order("queued_at ASC").
		Order("rowid ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

// Remove deletes an acknowledged sale from the queue.
func (r *Repository) Remove(ctx context.Context, localID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.PendingSale{}, "local_id = ?", localID).Error
}

// MarkFailed records a failed replay attempt without dequeuing.
func (r *Repository) MarkFailed(ctx context.Context, localID uuid.UUID, cause error) error {
	message := cause.Error()
	return r.db.WithContext(ctx).
		Model(&models.PendingSale{}).
		Where("local_id = ?", localID).
		Updates(map[string]any{
			"last_error":    message,
			"attempt_count": gorm.Expr("attempt_count + 1"),
		}).Error
}

// MarkCorrupt parks an unreadable row in a terminal status so it stops
// blocking the queue and leaves the depth count.
func (r *Repository) MarkCorrupt(ctx context.Context, localID uuid.UUID, cause error) error {
	message := cause.Error()
	return r.db.WithContext(ctx).
		Model(&models.PendingSale{}).
		Where("local_id = ?", localID).
		Updates(map[string]any{
			"status":     models.PendingSaleStatusFailed,
			"last_error": message,
		}).Error
}

// Count reports the number of queued sales.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PendingSale{}).
		Where("status = ?", models.PendingSaleStatusPending).
		Count(&count).Error
	return count, err
}
