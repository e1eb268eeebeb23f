// dao/audit_log_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/model"
)

type AuditLogDAO struct {
	db *gorm.DB
}

func NewAuditLogDAO(db *gorm.DB) *AuditLogDAO {
	return &AuditLogDAO{db: db}
}

// Create persists one audit event. Field values pass through the codec
// inside the driver binding; the id is assigned by the store.
func (d *AuditLogDAO) Create(ctx context.Context, log *model.AuditLog) error {
	if err := d.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (d *AuditLogDAO) GetByID(ctx context.Context, id uint64) (*model.AuditLog, error) {
	var log model.AuditLog
	err := d.db.WithContext(ctx).First(&log, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tb_errors.ErrAuditLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// ListWindowPage returns one page of events in [from, to], newest first.
func (d *AuditLogDAO) ListWindowPage(ctx context.Context, from, to time.Time, limit, offset int) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := d.windowQuery(ctx, from, to).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// ListWindow returns every event in [from, to], newest first. Used when
// subject/action filters must be applied after decryption.
func (d *AuditLogDAO) ListWindow(ctx context.Context, from, to time.Time) ([]model.AuditLog, error) {
	var logs []model.AuditLog
	err := d.windowQuery(ctx, from, to).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (d *AuditLogDAO) CountWindow(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := d.windowQuery(ctx, from, to).Model(&model.AuditLog{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, err)
	}
	return count, nil
}

// DeleteOlderThan removes events created before the cutoff and reports
// how many rows went away. Retention purge only; nothing else deletes.
func (d *AuditLogDAO) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := d.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, res.Error)
	}
	return res.RowsAffected, nil
}

func (d *AuditLogDAO) windowQuery(ctx context.Context, from, to time.Time) *gorm.DB {
	q := d.db.WithContext(ctx)
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at <= ?", to)
	}
	return q
}
