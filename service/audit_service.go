// service/audit_service.go
package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
	"github.com/tracebit-io/tracebit/util"
)

// AuditLogStore is the persistence surface the ingestion service needs.
type AuditLogStore interface {
	Create(ctx context.Context, log *model.AuditLog) error
	GetByID(ctx context.Context, id uint64) (*model.AuditLog, error)
	ListWindowPage(ctx context.Context, from, to time.Time, limit, offset int) ([]model.AuditLog, error)
	ListWindow(ctx context.Context, from, to time.Time) ([]model.AuditLog, error)
	CountWindow(ctx context.Context, from, to time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditLogCache is the read-through cache for id lookups. Get returns
// nil on a miss.
type AuditLogCache interface {
	Get(ctx context.Context, id uint64) (*model.AuditLog, error)
	Set(ctx context.Context, log *model.AuditLog) error
}

// AlertEvaluator runs the rule engine against a freshly persisted event.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, log *model.AuditLog)
}

// IAuditLogService is the ingestion and query surface exposed to the
// HTTP layer.
type IAuditLogService interface {
	Submit(ctx context.Context, req model.AuditLogRequest) error
	GetByID(ctx context.Context, id uint64) (*model.AuditLog, error)
	Search(ctx context.Context, q model.AuditLogSearch) ([]model.AuditLog, model.Pagination, error)
}

type AuditLogService struct {
	store     AuditLogStore
	cache     AuditLogCache
	alerts    AlertEvaluator
	pool      *WorkerPool
	validator *util.ValidationUtil

	retention time.Duration
	purgeDone chan struct{}
	purgeOnce sync.Once
}

func NewAuditLogService(store AuditLogStore, cache AuditLogCache, alerts AlertEvaluator, pool *WorkerPool) *AuditLogService {
	return &AuditLogService{
		store:     store,
		cache:     cache,
		alerts:    alerts,
		pool:      pool,
		validator: util.NewValidationUtil(),
		purgeDone: make(chan struct{}),
	}
}

// Submit validates the payload and acknowledges it. Persistence, rule
// matching, and webhook dispatch run afterwards on the worker pool; a
// validated event that is acknowledged may still be lost if the queue is
// saturated or a later stage fails.
func (s *AuditLogService) Submit(ctx context.Context, req model.AuditLogRequest) error {
	if verr := s.validator.ValidateAuditLogRequest(req); verr != nil {
		return verr
	}

	log := &model.AuditLog{
		UserID: model.EncryptedString(req.UserID),
		Action: model.EncryptedString(req.Action),
		Target: model.EncryptedString(req.Target),
		Meta: model.MetaData{
			IP:       model.EncryptedString(req.Meta.IP),
			Device:   model.EncryptedString(req.Meta.Device),
			Location: model.EncryptedString(req.Meta.Location),
		},
		CreatedAt: time.Now().UTC(),
	}

	if ok := s.pool.Submit(func() { s.persistAndEvaluate(log) }); !ok {
		logging.Warn("Ingestion queue saturated, audit event dropped",
			zap.Uint64("totalDropped", s.pool.Dropped()))
	}
	return nil
}

// persistAndEvaluate is the async tail of ingestion. Failures are
// logged and swallowed; the client was already acknowledged.
func (s *AuditLogService) persistAndEvaluate(log *model.AuditLog) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.store.Create(ctx, log); err != nil {
		logging.Error("Failed to persist audit log", zap.Error(err))
		return
	}
	logging.Debug("Audit log persisted", zap.Uint64("auditLogID", log.ID))

	s.alerts.Evaluate(ctx, log)
}

// GetByID serves id lookups through the cache. Cache failures degrade
// to a store read.
func (s *AuditLogService) GetByID(ctx context.Context, id uint64) (*model.AuditLog, error) {
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		logging.Warn("Audit log cache read failed", zap.Uint64("auditLogID", id), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	log, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, log); err != nil {
		logging.Warn("Audit log cache write failed", zap.Uint64("auditLogID", id), zap.Error(err))
	}
	return log, nil
}

// Search lists events in a time window, newest first. Subject and
// action values are encrypted with a random nonce, so those filters
// cannot be pushed into SQL; when present, the window is scanned and
// filtered after decryption.
func (s *AuditLogService) Search(ctx context.Context, q model.AuditLogSearch) ([]model.AuditLog, model.Pagination, error) {
	userID := strings.TrimSpace(q.UserID)
	action := strings.TrimSpace(q.Action)

	if userID == "" && action == "" {
		total, err := s.store.CountWindow(ctx, q.From, q.To)
		if err != nil {
			return nil, model.Pagination{}, err
		}
		logs, err := s.store.ListWindowPage(ctx, q.From, q.To, q.Size, q.Page*q.Size)
		if err != nil {
			return nil, model.Pagination{}, err
		}
		return logs, paginate(q.Page, q.Size, total), nil
	}

	window, err := s.store.ListWindow(ctx, q.From, q.To)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	matched := make([]model.AuditLog, 0, len(window))
	for _, log := range window {
		if userID != "" && !strings.EqualFold(log.UserID.String(), userID) {
			continue
		}
		if action != "" && !strings.EqualFold(log.Action.String(), action) {
			continue
		}
		matched = append(matched, log)
	}

	start := q.Page * q.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], paginate(q.Page, q.Size, int64(len(matched))), nil
}

func paginate(page, size int, total int64) model.Pagination {
	totalPages := int((total + int64(size) - 1) / int64(size))
	return model.Pagination{
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}
}

// StartRetentionPurge begins the daily purge of events older than the
// retention window. A non-positive retention disables purging.
func (s *AuditLogService) StartRetentionPurge(retentionDays int) {
	if retentionDays <= 0 {
		logging.Warn("Retention purge disabled", zap.Int("retentionDays", retentionDays))
		return
	}
	s.retention = time.Duration(retentionDays) * 24 * time.Hour
	go s.purgeLoop()
}

func (s *AuditLogService) purgeLoop() {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	s.purgeExpired()
	for {
		select {
		case <-ticker.C:
			s.purgeExpired()
		case <-s.purgeDone:
			return
		}
	}
}

func (s *AuditLogService) purgeExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.retention)
	removed, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logging.Error("Retention purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		logging.Info("Retention purge removed expired audit logs",
			zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	}
}

// StopRetentionPurge stops the purge loop. Call during shutdown.
func (s *AuditLogService) StopRetentionPurge() {
	s.purgeOnce.Do(func() {
		close(s.purgeDone)
	})
}
