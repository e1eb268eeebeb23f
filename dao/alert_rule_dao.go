// dao/alert_rule_dao.go
package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/model"
)

type AlertRuleDAO struct {
	db *gorm.DB
}

func NewAlertRuleDAO(db *gorm.DB) *AlertRuleDAO {
	return &AlertRuleDAO{db: db}
}

func (d *AlertRuleDAO) Create(ctx context.Context, rule *model.AlertRule) error {
	err := d.db.WithContext(ctx).Create(rule).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return tb_errors.ErrRuleConflict
	}
	if err != nil {
		return fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (d *AlertRuleDAO) Update(ctx context.Context, rule *model.AlertRule) error {
	err := d.db.WithContext(ctx).Save(rule).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return tb_errors.ErrRuleConflict
	}
	if err != nil {
		return fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, err)
	}
	return nil
}

func (d *AlertRuleDAO) Delete(ctx context.Context, id uint64) error {
	res := d.db.WithContext(ctx).Delete(&model.AlertRule{}, id)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, res.Error)
	}
	if res.RowsAffected == 0 {
		return tb_errors.ErrRuleNotFound
	}
	return nil
}

func (d *AlertRuleDAO) GetByID(ctx context.Context, id uint64) (*model.AlertRule, error) {
	var rule model.AlertRule
	err := d.db.WithContext(ctx).First(&rule, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tb_errors.ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActive returns every active rule across all tenants. Matching reads
// rules fresh on each evaluation; there is no rule cache.
func (d *AlertRuleDAO) ListActive(ctx context.Context) ([]model.AlertRule, error) {
	var rules []model.AlertRule
	err := d.db.WithContext(ctx).Where("active = ?", true).Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, err)
	}
	return rules, nil
}

// ListActiveByStartup returns a tenant's active rules.
func (d *AlertRuleDAO) ListActiveByStartup(ctx context.Context, startupID string) ([]model.AlertRule, error) {
	var rules []model.AlertRule
	err := d.db.WithContext(ctx).
		Where("startup_id = ? AND active = ?", startupID, true).
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tb_errors.ErrDatabaseOperation, err)
	}
	return rules, nil
}
