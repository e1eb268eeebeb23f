// service/alert_service.go
package service

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	tb_errors "github.com/tracebit-io/tracebit/errors"
	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
)

// maxConcurrentDispatches caps webhook fan-out per evaluated event.
const maxConcurrentDispatches = 8

// AlertRuleStore is the persistence surface the rule service needs.
type AlertRuleStore interface {
	Create(ctx context.Context, rule *model.AlertRule) error
	Update(ctx context.Context, rule *model.AlertRule) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.AlertRule, error)
	ListActive(ctx context.Context) ([]model.AlertRule, error)
	ListActiveByStartup(ctx context.Context, startupID string) ([]model.AlertRule, error)
}

// WebhookNotifier delivers a single alert notification.
type WebhookNotifier interface {
	Notify(ctx context.Context, rule *model.AlertRule, log *model.AuditLog) error
}

// IAlertRuleService manages alert rules and evaluates them against
// persisted audit events.
type IAlertRuleService interface {
	CreateRule(ctx context.Context, req model.AlertRuleRequest) (*model.AlertRule, error)
	UpdateRule(ctx context.Context, id uint64, req model.AlertRuleRequest) (*model.AlertRule, error)
	DeleteRule(ctx context.Context, id uint64) error
	GetRuleByID(ctx context.Context, id uint64) (*model.AlertRule, error)
	GetActiveRulesByStartup(ctx context.Context, startupID string) ([]model.AlertRule, error)
	Evaluate(ctx context.Context, log *model.AuditLog)
}

type AlertRuleService struct {
	rules    AlertRuleStore
	webhooks WebhookNotifier

	// compiled REGEX patterns keyed by rule id, invalidated on update
	// and delete. An entry is reused only while its pattern text still
	// matches the rule being evaluated.
	mu         sync.RWMutex
	regexCache map[uint64]*compiledPattern
}

type compiledPattern struct {
	pattern string
	re      *regexp.Regexp
}

func NewAlertRuleService(rules AlertRuleStore, webhooks WebhookNotifier) *AlertRuleService {
	return &AlertRuleService{
		rules:      rules,
		webhooks:   webhooks,
		regexCache: make(map[uint64]*compiledPattern),
	}
}

func (s *AlertRuleService) CreateRule(ctx context.Context, req model.AlertRuleRequest) (*model.AlertRule, error) {
	if verr := validateRuleRequest(req); verr != nil {
		return nil, verr
	}

	rule := ruleFromRequest(req)
	rule.CreatedAt = time.Now().UTC()

	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, err
	}

	logging.Info("Alert rule created",
		zap.Uint64("ruleID", rule.ID),
		zap.String("startupID", rule.StartupID),
		zap.String("name", rule.Name))
	return rule, nil
}

func (s *AlertRuleService) UpdateRule(ctx context.Context, id uint64, req model.AlertRuleRequest) (*model.AlertRule, error) {
	if verr := validateRuleRequest(req); verr != nil {
		return nil, verr
	}

	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.Name = req.Name
	rule.Description = req.Description
	rule.StartupID = req.StartupID
	rule.MatchType = req.MatchType
	rule.MatchField = req.MatchField
	rule.Pattern = model.EncryptedString(req.Pattern)
	rule.CallbackURL = model.EncryptedString(req.CallbackURL)
	rule.SecretToken = req.SecretToken
	rule.Active = *req.Active
	now := time.Now().UTC()
	rule.UpdatedAt = &now

	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.invalidateRegex(id)

	logging.Info("Alert rule updated", zap.Uint64("ruleID", id))
	return rule, nil
}

func (s *AlertRuleService) DeleteRule(ctx context.Context, id uint64) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateRegex(id)

	logging.Info("Alert rule deleted", zap.Uint64("ruleID", id))
	return nil
}

func (s *AlertRuleService) GetRuleByID(ctx context.Context, id uint64) (*model.AlertRule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *AlertRuleService) GetActiveRulesByStartup(ctx context.Context, startupID string) ([]model.AlertRule, error) {
	return s.rules.ListActiveByStartup(ctx, startupID)
}

// Evaluate runs every active rule against the event and dispatches a
// webhook for each match. Rules are independent: a dispatch failure is
// logged and never stops the others.
func (s *AlertRuleService) Evaluate(ctx context.Context, log *model.AuditLog) {
	rules, err := s.rules.ListActive(ctx)
	if err != nil {
		logging.Error("Failed to load alert rules for evaluation",
			zap.Uint64("auditLogID", log.ID), zap.Error(err))
		return
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDispatches)

	for i := range rules {
		rule := rules[i]
		if !s.matches(&rule, log) {
			continue
		}

		logging.Info("Alert rule matched",
			zap.Uint64("ruleID", rule.ID),
			zap.String("ruleName", rule.Name),
			zap.Uint64("auditLogID", log.ID))

		g.Go(func() error {
			if err := s.webhooks.Notify(ctx, &rule, log); err != nil {
				logging.Error("Webhook dispatch failed",
					zap.Uint64("ruleID", rule.ID),
					zap.Uint64("auditLogID", log.ID),
					zap.Error(err))
			}
			return nil
		})
	}

	g.Wait()
}

func (s *AlertRuleService) matches(rule *model.AlertRule, log *model.AuditLog) bool {
	var value string
	switch rule.MatchField {
	case model.MatchFieldSubjectID:
		value = log.UserID.String()
	case model.MatchFieldAction:
		value = log.Action.String()
	case model.MatchFieldTarget:
		value = log.Target.String()
	default:
		return false
	}

	pattern := rule.Pattern.String()
	if value == "" || pattern == "" {
		return false
	}

	switch rule.MatchType {
	case model.MatchTypeExact:
		return strings.EqualFold(value, pattern)
	case model.MatchTypeContains:
		return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
	case model.MatchTypeRegex:
		re := s.compiledRegex(rule.ID, pattern)
		return re != nil && re.MatchString(value)
	}
	return false
}

// compiledRegex returns the cached whole-string matcher for the rule,
// compiling and caching it on first use.
func (s *AlertRuleService) compiledRegex(ruleID uint64, pattern string) *regexp.Regexp {
	s.mu.RLock()
	cached, ok := s.regexCache[ruleID]
	s.mu.RUnlock()
	if ok && cached.pattern == pattern {
		return cached.re
	}

	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		// rules are validated on write, so this is a stored rule that
		// predates validation; skip it rather than fail the evaluation
		logging.Warn("Skipping rule with malformed regex pattern",
			zap.Uint64("ruleID", ruleID), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.regexCache[ruleID] = &compiledPattern{pattern: pattern, re: re}
	s.mu.Unlock()
	return re
}

func (s *AlertRuleService) invalidateRegex(ruleID uint64) {
	s.mu.Lock()
	delete(s.regexCache, ruleID)
	s.mu.Unlock()
}

func validateRuleRequest(req model.AlertRuleRequest) error {
	fields := make(map[string]string)

	if !req.MatchType.Valid() {
		fields["matchType"] = "must be one of EXACT, CONTAINS, REGEX"
	}
	if !req.MatchField.Valid() {
		fields["matchField"] = "must be one of SUBJECT_ID, ACTION, TARGET"
	}
	if req.MatchType == model.MatchTypeRegex {
		if _, err := regexp.Compile(req.Pattern); err != nil {
			fields["pattern"] = "must be a valid regular expression"
		}
	}

	if len(fields) > 0 {
		return tb_errors.NewValidationError("Alert rule validation failed", fields)
	}
	return nil
}

func ruleFromRequest(req model.AlertRuleRequest) *model.AlertRule {
	return &model.AlertRule{
		Name:        req.Name,
		Description: req.Description,
		StartupID:   req.StartupID,
		MatchType:   req.MatchType,
		MatchField:  req.MatchField,
		Pattern:     model.EncryptedString(req.Pattern),
		CallbackURL: model.EncryptedString(req.CallbackURL),
		SecretToken: req.SecretToken,
		Active:      *req.Active,
	}
}
