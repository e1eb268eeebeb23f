// service/webhook_service.go
package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tracebit-io/tracebit/model"
)

// HeaderSignature carries the webhook signature when the rule has a
// secret configured: HMAC-SHA256 over the JSON body by default, or the
// raw shared token when legacy-signature mode is on.
const HeaderSignature = "X-TRACEBIT-SIGNATURE"

// WebhookService delivers alert notifications. Delivery is strictly
// best-effort: one attempt, no retry, no dead-letter.
type WebhookService struct {
	client          *http.Client
	legacySignature bool
}

func NewWebhookService(timeout time.Duration, legacySignature bool) *WebhookService {
	return &WebhookService{
		client:          &http.Client{Timeout: timeout},
		legacySignature: legacySignature,
	}
}

// Notify POSTs the match payload to the rule's callback URL.
func (w *WebhookService) Notify(ctx context.Context, rule *model.AlertRule, log *model.AuditLog) error {
	payload := model.AlertWebhookPayload{
		RuleID:     rule.ID,
		RuleName:   rule.Name,
		MatchField: rule.MatchField,
		MatchType:  rule.MatchType,
		AuditLogID: log.ID,
		UserID:     log.UserID.String(),
		Action:     log.Action.String(),
		Target:     log.Target.String(),
		Timestamp:  log.CreatedAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rule.CallbackURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if token := strings.TrimSpace(rule.SecretToken); token != "" {
		req.Header.Set(HeaderSignature, w.sign(token, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook delivery failed: callback returned %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookService) sign(token string, body []byte) string {
	if w.legacySignature {
		return token
	}
	mac := hmac.New(sha256.New, []byte(token))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
