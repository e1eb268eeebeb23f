// service/webhook_service_test.go
package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracebit-io/tracebit/model"
)

type capturedDelivery struct {
	body      []byte
	signature string
	hasSig    bool
}

func captureServer(t *testing.T, status int) (*httptest.Server, *capturedDelivery) {
	t.Helper()
	captured := &capturedDelivery{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured.body = body
		captured.signature = r.Header.Get(HeaderSignature)
		_, captured.hasSig = r.Header[http.CanonicalHeaderKey(HeaderSignature)]
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func webhookRule(callbackURL, token string) *model.AlertRule {
	return &model.AlertRule{
		ID:          7,
		Name:        "deletions",
		StartupID:   "startup-1",
		MatchType:   model.MatchTypeContains,
		MatchField:  model.MatchFieldAction,
		Pattern:     "delete",
		CallbackURL: model.EncryptedString(callbackURL),
		SecretToken: token,
		Active:      true,
	}
}

func webhookLog() *model.AuditLog {
	return &model.AuditLog{
		ID:        42,
		UserID:    "user_7",
		Action:    "ACCOUNT_DELETED",
		Target:    "billing",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotifyDeliversSignedPayload(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK)
	w := NewWebhookService(time.Second, false)

	err := w.Notify(context.Background(), webhookRule(srv.URL, "hook-secret"), webhookLog())
	require.NoError(t, err)

	var payload model.AlertWebhookPayload
	require.NoError(t, json.Unmarshal(captured.body, &payload))
	assert.Equal(t, uint64(7), payload.RuleID)
	assert.Equal(t, "deletions", payload.RuleName)
	assert.Equal(t, model.MatchFieldAction, payload.MatchField)
	assert.Equal(t, model.MatchTypeContains, payload.MatchType)
	assert.Equal(t, uint64(42), payload.AuditLogID)
	assert.Equal(t, "user_7", payload.UserID)
	assert.Equal(t, "ACCOUNT_DELETED", payload.Action)
	assert.Equal(t, "billing", payload.Target)

	mac := hmac.New(sha256.New, []byte("hook-secret"))
	mac.Write(captured.body)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), captured.signature)
}

func TestNotifyLegacySignatureSendsRawToken(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK)
	w := NewWebhookService(time.Second, true)

	err := w.Notify(context.Background(), webhookRule(srv.URL, "hook-secret"), webhookLog())
	require.NoError(t, err)
	assert.Equal(t, "hook-secret", captured.signature)
}

func TestNotifySkipsSignatureWithoutToken(t *testing.T) {
	srv, captured := captureServer(t, http.StatusOK)
	w := NewWebhookService(time.Second, false)

	err := w.Notify(context.Background(), webhookRule(srv.URL, ""), webhookLog())
	require.NoError(t, err)
	assert.False(t, captured.hasSig)
}

func TestNotifyFailsOnErrorStatus(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError)
	w := NewWebhookService(time.Second, false)

	err := w.Notify(context.Background(), webhookRule(srv.URL, "hook-secret"), webhookLog())
	assert.Error(t, err)
}

func TestNotifyFailsOnUnreachableCallback(t *testing.T) {
	w := NewWebhookService(100*time.Millisecond, false)

	err := w.Notify(context.Background(), webhookRule("http://127.0.0.1:1/callback", ""), webhookLog())
	assert.Error(t, err)
}
