package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"loadplan/internal/model"
	"loadplan/internal/store"
)

func TestWorkerDeliversSignedPayload(t *testing.T) {
	var gotSig atomic.Value
	var gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody.Store(body)
		gotSig.Store(r.Header.Get("X-Signature"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := store.NewMemory()
	ctx := context.Background()
	sub, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		TenantID: "t1", URL: srv.URL, Events: []string{"evaluation.completed"}, Secret: "shh",
	})
	require.NoError(t, err)

	pub := NewPublisher(m)
	pub.Emit(ctx, "t1", "evaluation.completed", map[string]any{"routeId": "RT-1", "feasible": true})

	w := NewWorker(m)
	w.processOnce()

	body, ok := gotBody.Load().([]byte)
	require.True(t, ok, "endpoint was not called")
	sig, _ := gotSig.Load().(string)
	require.True(t, VerifyHMAC("shh", body, sig))

	var payload struct {
		Type     string         `json:"type"`
		TenantID string         `json:"tenantId"`
		Data     map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "evaluation.completed", payload.Type)
	require.Equal(t, "t1", payload.TenantID)
	require.Equal(t, "RT-1", payload.Data["routeId"])

	// Delivered items leave the queue.
	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)
	_ = sub
}

func TestWorkerRetriesThenFails(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := store.NewMemory()
	ctx := context.Background()
	id, err := m.EnqueueWebhook(ctx, "t1", "sub-1", "evaluation.infeasible", srv.URL, "", []byte(`{}`))
	require.NoError(t, err)

	w := NewWorker(m)
	w.MaxAttempts = 2

	w.processOnce()
	require.Equal(t, int32(1), calls.Load())

	// First failure schedules a retry in the future, so nothing is due now.
	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)

	// Force the retry due and exhaust attempts.
	past := pastTime()
	require.NoError(t, m.MarkWebhookDelivery(ctx, id, false, &past, "", 503, 0))
	w.processOnce()

	due, err = m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due, "failed delivery must not be retried")
}

func pastTime() time.Time { return time.Now().Add(-time.Minute) }

func TestPublisherSkipsUnmatchedEvents(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	_, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		TenantID: "t1", URL: "https://example.invalid/hook", Events: []string{"scenario.analyzed"},
	})
	require.NoError(t, err)

	pub := NewPublisher(m)
	pub.Emit(ctx, "t1", "evaluation.completed", map[string]any{})

	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestSignatureRoundTrip(t *testing.T) {
	body := []byte(`{"hello":"world"}`)
	sig := SignHMAC("secret", body)
	require.True(t, VerifyHMAC("secret", body, sig))
	require.False(t, VerifyHMAC("wrong", body, sig))
	require.False(t, VerifyHMAC("secret", []byte(`tampered`), sig))
	require.False(t, VerifyHMAC("secret", body, "not-hex"))
}
