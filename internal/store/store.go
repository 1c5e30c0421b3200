// Package store persists evaluation history, planning configuration
// bundles, and webhook delivery state. The engine itself never touches a
// store; persistence is a host concern.
package store

import (
	"context"
	"errors"
	"time"

	"loadplan/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Evaluation history
	SaveEvaluation(ctx context.Context, tenantID string, ev model.EvaluationOut) (model.EvaluationOut, error)
	GetEvaluation(ctx context.Context, tenantID, id string) (model.EvaluationOut, error)
	ListEvaluations(ctx context.Context, tenantID, cursor string, limit int) ([]model.EvaluationOut, string, error)

	// Settings presets (the editable constraints panel)
	SaveSettingsPreset(ctx context.Context, tenantID, name string, s model.SettingsIn) (model.SettingsPreset, error)
	GetSettingsPreset(ctx context.Context, tenantID, id string) (model.SettingsPreset, error)
	ListSettingsPresets(ctx context.Context, tenantID, cursor string, limit int) ([]model.SettingsPreset, string, error)
	DeleteSettingsPreset(ctx context.Context, tenantID, id string) error

	// Criteria sets (the optimization settings panel)
	SaveCriteriaSet(ctx context.Context, tenantID, name string, criteria []model.CriterionIn) (model.CriteriaSet, error)
	GetCriteriaSet(ctx context.Context, tenantID, id string) (model.CriteriaSet, error)
	ListCriteriaSets(ctx context.Context, tenantID, cursor string, limit int) ([]model.CriteriaSet, string, error)
	DeleteCriteriaSet(ctx context.Context, tenantID, id string) error

	// Webhook subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook delivery queue
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error

	// Aggregates for the admin dashboard
	EvaluationStats(ctx context.Context, tenantID string) (map[string]any, error)
}

var ErrNotFound = errors.New("not found")
