package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"loadplan/internal/model"
)

func TestMemoryEvaluationRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	saved, err := m.SaveEvaluation(ctx, "t1", model.EvaluationOut{
		RouteID:  "RT-1",
		Feasible: true,
		Violations: []model.ViolationOut{
			{Kind: "route_duration", Limit: 600, Actual: 640},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, "t1", saved.TenantID)
	require.NotEmpty(t, saved.CreatedAt)

	got, err := m.GetEvaluation(ctx, "t1", saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved, got)

	_, err = m.GetEvaluation(ctx, "other-tenant", saved.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.GetEvaluation(ctx, "t1", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListEvaluationsPagination(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.SaveEvaluation(ctx, "t1", model.EvaluationOut{RouteID: "RT", Feasible: true})
		require.NoError(t, err)
	}

	page1, next, err := m.ListEvaluations(ctx, "t1", "", 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotEmpty(t, next)

	page2, next2, err := m.ListEvaluations(ctx, "t1", next, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotEqual(t, page1[1].ID, page2[0].ID)

	page3, next3, err := m.ListEvaluations(ctx, "t1", next2, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	require.Empty(t, next3)

	seen := map[string]bool{}
	for _, pg := range [][]model.EvaluationOut{page1, page2, page3} {
		for _, ev := range pg {
			require.False(t, seen[ev.ID], "duplicate id across pages")
			seen[ev.ID] = true
		}
	}
	require.Len(t, seen, 5)
}

func TestMemorySettingsPresetCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := model.SettingsIn{MaxStopsPerRoute: 25, MaxRouteDurationMin: 540}
	preset, err := m.SaveSettingsPreset(ctx, "t1", "weekday", in)
	require.NoError(t, err)
	require.Equal(t, "weekday", preset.Name)

	got, err := m.GetSettingsPreset(ctx, "t1", preset.ID)
	require.NoError(t, err)
	require.Equal(t, in, got.Settings)

	list, _, err := m.ListSettingsPresets(ctx, "t1", "", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, m.DeleteSettingsPreset(ctx, "t1", preset.ID))
	require.ErrorIs(t, m.DeleteSettingsPreset(ctx, "t1", preset.ID), ErrNotFound)

	list, _, err = m.ListSettingsPresets(ctx, "t1", "", 10)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMemoryCriteriaSetCRUD(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	criteria := []model.CriterionIn{
		{ID: "cost", Name: "Cost", Enabled: true, Weight: 9},
		{ID: "time", Name: "Time", Enabled: false, Weight: 5},
	}
	cs, err := m.SaveCriteriaSet(ctx, "t1", "default", criteria)
	require.NoError(t, err)

	got, err := m.GetCriteriaSet(ctx, "t1", cs.ID)
	require.NoError(t, err)
	require.Equal(t, criteria, got.Criteria)

	require.NoError(t, m.DeleteCriteriaSet(ctx, "t1", cs.ID))
	_, err = m.GetCriteriaSet(ctx, "t1", cs.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySubscriptionsByEvent(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s1, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		TenantID: "t1", URL: "https://a.example/hook", Events: []string{"evaluation.completed"},
	})
	require.NoError(t, err)
	_, err = m.CreateSubscription(ctx, model.SubscriptionRequest{
		TenantID: "t1", URL: "https://b.example/hook", Events: []string{"scenario.analyzed"},
	})
	require.NoError(t, err)
	_, err = m.CreateSubscription(ctx, model.SubscriptionRequest{
		TenantID: "t2", URL: "https://c.example/hook", Events: []string{"evaluation.completed"},
	})
	require.NoError(t, err)

	subs, err := m.GetSubscriptionsForEvent(ctx, "t1", "evaluation.completed")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, s1.ID, subs[0].ID)

	subs, err = m.GetSubscriptionsForEvent(ctx, "t1", "evaluation.infeasible")
	require.NoError(t, err)
	require.Empty(t, subs)

	require.NoError(t, m.DeleteSubscription(ctx, "t1", s1.ID))
	subs, err = m.GetSubscriptionsForEvent(ctx, "t1", "evaluation.completed")
	require.NoError(t, err)
	require.Empty(t, subs)
}

func TestMemoryWebhookQueueLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.EnqueueWebhook(ctx, "t1", "sub-1", "evaluation.completed",
		"https://a.example/hook", "sec", []byte(`{"ok":true}`))
	require.NoError(t, err)

	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, id, due[0].ID)
	require.Equal(t, "pending", due[0].Status)

	// Failed attempt pushed into the future is no longer due.
	next := time.Now().Add(time.Hour)
	require.NoError(t, m.MarkWebhookDelivery(ctx, id, false, &next, "503", 503, 12))
	due, err = m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)

	// Success removes it from the queue for good.
	past := time.Now().Add(-time.Minute)
	require.NoError(t, m.MarkWebhookDelivery(ctx, id, false, &past, "503", 503, 12))
	due, err = m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, 2, due[0].Attempts)

	require.NoError(t, m.MarkWebhookDelivery(ctx, id, true, nil, "", 200, 8))
	due, err = m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestMemoryWebhookTerminalFailure(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.EnqueueWebhook(ctx, "t1", "sub-1", "evaluation.completed",
		"https://a.example/hook", "", []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, m.FailWebhookDelivery(ctx, id, "connection refused", 0, 0))
	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, due)
}

func TestMemoryEvaluationStats(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.SaveEvaluation(ctx, "t1", model.EvaluationOut{RouteID: "A", Feasible: true})
	require.NoError(t, err)
	_, err = m.SaveEvaluation(ctx, "t1", model.EvaluationOut{
		RouteID:  "B",
		Feasible: false,
		Violations: []model.ViolationOut{
			{Kind: "weight_capacity", Limit: 100, Actual: 120},
			{Kind: "route_duration", Limit: 600, Actual: 700},
		},
	})
	require.NoError(t, err)
	_, err = m.SaveEvaluation(ctx, "t2", model.EvaluationOut{RouteID: "C", Feasible: false})
	require.NoError(t, err)

	stats, err := m.EvaluationStats(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, 2, stats["total"])
	require.Equal(t, 1, stats["feasible"])
	require.Equal(t, 1, stats["infeasible"])
	byKind, ok := stats["violationsByKind"].(map[string]int)
	require.True(t, ok)
	require.Equal(t, 1, byKind["weight_capacity"])
	require.Equal(t, 1, byKind["route_duration"])
}
