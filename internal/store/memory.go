package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"loadplan/internal/model"
)

// Memory is an in-memory store used when no DATABASE_URL is set, and by
// the handler tests.
type Memory struct {
	mu          sync.Mutex
	evaluations map[string]model.EvaluationOut
	evalByTen   map[string][]string
	presets     map[string]model.SettingsPreset
	presetByTen map[string][]string
	crits       map[string]model.CriteriaSet
	critByTen   map[string][]string
	subs        map[string][]model.Subscription
	deliveries  map[string]*memDelivery
}

// memDelivery augments WebhookDelivery with scheduling and outcome state.
type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
	DeliveredAt   *time.Time
}

func NewMemory() *Memory {
	return &Memory{
		evaluations: map[string]model.EvaluationOut{},
		evalByTen:   map[string][]string{},
		presets:     map[string]model.SettingsPreset{},
		presetByTen: map[string][]string{},
		crits:       map[string]model.CriteriaSet{},
		critByTen:   map[string][]string{},
		subs:        map[string][]model.Subscription{},
		deliveries:  map[string]*memDelivery{},
	}
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func (m *Memory) SaveEvaluation(ctx context.Context, tenantID string, ev model.EvaluationOut) (model.EvaluationOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = uuid.New().String()
	ev.TenantID = tenantID
	ev.CreatedAt = nowRFC3339()
	m.evaluations[ev.ID] = ev
	m.evalByTen[tenantID] = append(m.evalByTen[tenantID], ev.ID)
	return ev, nil
}

func (m *Memory) GetEvaluation(ctx context.Context, tenantID, id string) (model.EvaluationOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.evaluations[id]
	if !ok || ev.TenantID != tenantID {
		return model.EvaluationOut{}, ErrNotFound
	}
	return ev, nil
}

func (m *Memory) ListEvaluations(ctx context.Context, tenantID, cursor string, limit int) ([]model.EvaluationOut, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.evalByTen[tenantID]
	start := cursorStart(ids, cursor)
	if limit <= 0 {
		limit = 100
	}
	out := []model.EvaluationOut{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.evaluations[ids[i]])
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) SaveSettingsPreset(ctx context.Context, tenantID, name string, s model.SettingsIn) (model.SettingsPreset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.SettingsPreset{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Settings:  s,
		CreatedAt: nowRFC3339(),
	}
	m.presets[p.ID] = p
	m.presetByTen[tenantID] = append(m.presetByTen[tenantID], p.ID)
	return p, nil
}

func (m *Memory) GetSettingsPreset(ctx context.Context, tenantID, id string) (model.SettingsPreset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.presets[id]
	if !ok || p.TenantID != tenantID {
		return model.SettingsPreset{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListSettingsPresets(ctx context.Context, tenantID, cursor string, limit int) ([]model.SettingsPreset, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.presetByTen[tenantID]
	start := cursorStart(ids, cursor)
	if limit <= 0 {
		limit = 100
	}
	out := []model.SettingsPreset{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.presets[ids[i]])
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) DeleteSettingsPreset(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.presets[id]
	if !ok || p.TenantID != tenantID {
		return ErrNotFound
	}
	delete(m.presets, id)
	m.presetByTen[tenantID] = removeID(m.presetByTen[tenantID], id)
	return nil
}

func (m *Memory) SaveCriteriaSet(ctx context.Context, tenantID, name string, criteria []model.CriterionIn) (model.CriteriaSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs := model.CriteriaSet{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Criteria:  criteria,
		CreatedAt: nowRFC3339(),
	}
	m.crits[cs.ID] = cs
	m.critByTen[tenantID] = append(m.critByTen[tenantID], cs.ID)
	return cs, nil
}

func (m *Memory) GetCriteriaSet(ctx context.Context, tenantID, id string) (model.CriteriaSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.crits[id]
	if !ok || cs.TenantID != tenantID {
		return model.CriteriaSet{}, ErrNotFound
	}
	return cs, nil
}

func (m *Memory) ListCriteriaSets(ctx context.Context, tenantID, cursor string, limit int) ([]model.CriteriaSet, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.critByTen[tenantID]
	start := cursorStart(ids, cursor)
	if limit <= 0 {
		limit = 100
	}
	out := []model.CriteriaSet{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.crits[ids[i]])
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) DeleteCriteriaSet(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.crits[id]
	if !ok || cs.TenantID != tenantID {
		return ErrNotFound
	}
	delete(m.crits, id)
	m.critByTen[tenantID] = removeID(m.critByTen[tenantID], id)
	return nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.Subscription{
		ID:       uuid.New().String(),
		TenantID: req.TenantID,
		URL:      req.URL,
		Events:   req.Events,
		Secret:   req.Secret,
	}
	m.subs[req.TenantID] = append(m.subs[req.TenantID], s)
	return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Subscription
	for _, s := range m.subs[tenantID] {
		for _, e := range s.Events {
			if e == eventType {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[tenantID]
	start := 0
	if cursor != "" {
		for i := range list {
			if list[i].ID == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.Subscription{}
	var next string
	for i := start; i < len(list) && len(out) < limit; i++ {
		out = append(out, list[i])
		next = list[i].ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[tenantID]
	for i := range list {
		if list[i].ID == id {
			m.subs[tenantID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID:             id,
			TenantID:       tenantID,
			SubscriptionID: subscriptionID,
			EventType:      eventType,
			URL:            url,
			Secret:         secret,
			Payload:        payload,
			Status:         "pending",
		},
		NextAttemptAt: time.Now(),
	}
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	now := time.Now()
	var out []WebhookDelivery
	for _, d := range m.deliveries {
		if d.Status == "pending" && !d.NextAttemptAt.After(now) {
			out = append(out, d.WebhookDelivery)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		now := time.Now()
		d.DeliveredAt = &now
		return nil
	}
	if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) EvaluationStats(ctx context.Context, tenantID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	feasible := 0
	byKind := map[string]int{}
	for _, id := range m.evalByTen[tenantID] {
		ev := m.evaluations[id]
		total++
		if ev.Feasible {
			feasible++
		}
		for _, v := range ev.Violations {
			byKind[v.Kind]++
		}
	}
	return map[string]any{
		"total":            total,
		"feasible":         feasible,
		"infeasible":       total - feasible,
		"violationsByKind": byKind,
	}, nil
}

func cursorStart(ids []string, cursor string) int {
	if cursor == "" {
		return 0
	}
	for i, id := range ids {
		if id == cursor {
			return i + 1
		}
	}
	return 0
}

func removeID(ids []string, id string) []string {
	for i := range ids {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
