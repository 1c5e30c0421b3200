package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"loadplan/internal/model"
)

// Postgres persists the store on PostgreSQL via database/sql and the pgx
// stdlib driver. JSON-shaped values (evaluations, settings, criteria) are
// kept as jsonb payloads; the relational columns carry only what queries
// filter on.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: verify postgres connection: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Init creates the schema if it does not exist. Dev helper; production
// deployments run migrations out of band.
func (p *Postgres) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
    id          UUID PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    route_id    TEXT NOT NULL,
    feasible    BOOLEAN NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_evaluations_tenant ON evaluations (tenant_id, created_at);

CREATE TABLE IF NOT EXISTS settings_presets (
    id          UUID PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    name        TEXT NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_settings_presets_tenant ON settings_presets (tenant_id, created_at);

CREATE TABLE IF NOT EXISTS criteria_sets (
    id          UUID PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    name        TEXT NOT NULL,
    payload     JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_criteria_sets_tenant ON criteria_sets (tenant_id, created_at);

CREATE TABLE IF NOT EXISTS subscriptions (
    id          UUID PRIMARY KEY,
    tenant_id   TEXT NOT NULL,
    url         TEXT NOT NULL,
    events      JSONB NOT NULL,
    secret      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_subscriptions_tenant ON subscriptions (tenant_id, created_at);

CREATE TABLE IF NOT EXISTS webhook_deliveries (
    id              UUID PRIMARY KEY,
    tenant_id       TEXT NOT NULL,
    subscription_id UUID NOT NULL,
    event_type      TEXT NOT NULL,
    url             TEXT NOT NULL,
    secret          TEXT NOT NULL DEFAULT '',
    payload         BYTEA NOT NULL,
    status          TEXT NOT NULL DEFAULT 'pending',
    attempts        INT NOT NULL DEFAULT 0,
    next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_error      TEXT NOT NULL DEFAULT '',
    response_code   INT NOT NULL DEFAULT 0,
    latency_ms      INT NOT NULL DEFAULT 0,
    delivered_at    TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_due ON webhook_deliveries (status, next_attempt_at);
`
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

func (p *Postgres) SaveEvaluation(ctx context.Context, tenantID string, ev model.EvaluationOut) (model.EvaluationOut, error) {
	ev.ID = uuid.New().String()
	ev.TenantID = tenantID
	ev.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	payload, err := json.Marshal(ev)
	if err != nil {
		return model.EvaluationOut{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO evaluations (id, tenant_id, route_id, feasible, payload) VALUES ($1,$2,$3,$4,$5)`,
		ev.ID, tenantID, ev.RouteID, ev.Feasible, payload)
	if err != nil {
		return model.EvaluationOut{}, fmt.Errorf("store: save evaluation: %w", err)
	}
	return ev, nil
}

func (p *Postgres) GetEvaluation(ctx context.Context, tenantID, id string) (model.EvaluationOut, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM evaluations WHERE tenant_id=$1 AND id=$2`, tenantID, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.EvaluationOut{}, ErrNotFound
	}
	if err != nil {
		return model.EvaluationOut{}, fmt.Errorf("store: get evaluation: %w", err)
	}
	var ev model.EvaluationOut
	if err := json.Unmarshal(payload, &ev); err != nil {
		return model.EvaluationOut{}, err
	}
	return ev, nil
}

func (p *Postgres) ListEvaluations(ctx context.Context, tenantID, cursor string, limit int) ([]model.EvaluationOut, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, payload FROM evaluations
		 WHERE tenant_id=$1 AND ($2='' OR id::text > $2)
		 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("store: list evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.EvaluationOut{}
	var next string
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, "", err
		}
		var ev model.EvaluationOut
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, "", err
		}
		out = append(out, ev)
		next = id
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) SaveSettingsPreset(ctx context.Context, tenantID, name string, s model.SettingsIn) (model.SettingsPreset, error) {
	preset := model.SettingsPreset{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Settings:  s,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(preset)
	if err != nil {
		return model.SettingsPreset{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO settings_presets (id, tenant_id, name, payload) VALUES ($1,$2,$3,$4)`,
		preset.ID, tenantID, name, payload)
	if err != nil {
		return model.SettingsPreset{}, fmt.Errorf("store: save settings preset: %w", err)
	}
	return preset, nil
}

func (p *Postgres) GetSettingsPreset(ctx context.Context, tenantID, id string) (model.SettingsPreset, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM settings_presets WHERE tenant_id=$1 AND id=$2`, tenantID, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SettingsPreset{}, ErrNotFound
	}
	if err != nil {
		return model.SettingsPreset{}, fmt.Errorf("store: get settings preset: %w", err)
	}
	var preset model.SettingsPreset
	if err := json.Unmarshal(payload, &preset); err != nil {
		return model.SettingsPreset{}, err
	}
	return preset, nil
}

func (p *Postgres) ListSettingsPresets(ctx context.Context, tenantID, cursor string, limit int) ([]model.SettingsPreset, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, payload FROM settings_presets
		 WHERE tenant_id=$1 AND ($2='' OR id::text > $2)
		 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("store: list settings presets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.SettingsPreset{}
	var next string
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, "", err
		}
		var preset model.SettingsPreset
		if err := json.Unmarshal(payload, &preset); err != nil {
			return nil, "", err
		}
		out = append(out, preset)
		next = id
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) DeleteSettingsPreset(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM settings_presets WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("store: delete settings preset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SaveCriteriaSet(ctx context.Context, tenantID, name string, criteria []model.CriterionIn) (model.CriteriaSet, error) {
	cs := model.CriteriaSet{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      name,
		Criteria:  criteria,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	payload, err := json.Marshal(cs)
	if err != nil {
		return model.CriteriaSet{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO criteria_sets (id, tenant_id, name, payload) VALUES ($1,$2,$3,$4)`,
		cs.ID, tenantID, name, payload)
	if err != nil {
		return model.CriteriaSet{}, fmt.Errorf("store: save criteria set: %w", err)
	}
	return cs, nil
}

func (p *Postgres) GetCriteriaSet(ctx context.Context, tenantID, id string) (model.CriteriaSet, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT payload FROM criteria_sets WHERE tenant_id=$1 AND id=$2`, tenantID, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CriteriaSet{}, ErrNotFound
	}
	if err != nil {
		return model.CriteriaSet{}, fmt.Errorf("store: get criteria set: %w", err)
	}
	var cs model.CriteriaSet
	if err := json.Unmarshal(payload, &cs); err != nil {
		return model.CriteriaSet{}, err
	}
	return cs, nil
}

func (p *Postgres) ListCriteriaSets(ctx context.Context, tenantID, cursor string, limit int) ([]model.CriteriaSet, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, payload FROM criteria_sets
		 WHERE tenant_id=$1 AND ($2='' OR id::text > $2)
		 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("store: list criteria sets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.CriteriaSet{}
	var next string
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, "", err
		}
		var cs model.CriteriaSet
		if err := json.Unmarshal(payload, &cs); err != nil {
			return nil, "", err
		}
		out = append(out, cs)
		next = id
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) DeleteCriteriaSet(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM criteria_sets WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("store: delete criteria set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	s := model.Subscription{
		ID:       uuid.New().String(),
		TenantID: req.TenantID,
		URL:      req.URL,
		Events:   req.Events,
		Secret:   req.Secret,
	}
	events, err := json.Marshal(req.Events)
	if err != nil {
		return model.Subscription{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.TenantID, s.URL, events, s.Secret)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("store: create subscription: %w", err)
	}
	return s, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, url, events, secret FROM subscriptions
		 WHERE tenant_id=$1 AND events ? $2`, tenantID, eventType)
	if err != nil {
		return nil, fmt.Errorf("store: subscriptions for event: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Subscription
	for rows.Next() {
		var s model.Subscription
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, &s.Events); err != nil {
			return nil, err
		}
		s.TenantID = tenantID
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, url, events, secret FROM subscriptions
		 WHERE tenant_id=$1 AND ($2='' OR id::text > $2)
		 ORDER BY id LIMIT $3`, tenantID, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("store: list subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []model.Subscription{}
	var next string
	for rows.Next() {
		var s model.Subscription
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, "", err
		}
		if err := json.Unmarshal(events, &s.Events); err != nil {
			return nil, "", err
		}
		s.TenantID = tenantID
		out = append(out, s)
		next = s.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("store: delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, tenantID, subscriptionID, eventType, url, secret, payload)
	if err != nil {
		return "", fmt.Errorf("store: enqueue webhook: %w", err)
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, tenant_id, subscription_id, event_type, url, secret, payload, status, attempts
		 FROM webhook_deliveries
		 WHERE status='pending' AND next_attempt_at <= now()
		 ORDER BY next_attempt_at LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: fetch due webhooks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx,
			`UPDATE webhook_deliveries
			 SET status='delivered', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4, delivered_at=now()
			 WHERE id=$1`, id, lastError, responseCode, latencyMs)
		return err
	}
	var next time.Time
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	} else {
		next = time.Now().Add(time.Minute)
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET attempts=attempts+1, next_attempt_at=$2, last_error=$3, response_code=$4, latency_ms=$5
		 WHERE id=$1`, id, next, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries
		 SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4
		 WHERE id=$1`, id, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) EvaluationStats(ctx context.Context, tenantID string) (map[string]any, error) {
	var total, feasible int
	err := p.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE feasible) FROM evaluations WHERE tenant_id=$1`,
		tenantID).Scan(&total, &feasible)
	if err != nil {
		return nil, fmt.Errorf("store: evaluation stats: %w", err)
	}

	byKind := map[string]int{}
	rows, err := p.db.QueryContext(ctx,
		`SELECT v->>'kind', count(*)
		 FROM evaluations, jsonb_array_elements(payload->'violations') v
		 WHERE tenant_id=$1
		 GROUP BY 1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("store: evaluation stats violations: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		byKind[kind] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return map[string]any{
		"total":            total,
		"feasible":         feasible,
		"infeasible":       total - feasible,
		"violationsByKind": byKind,
	}, nil
}
