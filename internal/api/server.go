package api

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"loadplan/internal/auth"
	"loadplan/internal/catalog"
	"loadplan/internal/store"
	"loadplan/internal/webhooks"
)

type Server struct {
	Catalog *catalog.Catalog
	Store   store.Store
	Pub     *webhooks.Publisher
	Auth    *auth.Verifier
	Broker  EventBroker
}

// NewServer wires the server from the environment. Without DATABASE_URL it
// runs on the in-memory store; without REDIS_URL events stay in-process.
func NewServer() (*Server, error) {
	cat := catalog.Default()
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		loaded, err := catalog.Load(path)
		if err != nil {
			return nil, err
		}
		cat = loaded
	}

	var s store.Store
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn == "" {
		s = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := pg.Init(context.Background()); err != nil {
				return nil, err
			}
		}
		s = pg
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		rb, err := NewRedisBroker()
		if err != nil {
			log.Warn().Err(err).Msg("redis broker unavailable, falling back to in-process")
			broker = NewBroker()
		} else {
			broker = rb
		}
	} else {
		broker = NewBroker()
	}

	return &Server{
		Catalog: cat,
		Store:   s,
		Pub:     webhooks.NewPublisher(s),
		Auth:    auth.NewVerifierFromEnv(),
		Broker:  broker,
	}, nil
}

func (s *Server) tenantOf(r *http.Request) string {
	tenant := r.Header.Get("X-Tenant-Id")
	if tenant == "" {
		tenant = "t_demo"
	}
	return tenant
}

// NewWebhookWorker creates the background worker draining the delivery queue.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}
