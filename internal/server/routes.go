package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/ecomarket/support-agent/internal/agent"
	"github.com/ecomarket/support-agent/internal/handler"
	"github.com/ecomarket/support-agent/internal/middleware"
	"github.com/ecomarket/support-agent/internal/notify"
	"github.com/ecomarket/support-agent/internal/service"
	"github.com/ecomarket/support-agent/internal/store"
	"github.com/ecomarket/support-agent/internal/tools"
	"github.com/ecomarket/support-agent/web"
)

// setupRoutes returns (router, pg, error) so the Postgres pool can be
// closed on shutdown.
func (s *Server) setupRoutes() (http.Handler, *store.PostgresStore, error) {
	cfg := s.cfg
	ctx := context.Background()

	// ─── Order store ────────────────────────────────────────────────────────────
	var orders store.OrderStore
	var pg *store.PostgresStore

	if cfg.OrdersDSN != "" {
		var pgErr error
		pg, pgErr = store.NewPostgresStore(ctx, cfg.OrdersDSN)
		if pgErr != nil {
			log.Warn().Err(pgErr).Msg("postgres order store unavailable - falling back to in-memory store")
		} else {
			orders = pg
		}
	}
	if orders == nil {
		mem := store.NewMemoryStore()
		if cfg.OrdersCSV != "" {
			n, err := store.LoadCSV(ctx, mem, cfg.OrdersCSV)
			if err != nil {
				log.Warn().Err(err).Str("path", cfg.OrdersCSV).Msg("order data not loaded")
			} else {
				log.Info().Int("orders", n).Str("path", cfg.OrdersCSV).Msg("order data loaded")
			}
		}
		orders = mem
	}

	// ─── Knowledge base ─────────────────────────────────────────────────────────
	kb, err := service.NewKnowledgeService(service.KnowledgeConfig{
		Scheme:      cfg.ElasticsearchScheme,
		Host:        cfg.ElasticsearchHost,
		Port:        cfg.ElasticsearchPort,
		User:        cfg.ElasticsearchUser,
		Password:    cfg.ElasticsearchPassword,
		VerifyCerts: cfg.ElasticsearchVerifyCerts,
		MaxRetries:  cfg.ElasticsearchMaxRetries,
		IndexPrefix: cfg.IndexPrefix,
	})
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.ElasticsearchTimeout)*time.Second)
	defer cancel()
	if pingErr := kb.TestConnection(pingCtx); pingErr != nil {
		log.Warn().Err(pingErr).Msg("knowledge base unreachable - retrieval and eligibility will report errors until it recovers")
	} else {
		ingestor := service.NewIngestor(kb, orders, cfg.PolicyPath, cfg.FAQPath)
		if ingestErr := ingestor.Bootstrap(ctx); ingestErr != nil {
			log.Warn().Err(ingestErr).Msg("knowledge base ingestion failed")
		} else {
			log.Info().Msg("knowledge base indices rebuilt")
		}
	}

	rules := tools.NewCachedRuleSource(kb, 5*time.Minute)
	mailer := notify.NewSimulatedMailer()

	// ─── AI Agent ───────────────────────────────────────────────────────────────
	var supportAgent *agent.SupportAgent
	if cfg.AnthropicAPIKey != "" {
		supportAgent = agent.NewSupportAgent(cfg.AnthropicAPIKey, cfg.Model, cfg.AnthropicBaseURL)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - conversational agents disabled")
	}

	intentRouter := service.NewIntentRouter()

	// ─── Startup summary ────────────────────────────────────────────────────────
	log.Info().
		Bool("postgres_orders", pg != nil).
		Bool("agent_enabled", supportAgent != nil).
		Bool("auth_enabled", cfg.EnableAuth && len(cfg.APIKeys) > 0).
		Str("index_prefix", cfg.IndexPrefix).
		Msg("service configuration")

	if cfg.EnableAuth && len(cfg.APIKeys) == 0 {
		log.Warn().Msg("WARNING: auth enabled but no API keys configured - all API requests will be rejected")
	}
	if supportAgent == nil {
		log.Warn().Msg("WARNING: /api/v1/chat will return 503 - order and eligibility REST endpoints remain available")
	}

	// ─── Handlers ───────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(orders, kb, supportAgent != nil)
	ordersH := handler.NewOrdersHandler(orders, rules)
	returnsH := handler.NewReturnsHandler(orders, mailer)

	var chatH *handler.ChatHandler
	if supportAgent != nil {
		returnsAgent := agent.NewReturnsHandler(supportAgent, orders, rules, mailer)
		retrievalAgent := agent.NewRetrievalHandler(supportAgent, kb)
		chatH = handler.NewChatHandler(returnsAgent, retrievalAgent, intentRouter, cfg.AgentTimeout)
	} else {
		chatH = handler.NewChatHandler(nil, nil, intentRouter, cfg.AgentTimeout)
	}

	// ─── Router ─────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Handle("/", web.Handler())
	r.Handle("/static/*", http.StripPrefix("/static", web.Handler()))

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute),
	}
	if cfg.EnableAuth && len(cfg.APIKeys) > 0 {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/chat", chatH.Chat)

			r.Get("/orders/{order_id}", ordersH.GetOrder)
			r.Get("/orders/{order_id}/eligibility", ordersH.Eligibility)
			r.Get("/customers/{customer_id}/orders", ordersH.CustomerOrders)

			r.Post("/returns", returnsH.Initiate)
		})
	})

	return r, pg, nil
}
