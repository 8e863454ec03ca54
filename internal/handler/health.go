package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/service"
	"github.com/ecomarket/support-agent/internal/store"
)

const version = "1.0.0"

// HealthHandler handles GET /health with dependency checks
type HealthHandler struct {
	orders   store.OrderStore
	kb       *service.KnowledgeService
	llmReady bool
}

func NewHealthHandler(orders store.OrderStore, kb *service.KnowledgeService, llmReady bool) *HealthHandler {
	return &HealthHandler{orders: orders, kb: kb, llmReady: llmReady}
}

// Health reports the server, store, knowledge base and LLM status.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Short timeout so a slow dependency cannot hang the probe
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.orders != nil {
		n, err := h.orders.Count(ctx)
		if err != nil {
			checks["order_store"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["order_store"] = fmt.Sprintf("ok (%d orders)", n)
		}
	} else {
		checks["order_store"] = "disabled"
	}

	if h.kb != nil {
		if err := h.kb.TestConnection(ctx); err != nil {
			checks["knowledge_base"] = "unavailable: " + err.Error()
			overallStatus = "degraded"
		} else {
			checks["knowledge_base"] = "ok"
		}
	} else {
		checks["knowledge_base"] = "disabled"
	}

	if h.llmReady {
		checks["llm"] = "configured"
	} else {
		checks["llm"] = "disabled"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
