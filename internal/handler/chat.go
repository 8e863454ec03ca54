package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ecomarket/support-agent/internal/agent"
	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/service"
)

// ChatHandler handles POST /api/v1/chat
type ChatHandler struct {
	returns        *agent.ReturnsHandler
	retrieval      *agent.RetrievalHandler
	router         *service.IntentRouter
	defaultTimeout int // seconds, applied when the request does not set one
}

func NewChatHandler(returns *agent.ReturnsHandler, retrieval *agent.RetrievalHandler, router *service.IntentRouter, defaultTimeout int) *ChatHandler {
	return &ChatHandler{returns: returns, retrieval: retrieval, router: router, defaultTimeout: defaultTimeout}
}

// Chat routes the message to the returns, orders or FAQ agent and relays
// the agent's reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Timeout == 0 {
		req.Timeout = h.defaultTimeout
	}
	req.SetDefaults()

	if req.Message == "" {
		models.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	var agentName, routingReason string
	var routingConf float64

	if req.Agent != nil && *req.Agent != "" {
		agentName = *req.Agent
		routingConf = 1.0
		routingReason = "explicitly specified by user"
	} else {
		routing := h.router.Route(req.Message)
		agentName = routing.Agent
		routingConf = routing.Confidence
		routingReason = routing.Reasoning
	}

	var resp *models.ChatResponse
	var err error

	switch agentName {
	case service.AgentReturns:
		if h.returns == nil {
			models.WriteError(w, http.StatusServiceUnavailable, "returns agent is not configured")
			return
		}
		resp, err = h.returns.Handle(r.Context(), &req)
	case service.AgentOrders, service.AgentFAQ:
		if h.retrieval == nil {
			models.WriteError(w, http.StatusServiceUnavailable, "retrieval agents are not configured")
			return
		}
		resp, err = h.retrieval.Handle(r.Context(), agentName, &req)
	default:
		models.WriteError(w, http.StatusBadRequest, "unknown agent: "+agentName)
		return
	}

	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp.AgentMetadata["routing_confidence"] = routingConf
	resp.AgentMetadata["routing_reasoning"] = routingReason
	models.WriteJSON(w, http.StatusOK, resp)
}
