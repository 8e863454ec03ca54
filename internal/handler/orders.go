package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/policy"
	"github.com/ecomarket/support-agent/internal/store"
	"github.com/ecomarket/support-agent/internal/tools"
	"github.com/go-chi/chi/v5"
)

// OrdersHandler exposes the order store and the eligibility evaluation
// over plain REST, bypassing the conversational loop.
type OrdersHandler struct {
	orders store.OrderStore
	rules  tools.PolicySource
}

func NewOrdersHandler(orders store.OrderStore, rules tools.PolicySource) *OrdersHandler {
	return &OrdersHandler{orders: orders, rules: rules}
}

// GetOrder handles GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	rec, err := h.orders.Get(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"order":  rec,
	})
}

// Eligibility handles GET /api/v1/orders/{order_id}/eligibility
func (h *OrdersHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	rec, err := h.orders.Get(r.Context(), chi.URLParam(r, "order_id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	ruleSet, err := h.rules.Rules(r.Context())
	if err != nil {
		models.WriteError(w, http.StatusServiceUnavailable, "could not retrieve return policy: "+err.Error())
		return
	}

	d := policy.Evaluate(rec, ruleSet, time.Now().UTC())
	models.WriteJSON(w, http.StatusOK, models.EligibilityResponse{
		Status:         "success",
		OrderID:        d.OrderID,
		Eligible:       d.Eligible,
		NeedsReview:    d.NeedsReview,
		Basis:          d.Basis,
		Reason:         d.Reason,
		DaysSinceOrder: d.DaysSinceOrder,
		RefundAmount:   d.RefundAmount,
	})
}

// CustomerOrders handles GET /api/v1/customers/{customer_id}/orders
func (h *OrdersHandler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customer_id")
	recs, err := h.orders.ByCustomer(r.Context(), customerID)
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	models.WriteJSON(w, http.StatusOK, models.OrderSearchResponse{
		Status:     "success",
		CustomerID: store.NormalizeID(customerID),
		Count:      len(recs),
		Orders:     tools.Summarize(recs, time.Now().UTC()),
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrOrderNotFound) {
		models.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	models.WriteError(w, http.StatusInternalServerError, err.Error())
}
