package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/notify"
	"github.com/ecomarket/support-agent/internal/store"
	"github.com/ecomarket/support-agent/internal/tools"
)

// ReturnsHandler handles POST /api/v1/returns
type ReturnsHandler struct {
	orders store.OrderStore
	mailer notify.Mailer
}

func NewReturnsHandler(orders store.OrderStore, mailer notify.Mailer) *ReturnsHandler {
	return &ReturnsHandler{orders: orders, mailer: mailer}
}

// Initiate starts a return directly, without going through the agent.
func (h *ReturnsHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var req models.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	conf, err := tools.InitiateReturn(r.Context(), h.orders, h.mailer, req.OrderID, req.CustomerEmail, req.Reason)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			models.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		models.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	models.WriteJSON(w, http.StatusOK, conf)
}
