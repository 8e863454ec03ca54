package models

// ChatRequest for POST /api/v1/chat
type ChatRequest struct {
	Message string  `json:"message"`
	Agent   *string `json:"agent,omitempty"` // "returns" | "orders" | "faq"; overrides routing
	Timeout int     `json:"timeout"`         // seconds
}

func (r *ChatRequest) SetDefaults() {
	if r.Timeout == 0 {
		r.Timeout = 120
	}
	if r.Timeout < 10 {
		r.Timeout = 10
	}
	if r.Timeout > 300 {
		r.Timeout = 300
	}
}

// ReturnRequest for POST /api/v1/returns
type ReturnRequest struct {
	OrderID       string `json:"order_id"`
	CustomerEmail string `json:"customer_email"`
	Reason        string `json:"reason"`
}
