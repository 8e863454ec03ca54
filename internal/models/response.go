package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ChatResponse is returned by POST /api/v1/chat
type ChatResponse struct {
	Status        string                 `json:"status"`
	Agent         string                 `json:"agent"`
	Reply         string                 `json:"reply"`
	ToolsUsed     []string               `json:"tools_used,omitempty"`
	AgentMetadata map[string]interface{} `json:"agent_metadata"`
}

// OrderSummary is one entry in a customer order search result
type OrderSummary struct {
	OrderID   string  `json:"order_id"`
	Product   string  `json:"product"`
	Status    string  `json:"status"`
	OrderDate string  `json:"order_date"`
	DaysAgo   int     `json:"days_ago"`
	Total     float64 `json:"total"`
}

// OrderSearchResponse is returned by GET /api/v1/customers/{customer_id}/orders
type OrderSearchResponse struct {
	Status     string         `json:"status"`
	CustomerID string         `json:"customer_id"`
	Count      int            `json:"count"`
	Orders     []OrderSummary `json:"orders"`
}

// EligibilityResponse is returned by GET /api/v1/orders/{order_id}/eligibility
type EligibilityResponse struct {
	Status         string  `json:"status"`
	OrderID        string  `json:"order_id"`
	Eligible       bool    `json:"eligible"`
	NeedsReview    bool    `json:"needs_review"`
	Basis          string  `json:"basis"`
	Reason         string  `json:"reason"`
	DaysSinceOrder int     `json:"days_since_order"`
	RefundAmount   float64 `json:"refund_amount,omitempty"`
}

// ReturnConfirmation is returned by POST /api/v1/returns
type ReturnConfirmation struct {
	Status        string `json:"status"`
	OrderID       string `json:"order_id"`
	TrackingToken string `json:"tracking_token"`
	Notice        string `json:"notice"`
	CreatedAt     string `json:"created_at"`
}
