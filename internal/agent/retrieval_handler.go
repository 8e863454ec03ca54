package agent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ecomarket/support-agent/internal/models"
	"github.com/ecomarket/support-agent/internal/service"
)

const ordersSystemPrompt = `You are the EcoMarket orders assistant. Answer questions about
orders using ONLY the order documents provided in the context. If the context does not
contain the answer, say so; never guess order details. Match the customer's language.`

const faqSystemPrompt = `You are the EcoMarket FAQ assistant for an eco-friendly online
store. Answer using ONLY the FAQ passages provided in the context. If the context does not
cover the question, say you do not know and suggest contacting customer support. Match the
customer's language.`

var orderIDPattern = regexp.MustCompile(`\b[OoAa]\d{3,}\b`)

// RetrievalHandler answers the orders and FAQ agents' questions with
// retrieval-augmented generation: top-k passages from the matching index
// plus one completion call.
type RetrievalHandler struct {
	agent *SupportAgent
	kb    *service.KnowledgeService
	topK  int
}

func NewRetrievalHandler(agent *SupportAgent, kb *service.KnowledgeService) *RetrievalHandler {
	return &RetrievalHandler{agent: agent, kb: kb, topK: 3}
}

func (h *RetrievalHandler) Handle(ctx context.Context, agentName string, req *models.ChatRequest) (*models.ChatResponse, error) {
	start := time.Now()

	var kind, systemPrompt string
	switch agentName {
	case service.AgentOrders:
		kind, systemPrompt = service.IndexOrders, ordersSystemPrompt
	case service.AgentFAQ:
		kind, systemPrompt = service.IndexFAQ, faqSystemPrompt
	default:
		return nil, fmt.Errorf("unknown retrieval agent %q", agentName)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	docs, err := h.kb.SearchPassages(runCtx, kind, req.Message, h.topK)
	if err != nil {
		return nil, fmt.Errorf("%s retrieval: %w", agentName, err)
	}

	metadata := map[string]interface{}{
		"model":    h.agent.Model(),
		"method":   "retrieval",
		"index":    kind,
		"passages": len(docs),
	}

	if len(docs) == 0 {
		metadata["duration_ms"] = time.Since(start).Milliseconds()
		return &models.ChatResponse{
			Status:        "success",
			Agent:         agentName,
			Reply:         "I could not find any information matching your question.",
			AgentMetadata: metadata,
		}, nil
	}

	// When the question names a concrete order id, the top order document
	// answers it directly; skip the completion call.
	if agentName == service.AgentOrders && orderIDPattern.MatchString(req.Message) {
		metadata["method"] = "direct_lookup"
		metadata["duration_ms"] = time.Since(start).Milliseconds()
		return &models.ChatResponse{
			Status:        "success",
			Agent:         agentName,
			Reply:         formatOrderDoc(docs[0].Source),
			AgentMetadata: metadata,
		}, nil
	}

	reply, err := h.agent.Complete(runCtx, systemPrompt, promptWithContext(req.Message, docs))
	if err != nil {
		return nil, fmt.Errorf("%s agent: %w", agentName, err)
	}

	metadata["duration_ms"] = time.Since(start).Milliseconds()
	return &models.ChatResponse{
		Status:        "success",
		Agent:         agentName,
		Reply:         reply,
		AgentMetadata: metadata,
	}, nil
}

func promptWithContext(question string, docs []service.RetrievedDoc) string {
	var b strings.Builder
	b.WriteString("Context passages:\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, d.Text)
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

func formatOrderDoc(source map[string]interface{}) string {
	keys := make([]string, 0, len(source))
	for k := range source {
		if k == "text" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("Order information:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, source[k])
	}
	return b.String()
}
