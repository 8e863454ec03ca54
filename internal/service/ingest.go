package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ecomarket/support-agent/internal/store"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// PolicyDoc is one entry of the policy seed file. Text is the manual
// passage shown to the model; the remaining fields are the rule metadata
// the eligibility evaluator consumes.
type PolicyDoc struct {
	ID             string   `json:"id"`
	Text           string   `json:"text"`
	RuleType       string   `json:"rule_type,omitempty"`
	WindowDays     int      `json:"window_days,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

// FAQDoc is one question/answer pair of the FAQ seed file.
type FAQDoc struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Ingestor seeds the three retrieval indices from local files and the
// order store.
type Ingestor struct {
	kb         *KnowledgeService
	orders     store.OrderStore
	policyPath string
	faqPath    string
}

func NewIngestor(kb *KnowledgeService, orders store.OrderStore, policyPath, faqPath string) *Ingestor {
	return &Ingestor{kb: kb, orders: orders, policyPath: policyPath, faqPath: faqPath}
}

// Bootstrap recreates and fills the policy, FAQ and orders indices. The
// three pipelines are independent, so they run concurrently.
func (i *Ingestor) Bootstrap(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return i.ingestPolicy(ctx) })
	g.Go(func() error { return i.ingestFAQ(ctx) })
	g.Go(func() error { return i.ingestOrders(ctx) })
	return g.Wait()
}

func (i *Ingestor) ingestPolicy(ctx context.Context) error {
	var docs []PolicyDoc
	if err := readJSON(i.policyPath, &docs); err != nil {
		return fmt.Errorf("load policy manual: %w", err)
	}

	payload := make([]map[string]interface{}, 0, len(docs))
	for n, d := range docs {
		doc := map[string]interface{}{"text": d.Text}
		if d.ID != "" {
			doc["_id"] = d.ID
		} else {
			doc["_id"] = fmt.Sprintf("policy-%d", n)
		}
		if d.RuleType != "" {
			doc["rule_type"] = d.RuleType
		}
		if d.WindowDays > 0 {
			doc["window_days"] = d.WindowDays
		}
		if len(d.Categories) > 0 {
			doc["categories"] = d.Categories
		}
		if len(d.PaymentMethods) > 0 {
			doc["payment_methods"] = d.PaymentMethods
		}
		payload = append(payload, doc)
	}

	if err := i.recreateAndIndex(ctx, IndexPolicy, payload); err != nil {
		return err
	}
	log.Info().Int("passages", len(payload)).Msg("policy manual indexed")
	return nil
}

func (i *Ingestor) ingestFAQ(ctx context.Context) error {
	var docs []FAQDoc
	if err := readJSON(i.faqPath, &docs); err != nil {
		return fmt.Errorf("load faq: %w", err)
	}

	payload := make([]map[string]interface{}, 0, len(docs))
	for n, d := range docs {
		payload = append(payload, map[string]interface{}{
			"_id":      fmt.Sprintf("faq-%d", n),
			"text":     fmt.Sprintf("Question: %s -> Answer: %s", d.Question, d.Answer),
			"question": d.Question,
			"answer":   d.Answer,
		})
	}

	if err := i.recreateAndIndex(ctx, IndexFAQ, payload); err != nil {
		return err
	}
	log.Info().Int("entries", len(payload)).Msg("faq indexed")
	return nil
}

func (i *Ingestor) ingestOrders(ctx context.Context) error {
	orders, err := i.orders.All(ctx)
	if err != nil {
		return fmt.Errorf("read order store: %w", err)
	}

	payload := make([]map[string]interface{}, 0, len(orders))
	for _, o := range orders {
		payload = append(payload, map[string]interface{}{
			"_id": o.ID,
			"text": fmt.Sprintf(
				"Order %s for customer %s: %s (%s), quantity %d, price %.0f, ordered %s, paid with %s, status %s",
				o.ID, o.CustomerID, o.Product, o.Category, o.Quantity, o.Price,
				o.OrderDate.Format("2006-01-02"), o.PaymentMethod, o.Status),
			"order_id":       o.ID,
			"customer_id":    o.CustomerID,
			"product":        o.Product,
			"category":       o.Category,
			"price":          o.Price,
			"quantity":       o.Quantity,
			"order_date":     o.OrderDate.Format("2006-01-02"),
			"payment_method": o.PaymentMethod,
			"status":         o.Status,
		})
	}

	if err := i.recreateAndIndex(ctx, IndexOrders, payload); err != nil {
		return err
	}
	log.Info().Int("orders", len(payload)).Msg("orders indexed")
	return nil
}

func (i *Ingestor) recreateAndIndex(ctx context.Context, kind string, docs []map[string]interface{}) error {
	if err := i.kb.RecreateIndex(ctx, kind); err != nil {
		return err
	}
	return i.kb.IndexDocuments(ctx, kind, docs)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
