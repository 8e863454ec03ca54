package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/ecomarket/support-agent/internal/policy"
)

// Index kinds. Physical index names are prefix + "-" + kind.
const (
	IndexPolicy = "policy"
	IndexOrders = "orders"
	IndexFAQ    = "faq"
)

// ErrKnowledgeUnavailable marks retrieval failures: the knowledge base is
// unreachable or returned nothing usable. Eligibility evaluation reports
// it instead of guessing an outcome.
var ErrKnowledgeUnavailable = errors.New("policy knowledge base unavailable")

// KnowledgeConfig holds connection settings for the retrieval backend.
type KnowledgeConfig struct {
	Scheme      string
	Host        string
	Port        int
	User        string
	Password    string
	VerifyCerts bool
	MaxRetries  int
	IndexPrefix string
}

// KnowledgeService wraps the Elasticsearch client used as the document
// retrieval backend: the policy manual, order documents and FAQ entries
// each live in their own index.
type KnowledgeService struct {
	client *elasticsearch.Client
	prefix string
}

// RetrievedDoc is one ranked hit from a passage search.
type RetrievedDoc struct {
	Text   string
	Score  float64
	Source map[string]interface{}
}

func NewKnowledgeService(cfg KnowledgeConfig) (*KnowledgeService, error) {
	esCfg := elasticsearch.Config{
		Addresses:  []string{fmt.Sprintf("%s://%s:%d", cfg.Scheme, cfg.Host, cfg.Port)},
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.User != "" {
		esCfg.Username = cfg.User
		esCfg.Password = cfg.Password
	}
	if !cfg.VerifyCerts {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402 - user explicitly disabled cert verification
			},
		}
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch.NewClient: %w", err)
	}
	prefix := cfg.IndexPrefix
	if prefix == "" {
		prefix = "ecomarket"
	}
	return &KnowledgeService{client: client, prefix: prefix}, nil
}

func (s *KnowledgeService) indexName(kind string) string {
	return s.prefix + "-" + kind
}

// TestConnection pings the cluster
func (s *KnowledgeService) TestConnection(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}

// RecreateIndex drops and recreates one of the retrieval indices so
// ingestion always starts from a clean slate.
func (s *KnowledgeService) RecreateIndex(ctx context.Context, kind string) error {
	name := s.indexName(kind)

	del, err := s.client.Indices.Delete(
		[]string{name},
		s.client.Indices.Delete.WithContext(ctx),
		s.client.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("delete index %s: %w", name, err)
	}
	del.Body.Close()

	create, err := s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer create.Body.Close()
	if create.IsError() {
		return fmt.Errorf("create index %s: %s", name, create.Status())
	}
	return nil
}

// IndexDocuments bulk-indexes documents into one of the retrieval
// indices. Each document must carry a "text" field; everything else is
// metadata.
func (s *KnowledgeService) IndexDocuments(ctx context.Context, kind string, docs []map[string]interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	name := s.indexName(kind)

	var buf bytes.Buffer
	for _, doc := range docs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": name}}
		if id, ok := doc["_id"].(string); ok && id != "" {
			meta["index"].(map[string]interface{})["_id"] = id
			doc = withoutID(doc)
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := json.NewEncoder(&buf).Encode(doc); err != nil {
			return fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("bulk index %s: %w", name, err)
	}
	defer res.Body.Close()

	raw, err := decodeBody(res.Body, res.Status())
	if err != nil {
		return err
	}
	if hasErrors, _ := raw["errors"].(bool); hasErrors {
		return fmt.Errorf("bulk index %s: some documents failed", name)
	}
	return nil
}

func withoutID(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k != "_id" {
			out[k] = v
		}
	}
	return out
}

// SearchPassages runs a full-text match on the index's text field and
// returns the top-k ranked passages.
func (s *KnowledgeService) SearchPassages(ctx context.Context, kind, query string, size int) ([]RetrievedDoc, error) {
	if size <= 0 {
		size = 3
	}
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"text": query,
			},
		},
	}
	raw, err := s.search(ctx, kind, body)
	if err != nil {
		return nil, err
	}
	return hitsToDocs(raw), nil
}

// FetchPolicyPassages retrieves the rule-bearing passages of the policy
// manual. An unreachable cluster or an empty result both surface as
// ErrKnowledgeUnavailable.
func (s *KnowledgeService) FetchPolicyPassages(ctx context.Context) ([]policy.Passage, error) {
	body := map[string]interface{}{
		"size": 20,
		"query": map[string]interface{}{
			"exists": map[string]interface{}{"field": "rule_type"},
		},
	}
	raw, err := s.search(ctx, IndexPolicy, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKnowledgeUnavailable, err)
	}

	docs := hitsToDocs(raw)
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: policy index returned no rule passages", ErrKnowledgeUnavailable)
	}

	passages := make([]policy.Passage, 0, len(docs))
	for _, doc := range docs {
		var p policy.Passage
		b, err := json.Marshal(doc.Source)
		if err != nil {
			continue
		}
		if err := json.Unmarshal(b, &p); err != nil {
			continue
		}
		p.Score = doc.Score
		passages = append(passages, p)
	}
	return passages, nil
}

func (s *KnowledgeService) search(ctx context.Context, kind string, body map[string]interface{}) (map[string]interface{}, error) {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.indexName(kind)),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return decodeBody(res.Body, res.Status())
}

func hitsToDocs(raw map[string]interface{}) []RetrievedDoc {
	var out []RetrievedDoc
	hitsObj, ok := raw["hits"].(map[string]interface{})
	if !ok {
		return out
	}
	hits, ok := hitsObj["hits"].([]interface{})
	if !ok {
		return out
	}
	for _, h := range hits {
		hm, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		doc := RetrievedDoc{}
		if score, ok := hm["_score"].(float64); ok {
			doc.Score = score
		}
		if src, ok := hm["_source"].(map[string]interface{}); ok {
			doc.Source = src
			if text, ok := src["text"].(string); ok {
				doc.Text = text
			}
		}
		out = append(out, doc)
	}
	return out
}

func decodeBody(r io.Reader, status string) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if strings.HasPrefix(status, "4") || strings.HasPrefix(status, "5") {
		if errObj, ok := result["error"]; ok {
			return nil, fmt.Errorf("elasticsearch error [%s]: %v", status, errObj)
		}
		return nil, fmt.Errorf("elasticsearch error: %s", status)
	}
	return result, nil
}
