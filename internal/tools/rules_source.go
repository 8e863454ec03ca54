package tools

import (
	"context"
	"sync"
	"time"

	"github.com/ecomarket/support-agent/internal/policy"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// PolicySource provides the current return-policy rule set.
type PolicySource interface {
	Rules(ctx context.Context) (policy.RuleSet, error)
}

// PolicyFetcher retrieves raw policy passages from the knowledge base.
type PolicyFetcher interface {
	FetchPolicyPassages(ctx context.Context) ([]policy.Passage, error)
}

// CachedRuleSource caches the parsed rule set for a TTL and deduplicates
// concurrent knowledge-base fetches via singleflight, so a burst of
// eligibility checks costs one retrieval round trip.
type CachedRuleSource struct {
	kb  PolicyFetcher
	ttl time.Duration

	mu        sync.RWMutex
	rules     policy.RuleSet
	expiresAt time.Time

	sf singleflight.Group
}

func NewCachedRuleSource(kb PolicyFetcher, ttl time.Duration) *CachedRuleSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRuleSource{kb: kb, ttl: ttl}
}

func (c *CachedRuleSource) cached() (policy.RuleSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if time.Now().After(c.expiresAt) {
		return policy.RuleSet{}, false
	}
	return c.rules, true
}

func (c *CachedRuleSource) Rules(ctx context.Context) (policy.RuleSet, error) {
	if rules, ok := c.cached(); ok {
		return rules, nil
	}

	v, err, _ := c.sf.Do("rules", func() (interface{}, error) {
		// Re-check under singleflight: another caller may have filled
		// the cache while we waited.
		if rules, ok := c.cached(); ok {
			return rules, nil
		}

		passages, err := c.kb.FetchPolicyPassages(ctx)
		if err != nil {
			return nil, err
		}
		rules, err := policy.RulesFromPassages(passages)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.rules = rules
		c.expiresAt = time.Now().Add(c.ttl)
		c.mu.Unlock()

		log.Debug().
			Int("window_days", rules.WindowDays).
			Int("excluded_categories", len(rules.ExcludedCategories)).
			Msg("policy rules refreshed")
		return rules, nil
	})
	if err != nil {
		return policy.RuleSet{}, err
	}
	return v.(policy.RuleSet), nil
}

// StaticRuleSource serves a fixed rule set. Used in tests.
type StaticRuleSource struct {
	RuleSet policy.RuleSet
	Err     error
}

func (s StaticRuleSource) Rules(context.Context) (policy.RuleSet, error) {
	return s.RuleSet, s.Err
}
