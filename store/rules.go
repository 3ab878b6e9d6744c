package store

import (
	"context"
	"time"

	"callward/event"
	"callward/filter"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	rulesCacheKey = "rules"
	rulesCacheTTL = 30 * time.Second
)

// Rules builds filter.RuleSet snapshots from the store. The event loop and
// the mailbox poller share one instance; snapshots are cached briefly and
// concurrent loads are collapsed with singleflight. Invalidate must be
// called after every list mutation.
type Rules struct {
	store    Store
	triggers map[event.Trigger]struct{}
	cache    *lru.LRU[string, *filter.RuleSet]
	sf       singleflight.Group
}

func NewRules(s Store, triggers []event.Trigger) *Rules {
	set := make(map[event.Trigger]struct{}, len(triggers))
	for _, t := range triggers {
		set[t] = struct{}{}
	}
	return &Rules{
		store:    s,
		triggers: set,
		cache:    lru.NewLRU[string, *filter.RuleSet](1, nil, rulesCacheTTL),
	}
}

// Snapshot returns the current rule set, served from cache when fresh.
func (r *Rules) Snapshot(ctx context.Context) (*filter.RuleSet, error) {
	if rules, ok := r.cache.Get(rulesCacheKey); ok {
		return rules, nil
	}

	v, err, _ := r.sf.Do(rulesCacheKey, func() (any, error) {
		if rules, ok := r.cache.Get(rulesCacheKey); ok {
			return rules, nil
		}
		rules, err := r.load(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Add(rulesCacheKey, rules)
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*filter.RuleSet), nil
}

// Invalidate drops the cached snapshot so the next Snapshot call reloads.
func (r *Rules) Invalidate() {
	r.cache.Remove(rulesCacheKey)
}

func (r *Rules) load(ctx context.Context) (*filter.RuleSet, error) {
	rules := &filter.RuleSet{Triggers: r.triggers}

	var err error
	if rules.PhoneBlacklist, err = r.store.Entries(ctx, PhoneBlacklist); err != nil {
		return nil, err
	}
	if rules.PhoneWhitelist, err = r.store.Entries(ctx, PhoneWhitelist); err != nil {
		return nil, err
	}
	if rules.TextBlacklist, err = r.store.Entries(ctx, TextBlacklist); err != nil {
		return nil, err
	}
	if rules.TextWhitelist, err = r.store.Entries(ctx, TextWhitelist); err != nil {
		return nil, err
	}
	return rules, nil
}
