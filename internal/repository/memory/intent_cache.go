package memory

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// IntentCache memoizes classifier verdicts for recently seen utterances so
// repeated messages (retries, double submits) skip a model round trip.
type IntentCache struct {
	cache *cache.Cache
}

func NewIntentCache() *IntentCache {
	// Short default expiration; classification is cheap to redo and stale
	// verdicts are harmless but pointless to keep around.
	c := cache.New(10*time.Minute, 5*time.Minute)
	return &IntentCache{
		cache: c,
	}
}

func (r *IntentCache) key(utterance string) string {
	return strings.ToLower(strings.TrimSpace(utterance))
}

func (r *IntentCache) Save(utterance string, intent string) {
	r.cache.Set(r.key(utterance), intent, cache.DefaultExpiration)
}

func (r *IntentCache) Get(utterance string) (string, bool) {
	if x, found := r.cache.Get(r.key(utterance)); found {
		return x.(string), true
	}
	return "", false
}
