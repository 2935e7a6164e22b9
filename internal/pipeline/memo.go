package pipeline

import (
	"slices"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"financeiro/internal/cache"
	"financeiro/internal/core"
)

var memoLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "financeiro",
		Name:      "filter_cache_lookups_total",
		Help:      "Filter pipeline cache lookups by result",
	},
	[]string{"result"},
)

// Memo caches Apply results keyed on the criteria and the version of the
// entry collection they were computed from.
type Memo struct {
	cache *cache.LRUCache[[]core.Entry]
}

// NewMemo creates a memo holding up to size results for ttl.
func NewMemo(size int, ttl time.Duration) *Memo {
	return &Memo{cache: cache.NewLRUCache[[]core.Entry](size, ttl)}
}

// Cache exposes the underlying cache so it can be swept by a cache.Manager.
func (m *Memo) Cache() *cache.LRUCache[[]core.Entry] { return m.cache }

// Apply is Apply(entries, c) served from cache when entries at this version
// were already filtered with the same criteria. The caller owns the returned
// slice.
func (m *Memo) Apply(entries []core.Entry, version uint64, c Criteria) []core.Entry {
	if c.Today.IsZero() {
		c.Today = core.Today()
	}
	key := strconv.FormatUint(version, 10) + "|" + c.Key()

	if out, ok := m.cache.Get(key); ok {
		memoLookups.WithLabelValues("hit").Inc()
		return slices.Clone(out)
	}
	memoLookups.WithLabelValues("miss").Inc()

	out := Apply(entries, c)
	m.cache.Set(key, out)
	return slices.Clone(out)
}
