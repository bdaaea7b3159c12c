package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netview/pkg/cache"
	"github.com/matzehuels/netview/pkg/graph"
)

// Cached wraps a Source with a document cache.
type Cached struct {
	Source
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCached caches documents loaded from src for ttl. Cache failures are
// logged and fall through to src.
func NewCached(src Source, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{Source: src, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

func (s *Cached) Load(ctx context.Context, name string) (graph.Document, error) {
	key := s.keyer.NetworkKey(s.Kind(), name)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("network cache read", "key", key, "err", err)
	} else if ok {
		var doc graph.Document
		if err := json.Unmarshal(data, &doc); err == nil {
			return doc, nil
		}
		s.logger.Warn("network cache entry unreadable", "key", key)
	}

	doc, err := s.Source.Load(ctx, name)
	if err != nil {
		return graph.Document{}, err
	}
	if data, err := json.Marshal(doc); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("network cache write", "key", key, "err", err)
		}
	}
	return doc, nil
}
