// Package observability provides hooks for view events, cache operations and
// host protocol requests.
//
// Instrumentation is optional and backend-agnostic. Libraries emit events
// through the registered hooks; main registers implementations at startup.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [LogViewHooks] is the one concrete implementation shipped here; it writes
// view events to a charmbracelet logger at debug level.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetViewHooks(observability.NewLogViewHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.View().OnSelect(ctx, nodeID, neighborCount)
//	observability.View().OnReveal(ctx, nodeID, revealed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// View Hooks
// =============================================================================

// ViewHooks receives events from the view engine.
type ViewHooks interface {
	// OnLoad records a network load: node count, suppressed edge count and
	// the number of orphaned edges dropped.
	OnLoad(ctx context.Context, nodes, suppressed, orphans int)

	// Selection events
	OnSelect(ctx context.Context, nodeID string, neighbors int)
	OnDeselect(ctx context.Context)

	// Hidden edge events
	OnReveal(ctx context.Context, nodeID string, edges int)
	OnCollapse(ctx context.Context, edges, restored int)

	// OnTierChange records a level-of-detail switch.
	OnTierChange(ctx context.Context, from, to string, visible int)

	// OnCommand records a dispatched host command. err is nil on success and
	// carries the no-op reason otherwise.
	OnCommand(ctx context.Context, name string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the host protocol server.
type HTTPHooks interface {
	// OnRequest records an inbound HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and handling time.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopViewHooks is a no-op implementation of ViewHooks.
type NoopViewHooks struct{}

func (NoopViewHooks) OnLoad(context.Context, int, int, int)                        {}
func (NoopViewHooks) OnSelect(context.Context, string, int)                        {}
func (NoopViewHooks) OnDeselect(context.Context)                                   {}
func (NoopViewHooks) OnReveal(context.Context, string, int)                        {}
func (NoopViewHooks) OnCollapse(context.Context, int, int)                         {}
func (NoopViewHooks) OnTierChange(context.Context, string, string, int)            {}
func (NoopViewHooks) OnCommand(context.Context, string, time.Duration, error)      {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                     {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	viewHooks  ViewHooks  = NoopViewHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetViewHooks registers custom view hooks.
// This should be called once at application startup before any network is loaded.
func SetViewHooks(h ViewHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before the server starts.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// View returns the registered view hooks.
func View() ViewHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	viewHooks = NoopViewHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
