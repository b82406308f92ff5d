// Package route dispatches JSON payloads to handlers by the value found at a gjson path.
package route

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ngicks/gapsched/scheduler"
	"github.com/tidwall/gjson"
)

// Router is a terminal handler rather than a middleware:
// use Router.Handle as the handler, or Router.Middleware to fall through to the next handler.
type Router struct {
	path     string
	mu       sync.RWMutex
	routes   map[string]scheduler.EventHandler
	fallback scheduler.EventHandler
	onError  func(fired scheduler.Fired, err error)
}

// New creates a Router which matches the string form of the value at path.
// path follows gjson syntax, e.g. "type" or "meta.kind".
func New(path string, onError func(fired scheduler.Fired, err error)) *Router {
	if onError == nil {
		onError = func(scheduler.Fired, error) {}
	}
	return &Router{
		path:    path,
		routes:  make(map[string]scheduler.EventHandler),
		onError: onError,
	}
}

// On registers handler for key. A later call for the same key replaces the former.
func (r *Router) On(key string, handler scheduler.EventHandler) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	if handler == nil {
		delete(r.routes, key)
	} else {
		r.routes[key] = handler
	}
	return r
}

// Fallback sets the handler for payloads matching no route.
func (r *Router) Fallback(handler scheduler.EventHandler) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = handler
	return r
}

// Handle routes fired. Unmatched payloads go to fallback, or are reported to onError.
func (r *Router) Handle(fired scheduler.Fired) {
	r.route(fired, nil)
}

// Middleware routes matched payloads and passes unmatched ones to the next handler.
func (r *Router) Middleware(handler scheduler.EventHandler) scheduler.EventHandler {
	return func(fired scheduler.Fired) {
		r.route(fired, handler)
	}
}

func (r *Router) route(fired scheduler.Fired, next scheduler.EventHandler) {
	key, found, err := r.Match(fired.Value)
	if err != nil {
		r.onError(fired, err)
		return
	}

	r.mu.RLock()
	handler, ok := r.routes[key]
	fallback := r.fallback
	r.mu.RUnlock()

	switch {
	case found && ok:
		handler(fired)
	case next != nil:
		next(fired)
	case fallback != nil:
		fallback(fired)
	default:
		r.onError(fired, &NoRouteError{Path: r.path, Key: key, Found: found})
	}
}

// Match returns the value at the router's path in v.
// v is treated as JSON if it is []byte, string or json.RawMessage, otherwise it is marshaled first.
func (r *Router) Match(v any) (key string, found bool, err error) {
	var result gjson.Result
	switch x := v.(type) {
	case []byte:
		result = gjson.GetBytes(x, r.path)
	case json.RawMessage:
		result = gjson.GetBytes(x, r.path)
	case string:
		result = gjson.Get(x, r.path)
	default:
		bin, err := json.Marshal(v)
		if err != nil {
			return "", false, fmt.Errorf("route: marshaling payload: %w", err)
		}
		result = gjson.GetBytes(bin, r.path)
	}
	if !result.Exists() {
		return "", false, nil
	}
	return result.String(), true, nil
}

type NoRouteError struct {
	Path  string
	Key   string
	Found bool
}

func (e *NoRouteError) Error() string {
	if !e.Found {
		return fmt.Sprintf("no route: path %q not found in payload", e.Path)
	}
	return fmt.Sprintf("no route: path %q, key %q", e.Path, e.Key)
}
