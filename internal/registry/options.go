package registry

import (
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/formtree/internal/cachemanager"
	"github.com/zjrosen/formtree/internal/formtree"
)

// Option configures a Registry.
type Option func(*Registry)

// WithTracer records registrations as spans on t.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithPathCache replaces the registry's private parsed-path cache. Parsed
// paths are immutable, so one cache may be shared by many registries.
func WithPathCache(c cachemanager.CacheManager[string, formtree.Path]) Option {
	return func(r *Registry) {
		if c != nil {
			r.pathCache = c
		}
	}
}

// WithSessionID sets the session identifier stamped on every event. By
// default a random UUID is used.
func WithSessionID(id string) Option {
	return func(r *Registry) {
		if id != "" {
			r.sessionID = id
		}
	}
}
