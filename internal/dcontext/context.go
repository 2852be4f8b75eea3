// Package dcontext carries request-scoped values — chiefly the structured
// logger — through clib's resolver, cache, and registry/repository layers.
package dcontext

import "context"

// Context is an alias for the standard library's context.Context, kept as
// a named type so call sites read as domain vocabulary ("dcontext.Context")
// rather than the bare standard type.
type Context = context.Context

// Background returns a non-nil, empty Context.
func Background() Context {
	return context.Background()
}

// WithValue returns a copy of parent in which the value associated with
// key is val.
func WithValue(parent Context, key, val any) Context {
	return context.WithValue(parent, key, val)
}

// DetachedContext returns a context that preserves parent's values (the
// logger, chiefly) but is never canceled by parent's cancellation.
func DetachedContext(ctx Context) Context {
	return context.WithoutCancel(ctx)
}
