// Package rewrite rewrites TypeScript-style import() type references inside
// documentation comments into module-reference tokens, and qualifies bare
// typedef names against the module typedef index.
//
// A Context owns every cache for exactly one rewrite run and enforces the
// two-phase protocol: every file must be ingested (pre-parse pass) before
// any individual comment is rewritten (per-comment pass).
package rewrite

import (
	"sync"

	"typeref/internal/core/errors"
	"typeref/internal/engine/modules"
	"typeref/internal/engine/resolver"
)

// Context is the run-scoped state shared by both rewrite passes. Construct a
// fresh Context for every run; there is no global state to reset.
type Context struct {
	fsys     modules.FS
	registry *modules.Registry
	index    *modules.TypedefIndex
	resolver *resolver.Resolver

	mu     sync.Mutex
	sealed bool
}

// Option configures a Context.
type Option func(*options)

type options struct {
	fsys modules.FS
}

// WithFS substitutes the filesystem surface, mainly for tests.
func WithFS(fsys modules.FS) Option {
	return func(o *options) { o.fsys = fsys }
}

// NewContext creates the state for one rewrite run. roots are the source
// root directories used to derive implicit module identifiers, in priority
// order.
func NewContext(roots []string, opts ...Option) *Context {
	o := options{fsys: modules.OSFS()}
	for _, opt := range opts {
		opt(&o)
	}

	index := modules.NewTypedefIndex()
	registry := modules.NewRegistry(o.fsys, roots, index)
	return &Context{
		fsys:     o.fsys,
		registry: registry,
		index:    index,
		resolver: resolver.New(o.fsys, registry),
	}
}

// Registry exposes the run's file-info cache.
func (c *Context) Registry() *modules.Registry {
	return c.registry
}

// Typedefs exposes the run's module typedef index.
func (c *Context) Typedefs() *modules.TypedefIndex {
	return c.index
}

// Seal marks the ingest phase complete. After sealing, RewriteSource fails
// and RewriteComment becomes available.
func (c *Context) Seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
}

// Sealed reports whether the ingest phase has completed.
func (c *Context) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

func (c *Context) requireUnsealed() error {
	if c.Sealed() {
		return errors.New(errors.CodeOrderingError, "pre-parse pass invoked after the run was sealed")
	}
	return nil
}

func (c *Context) requireSealed() error {
	if !c.Sealed() {
		return errors.New(errors.CodeOrderingError, "per-comment pass invoked before every file was ingested")
	}
	return nil
}
