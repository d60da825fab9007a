package rewrite

import (
	"log/slog"
	"sync"
)

// Plugin adapts a Context to a host documentation generator's hook
// convention: hook A receives a file's text before parsing, hook B receives
// an individual comment after it is recorded. Hooks mutate text and have no
// error channel, so the first fatal error is retained and surfaced through
// Err; subsequent text passes through unchanged.
//
// The first OnComment call seals the context. A host that fires hooks in
// the wrong order trips an ordering error instead of producing stale
// rewrites.
type Plugin struct {
	ctx *Context

	mu  sync.Mutex
	err error
}

func NewPlugin(ctx *Context) *Plugin {
	return &Plugin{ctx: ctx}
}

// BeforeParse is hook A: the pre-parse pass over a whole file's text.
func (p *Plugin) BeforeParse(filename, source string) string {
	if p.failed() {
		return source
	}

	rewritten, _, err := p.ctx.RewriteSource(filename, source)
	if err != nil {
		p.fail(err)
		return source
	}
	return rewritten
}

// OnComment is hook B: the per-comment pass over one recorded comment.
func (p *Plugin) OnComment(filename, text string) string {
	if !p.ctx.Sealed() {
		p.ctx.Seal()
	}
	if p.failed() {
		return text
	}

	rewritten, err := p.ctx.RewriteComment(filename, text)
	if err != nil {
		p.fail(err)
		return text
	}
	return rewritten
}

// Err returns the first fatal error encountered by either hook, if any.
func (p *Plugin) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Plugin) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		p.err = err
		slog.Error("rewrite hook failed", "error", err)
	}
}

func (p *Plugin) failed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err != nil
}
