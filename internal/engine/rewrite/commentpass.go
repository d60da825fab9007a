package rewrite

import (
	"strings"

	"typeref/internal/core/errors"
	"typeref/internal/engine/comment"
	"typeref/internal/shared/observability"
)

// RewriteComment is the per-comment pass: inside every brace-delimited type
// expression of one recorded comment, bare identifiers that match a typedef
// name of the owning file's module are qualified with the module-reference
// token. Unknown identifiers are left untouched.
//
// The pass requires a sealed context; the ordering guarantee is enforced,
// not assumed.
func (c *Context) RewriteComment(filename, text string) (string, error) {
	if err := c.requireSealed(); err != nil {
		return "", err
	}

	info, err := c.registry.FileInfo(filename, nil)
	if err != nil {
		return "", errors.AddContext(err, errors.CtxOperation, "comment pass")
	}
	// Files without a module scope never qualify bare names.
	if info.ModuleID == "" {
		return text, nil
	}

	known, ok := c.index.Lookup(info.ModuleID)
	if !ok {
		return text, nil
	}

	var (
		b    strings.Builder
		last int
	)
	for _, expr := range comment.TypeExpressions(text) {
		exprText := text[expr.Start:expr.End]
		for _, tok := range comment.Identifiers(exprText) {
			name := exprText[tok.Start:tok.End]
			if !known[name] {
				continue
			}
			b.WriteString(text[last : expr.Start+tok.Start])
			b.WriteString("module:")
			b.WriteString(info.ModuleID)
			b.WriteString("~")
			b.WriteString(name)
			last = expr.Start + tok.End
		}
	}
	if last == 0 {
		return text, nil
	}
	b.WriteString(text[last:])

	observability.CommentsRewrittenTotal.Inc()
	return b.String(), nil
}
