package rewrite

import (
	"strings"

	"typeref/internal/core/errors"
	"typeref/internal/engine/comment"
	"typeref/internal/shared/observability"
)

// ImportRewrite records one import reference substitution made by the
// pre-parse pass, for reporting.
type ImportRewrite struct {
	File        string
	Original    string
	Replacement string
}

// RewriteSource is the pre-parse pass: it substitutes every import() type
// reference inside filename's documentation comments with a
// module-reference token, resolving specifiers relative to filename. Side
// effect: the file-info cache and typedef index are populated.
//
// Text with no recognizable reference is returned unchanged. Errors are
// fatal configuration errors only.
func (c *Context) RewriteSource(filename, source string) (string, []ImportRewrite, error) {
	if err := c.requireUnsealed(); err != nil {
		return "", nil, err
	}

	// Ingest this file first so its own identity is known even when other
	// files import it back through a cycle.
	if _, err := c.registry.FileInfo(filename, []byte(source)); err != nil {
		return "", nil, errors.AddContext(err, errors.CtxOperation, "ingest")
	}

	var (
		b        strings.Builder
		rewrites []ImportRewrite
		last     int
	)

	for _, block := range comment.Blocks(source) {
		for _, ref := range comment.ImportRefs(block.Text) {
			start := block.Start + ref.Start
			end := block.Start + ref.End

			replacement, err := c.replacementFor(filename, ref)
			if err != nil {
				return "", nil, err
			}

			b.WriteString(source[last:start])
			b.WriteString(ref.Marker)
			b.WriteString(replacement)
			last = end

			rewrites = append(rewrites, ImportRewrite{
				File:        filename,
				Original:    source[start:end],
				Replacement: ref.Marker + replacement,
			})
		}
	}
	b.WriteString(source[last:])

	return b.String(), rewrites, nil
}

// replacementFor resolves one reference and renders its substitution. An
// empty module identifier degrades to the bare symbol name.
func (c *Context) replacementFor(filename string, ref comment.ImportRef) (string, error) {
	specifier := strings.TrimSuffix(ref.Specifier, ".js")

	moduleID, err := c.resolver.Resolve(filename, specifier)
	if err != nil {
		return "", err
	}

	if moduleID == "" {
		observability.ImportRefsTotal.WithLabelValues(observability.OutcomeUnqualified).Inc()
		return ref.Symbol, nil
	}

	outcome := observability.OutcomeQualified
	if !strings.HasPrefix(specifier, ".") {
		outcome = observability.OutcomePassthrough
	}
	observability.ImportRefsTotal.WithLabelValues(outcome).Inc()

	token := "module:" + moduleID
	if ref.Symbol != "" {
		token += "~" + ref.Symbol
	}
	return token, nil
}
