// Package comment scans documentation comments for the three shapes the
// rewriter recognizes: @module declarations, @typedef declarations, and
// TypeScript-style import() type references. Anything that does not match
// one of those shapes is left for the caller to pass through untouched.
package comment

import "strings"

// Block is a single documentation comment span inside a source file,
// including the /** and */ delimiters. Offsets are byte offsets into the
// scanned text.
type Block struct {
	Start int
	End   int
	Text  string
}

// ImportRef is one import() type reference found inside a comment block.
// Offsets are relative to the scanned text. Start includes the optional
// nullability marker; End is one past the last byte of the reference.
type ImportRef struct {
	Start     int
	End       int
	Marker    string // "!", "?" or ""
	Specifier string // quoted path, without the quotes
	Symbol    string // dotted symbol name after the closing paren, or ""
}

// Span is a half-open [Start, End) byte range.
type Span struct {
	Start int
	End   int
}

const (
	blockOpen  = "/**"
	blockClose = "*/"
)

// Blocks returns every terminated documentation comment block in source, in
// order of appearance. An unterminated opener is ignored.
func Blocks(source string) []Block {
	var blocks []Block
	pos := 0
	for {
		rel := strings.Index(source[pos:], blockOpen)
		if rel < 0 {
			return blocks
		}
		start := pos + rel
		bodyStart := start + len(blockOpen)
		if bodyStart > len(source) {
			return blocks
		}
		endRel := strings.Index(source[bodyStart:], blockClose)
		if endRel < 0 {
			return blocks
		}
		end := bodyStart + endRel + len(blockClose)
		blocks = append(blocks, Block{Start: start, End: end, Text: source[start:end]})
		pos = end
	}
}

// ModuleTag returns the name of the first @module declaration in the block
// and whether one was present at all. A tag with no name argument reports
// ("", true); callers derive an implicit identifier in that case. Tags after
// the first are ignored by callers, so only the first is reported.
func ModuleTag(block string) (name string, ok bool) {
	pos := 0
	for {
		rel := strings.Index(block[pos:], "@module")
		if rel < 0 {
			return "", false
		}
		at := pos + rel
		after := at + len("@module")
		// Reject e.g. @modules or @moduleFoo.
		if after < len(block) && isNameByte(block[after]) {
			pos = after
			continue
		}
		return moduleName(block, after), true
	}
}

// moduleName reads the optional name argument following the @module marker.
// The name must sit on the same line as the tag.
func moduleName(block string, pos int) string {
	for pos < len(block) && (block[pos] == ' ' || block[pos] == '\t') {
		pos++
	}
	start := pos
	for pos < len(block) && isNameByte(block[pos]) {
		pos++
	}
	return block[start:pos]
}

// TypedefNames returns the declared name of every @typedef tag in the block,
// in scan order, duplicates preserved. Only the recognized shape
// "@typedef {expr} Name" yields a name; a tag missing either part is skipped.
func TypedefNames(block string) []string {
	var names []string
	pos := 0
	for {
		rel := strings.Index(block[pos:], "@typedef")
		if rel < 0 {
			return names
		}
		at := pos + rel
		pos = at + len("@typedef")
		if pos < len(block) && isNameByte(block[pos]) {
			continue
		}
		cur := skipSpace(block, pos)
		if cur >= len(block) || block[cur] != '{' {
			continue
		}
		exprEnd := matchBrace(block, cur)
		if exprEnd < 0 {
			continue
		}
		cur = skipSpace(block, exprEnd+1)
		nameStart := cur
		for cur < len(block) && isIdentByte(block[cur]) {
			cur++
		}
		if cur > nameStart {
			names = append(names, block[nameStart:cur])
			pos = cur
		}
	}
}

// ImportRefs returns every import() type reference in text, in order.
// Malformed candidates (unbalanced quotes, missing closing paren) are
// skipped so the surrounding text survives unmodified.
func ImportRefs(text string) []ImportRef {
	var refs []ImportRef
	pos := 0
	for {
		rel := strings.Index(text[pos:], "import(")
		if rel < 0 {
			return refs
		}
		at := pos + rel
		pos = at + len("import(")

		// An identifier tail like "reimport(" is not a reference.
		if at > 0 && isIdentByte(text[at-1]) {
			continue
		}

		cur := at + len("import(")
		if cur >= len(text) || (text[cur] != '\'' && text[cur] != '"') {
			continue
		}
		quote := text[cur]
		cur++
		specStart := cur
		for cur < len(text) && text[cur] != quote && text[cur] != '\n' {
			cur++
		}
		if cur >= len(text) || text[cur] != quote {
			continue
		}
		specifier := text[specStart:cur]
		cur++
		if cur >= len(text) || text[cur] != ')' {
			continue
		}
		cur++

		ref := ImportRef{Start: at, Specifier: specifier}
		if at > 0 && (text[at-1] == '!' || text[at-1] == '?') {
			ref.Marker = string(text[at-1])
			ref.Start = at - 1
		}

		if cur < len(text) && text[cur] == '.' {
			symEnd := cur + 1
			for symEnd < len(text) && isIdentByte(text[symEnd]) {
				symEnd++
			}
			if symEnd > cur+1 {
				ref.Symbol = text[cur+1 : symEnd]
				cur = symEnd
			}
		}
		ref.End = cur
		refs = append(refs, ref)
		pos = cur
	}
}

// TypeExpressions returns the span of every brace-delimited type expression
// in a comment: the text between a '{' and the next '}', exclusive of the
// braces themselves. An unclosed brace yields no span.
func TypeExpressions(text string) []Span {
	var spans []Span
	pos := 0
	for {
		rel := strings.IndexByte(text[pos:], '{')
		if rel < 0 {
			return spans
		}
		start := pos + rel + 1
		endRel := strings.IndexByte(text[start:], '}')
		if endRel < 0 {
			return spans
		}
		spans = append(spans, Span{Start: start, End: start + endRel})
		pos = start + endRel + 1
	}
}

// Identifiers returns the span of every bare identifier token inside a type
// expression: maximal dot-separated word sequences. Tokens immediately
// preceded by '~', ':' or '#' belong to an already-qualified reference and
// are not reported.
func Identifiers(expr string) []Span {
	var spans []Span
	pos := 0
	for pos < len(expr) {
		if !isTokenByte(expr[pos]) {
			pos++
			continue
		}
		start := pos
		for pos < len(expr) && isTokenByte(expr[pos]) {
			pos++
		}
		if start > 0 {
			switch expr[start-1] {
			case '~', ':', '#':
				continue
			}
		}
		spans = append(spans, Span{Start: start, End: pos})
	}
	return spans
}

func skipSpace(s string, pos int) int {
	for pos < len(s) {
		switch s[pos] {
		case ' ', '\t':
			pos++
		default:
			return pos
		}
	}
	return pos
}

// matchBrace returns the offset of the '}' matching the '{' at open,
// honoring nesting, or -1 when unbalanced.
func matchBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isTokenByte(b byte) bool {
	return isIdentByte(b) || b == '.'
}

func isNameByte(b byte) bool {
	return isIdentByte(b) || b == '/' || b == '-' || b == '.'
}
