package routing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// uuidLen is the length of a canonical textual UUID.
const uuidLen = 36

// converter describes how a path parameter is matched.
type converter struct {
	name string
	// span returns the longest run at the start of s this converter may consume.
	span func(s string) int
	// valid reports whether v, a candidate of length <= span, is acceptable.
	valid func(v string) bool
}

var converters = map[string]*converter{ //nolint:gochecknoglobals // read-only lookup table
	"str":  {name: "str", span: spanUntilSlash, valid: nonEmpty},
	"int":  {name: "int", span: spanWhile(isDigit), valid: nonEmpty},
	"slug": {name: "slug", span: spanWhile(isSlugChar), valid: nonEmpty},
	"uuid": {name: "uuid", span: spanUUID, valid: isCanonicalUUID},
	"path": {name: "path", span: func(s string) int { return len(s) }, valid: nonEmpty},
}

const defaultConverter = "str"

func spanUntilSlash(s string) int {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		return i
	}
	return len(s)
}

func spanWhile(ok func(byte) bool) func(string) int {
	return func(s string) int {
		n := 0
		for n < len(s) && ok(s[n]) {
			n++
		}
		return n
	}
}

func spanUUID(s string) int {
	return min(len(s), uuidLen)
}

func nonEmpty(v string) bool { return v != "" }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSlugChar(c byte) bool {
	return isDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '-' || c == '_'
}

// isCanonicalUUID accepts only the lowercase hyphenated form.
func isCanonicalUUID(v string) bool {
	if len(v) != uuidLen {
		return false
	}
	id, err := uuid.Parse(v)
	return err == nil && id.String() == v
}

// token is either literal text or a named parameter.
type token struct {
	literal string
	param   string
	conv    *converter
}

// Pattern is a compiled route pattern such as "api/users/" or "users/<int:pk>/".
type Pattern struct {
	raw    string
	tokens []token
	params int
}

// Compile parses raw into a Pattern.
func Compile(raw string) (Pattern, error) {
	if strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("%w: %q must not start with a slash", ErrInvalidPattern, raw)
	}
	p := Pattern{raw: raw}
	seen := make(map[string]struct{})
	rest := raw
	for rest != "" {
		open := strings.IndexByte(rest, '<')
		if closeIdx := strings.IndexByte(rest, '>'); closeIdx >= 0 && (open < 0 || closeIdx < open) {
			return Pattern{}, fmt.Errorf("%w: %q has an unmatched '>'", ErrInvalidPattern, raw)
		}
		if open < 0 {
			p.tokens = append(p.tokens, token{literal: rest})
			break
		}
		if open > 0 {
			p.tokens = append(p.tokens, token{literal: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '>')
		if end < 0 {
			return Pattern{}, fmt.Errorf("%w: %q has an unmatched '<'", ErrInvalidPattern, raw)
		}
		tok, err := parseParam(rest[open+1 : open+end])
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, raw, err)
		}
		if _, dup := seen[tok.param]; dup {
			return Pattern{}, fmt.Errorf("%w: %q repeats parameter %q", ErrInvalidPattern, raw, tok.param)
		}
		seen[tok.param] = struct{}{}
		p.tokens = append(p.tokens, tok)
		p.params++
		rest = rest[open+end+1:]
	}
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw string) Pattern {
	p, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func parseParam(body string) (token, error) {
	convName, name := defaultConverter, body
	if i := strings.IndexByte(body, ':'); i >= 0 {
		convName, name = body[:i], body[i+1:]
	}
	if !isIdentifier(name) {
		return token{}, fmt.Errorf("parameter name %q is not an identifier", name)
	}
	conv, ok := converters[convName]
	if !ok {
		return token{}, fmt.Errorf("unknown converter %q", convName)
	}
	return token{param: name, conv: conv}, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || i > 0 && isDigit(c) {
			continue
		}
		return false
	}
	return true
}

// String returns the source text of the pattern.
func (p Pattern) String() string { return p.raw }

// IsLiteral reports whether the pattern has no parameters.
func (p Pattern) IsLiteral() bool { return p.params == 0 }

// match tries p against the start of path. When full is set the whole path
// must be consumed. It returns the unconsumed rest and captured parameters.
func (p Pattern) match(path string, full bool) (string, map[string]string, bool) {
	if p.IsLiteral() {
		if full {
			return "", nil, path == p.raw
		}
		if strings.HasPrefix(path, p.raw) {
			return path[len(p.raw):], nil, true
		}
		return "", nil, false
	}
	params := make(map[string]string, p.params)
	rest, ok := matchTokens(p.tokens, path, full, params)
	if !ok {
		return "", nil, false
	}
	return rest, params, true
}

// matchTokens matches greedily and backtracks over parameter lengths.
func matchTokens(tokens []token, s string, full bool, params map[string]string) (string, bool) {
	if len(tokens) == 0 {
		if full && s != "" {
			return "", false
		}
		return s, true
	}
	tok := tokens[0]
	if tok.conv == nil {
		if !strings.HasPrefix(s, tok.literal) {
			return "", false
		}
		return matchTokens(tokens[1:], s[len(tok.literal):], full, params)
	}
	for n := tok.conv.span(s); n > 0; n-- {
		v := s[:n]
		if !tok.conv.valid(v) {
			continue
		}
		if rest, ok := matchTokens(tokens[1:], s[n:], full, params); ok {
			params[tok.param] = v
			return rest, true
		}
	}
	return "", false
}

// expand substitutes params into the pattern. It returns the built path and
// the params it did not consume.
func (p Pattern) expand(params map[string]string) (string, map[string]string, error) {
	if p.IsLiteral() {
		return p.raw, params, nil
	}
	var b strings.Builder
	used := 0
	for _, tok := range p.tokens {
		if tok.conv == nil {
			b.WriteString(tok.literal)
			continue
		}
		v, ok := params[tok.param]
		if !ok {
			return "", nil, fmt.Errorf("missing parameter %q", tok.param)
		}
		if tok.conv.span(v) != len(v) || !tok.conv.valid(v) {
			return "", nil, fmt.Errorf("parameter %q value %q does not match %s", tok.param, v, tok.conv.name)
		}
		b.WriteString(v)
		used++
	}
	rest := make(map[string]string, len(params)-used)
	for k, v := range params {
		if !p.hasParam(k) {
			rest[k] = v
		}
	}
	return b.String(), rest, nil
}

func (p Pattern) hasParam(name string) bool {
	for _, tok := range p.tokens {
		if tok.conv != nil && tok.param == name {
			return true
		}
	}
	return false
}
