// Package antpath matches request paths against ant-style patterns.
//
// Supported wildcards:
//   - "?"      matches exactly one character within a segment
//   - "*"      matches zero or more characters within a segment
//   - "**"     matches zero or more whole segments
//   - "{name}" matches any single non-empty segment
//
// A pattern ending in "/**" also matches its base path, so "/docs/**" matches
// "/docs". Otherwise a trailing slash must be present on both sides or neither.
package antpath

import (
	"path"
	"strings"
)

const separator = "/"

// Pattern is a compiled ant-style pattern. The zero value matches nothing.
type Pattern struct {
	raw      string
	tokens   []string
	matchAll bool
}

// Compile tokenises an ant-style pattern for repeated matching.
func Compile(pattern string) Pattern {
	p := Pattern{raw: pattern, tokens: tokenize(pattern)}
	p.matchAll = pattern == "/**" || pattern == "**"
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Match reports whether the pattern matches the given path.
func (p Pattern) Match(s string) bool {
	if p.raw == "" {
		return false
	}
	if p.matchAll {
		return true
	}
	if strings.HasPrefix(p.raw, separator) != strings.HasPrefix(s, separator) {
		return false
	}

	if !matchTokens(p.tokens, tokenize(s)) {
		return false
	}

	// "/a/**" is allowed to swallow a trailing slash, everything else must agree.
	if n := len(p.tokens); n > 0 && p.tokens[n-1] == "**" {
		return true
	}
	return strings.HasSuffix(p.raw, separator) == strings.HasSuffix(s, separator)
}

// Match is a convenience wrapper around Compile(pattern).Match(s).
func Match(pattern, s string) bool {
	return Compile(pattern).Match(s)
}

func tokenize(s string) []string {
	parts := strings.Split(s, separator)
	out := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func matchTokens(pat, segs []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			// Collapse runs of "**" then try every possible split point.
			for len(pat) > 0 && pat[0] == "**" {
				pat = pat[1:]
			}
			if len(pat) == 0 {
				return true
			}
			for i := 0; i <= len(segs); i++ {
				if matchTokens(pat, segs[i:]) {
					return true
				}
			}
			return false
		}

		if len(segs) == 0 || !matchSegment(pat[0], segs[0]) {
			return false
		}
		pat, segs = pat[1:], segs[1:]
	}
	return len(segs) == 0
}

func matchSegment(pat, seg string) bool {
	if pat == "*" {
		return true
	}
	if len(pat) > 2 && pat[0] == '{' && pat[len(pat)-1] == '}' {
		return seg != ""
	}
	if !strings.ContainsAny(pat, "*?") {
		return pat == seg
	}
	// Segments never contain '/', so path.Match's '*' and '?' behave exactly
	// like ant wildcards here. Brackets in our patterns are not supported.
	ok, err := path.Match(pat, seg)
	return err == nil && ok
}
