// Package pattern compiles content registration patterns.
//
// A pattern is a raw path string that may contain any number of '*'
// wildcard tokens. Patterns without a wildcard are literal keys and are
// looked up by exact string equality. Patterns with at least one
// wildcard are compiled into a matcher that accepts a whole candidate
// string when every literal segment between the wildcards appears in
// order, with the wildcards matching any, possibly empty, sequence of
// characters:
//
//	/shop/*          accepts /shop/, /shop/jackets, /shop/sale/winter
//	/shop/*/details  accepts /shop/jackets/details
//	*.html           accepts /about.html
//
// The segments are escaped before compilation, so characters that are
// significant in regular expressions have no special meaning in
// patterns. Any string is a valid pattern.
//
// The bare wildcard, "*", is reserved as the default pattern, unless the
// registration is flagged as a landing page.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// Token is the wildcard token in registration patterns.
const Token = "*"

// Kind tells how a registration participates in resolution.
type Kind int

const (
	// Literal registrations are matched by exact path equality.
	Literal Kind = iota

	// Landing registrations never become the default registration.
	Landing

	// Wildcard registrations contain at least one wildcard token.
	Wildcard
)

// String returns the name of the kind as used in registration sources.
func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case Landing:
		return "landing"
	case Wildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind returns the kind for its name. It accepts the values
// returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "literal":
		return Literal, nil
	case "landing":
		return Landing, nil
	case "wildcard":
		return Wildcard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
}

// Pattern is the compiled form of a raw registration pattern.
type Pattern struct {
	raw     string
	kind    Kind
	landing bool
	rx      *regexp.Regexp
}

// Compile classifies raw and, when it contains a wildcard, compiles its
// matcher. The landing flag marks patterns of landing registrations.
func Compile(raw string, landing bool) *Pattern {
	p := &Pattern{raw: raw, landing: landing}
	if !strings.Contains(raw, Token) {
		p.kind = Literal
		if landing {
			p.kind = Landing
		}

		return p
	}

	p.kind = Wildcard
	p.rx = regexp.MustCompile(expression(raw))
	return p
}

// expression builds the anchored regular expression for a wildcard pattern.
func expression(raw string) string {
	segments := strings.Split(raw, Token)
	for i := range segments {
		segments[i] = regexp.QuoteMeta(segments[i])
	}

	return "(?s)^" + strings.Join(segments, ".*?") + "$"
}

// Raw returns the source text of the pattern.
func (p *Pattern) Raw() string { return p.raw }

// Kind returns the classification of the pattern.
func (p *Pattern) Kind() Kind { return p.kind }

// IsWildcard tells whether the pattern has a compiled matcher.
func (p *Pattern) IsWildcard() bool { return p.rx != nil }

// IsDefault tells whether the pattern is eligible for the default slot.
func (p *Pattern) IsDefault() bool { return p.raw == Token && !p.landing }

// Match reports whether the whole of s is accepted by the pattern.
// Literal patterns accept only their own text.
func (p *Pattern) Match(s string) bool {
	if p.rx == nil {
		return s == p.raw
	}

	return p.rx.MatchString(s)
}

// Contains reports whether the matcher of p accepts the source text of
// q, which is how containment between registrations is inferred.
func (p *Pattern) Contains(q *Pattern) bool {
	return p.Match(q.raw)
}

// String returns the compiled expression for wildcard patterns, and the
// raw text for literal ones.
func (p *Pattern) String() string {
	if p.rx == nil {
		return p.raw
	}

	return p.rx.String()
}
