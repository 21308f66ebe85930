package routing

import (
	"fmt"

	"github.com/zalando/storefront/pattern"
)

// Registration maps a path pattern to the content it resolves to.
type Registration struct {

	// Id identifies the registration when merging the sets of
	// multiple sources. When empty, the pattern is used.
	Id string

	// Pattern is the raw path pattern, optionally containing '*'
	// wildcard tokens.
	Pattern string

	// Kind as declared by the source. Patterns containing a wildcard
	// are matched as wildcards regardless of the declared kind.
	Kind pattern.Kind

	// ContentId identifies the content that the registration
	// resolves to. It is opaque to the routing.
	ContentId string
}

func (r *Registration) id() string {
	if r.Id != "" {
		return r.Id
	}

	return r.Pattern
}

func (r *Registration) String() string {
	return fmt.Sprintf("%s(%q) -> %s", r.Kind, r.Pattern, r.ContentId)
}

// compile returns the compiled pattern of the registration.
func (r *Registration) compile() *pattern.Pattern {
	return pattern.Compile(r.Pattern, r.Kind == pattern.Landing)
}
