// Package slug derives URL-fragment-safe anchor ids from heading text.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// RE2's \s is ASCII only; Unicode spaces such as NBSP count too.
	disallowed = regexp.MustCompile(`[^a-z0-9\s\p{Z}\x{FEFF}\v-]`)
	spaceRun   = regexp.MustCompile(`[\s\p{Z}\x{FEFF}\v]+`)
	dashRun    = regexp.MustCompile(`-+`)
)

// Slugify converts heading text to an anchor id. The result contains only
// [a-z0-9-], never starts or ends with '-', and may be empty.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = disallowed.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Registry hands out unique anchor ids within one document. The first
// heading with a given slug keeps it; repeats get "-2", "-3" and so on.
// The zero value is ready to use. A Registry is not safe for concurrent use.
type Registry struct {
	taken map[string]int
}

// ID returns the anchor id for text, or "" when text has no slug. Empty
// slugs are never registered.
func (r *Registry) ID(text string) string {
	base := Slugify(text)
	if base == "" {
		return ""
	}
	if r.taken == nil {
		r.taken = make(map[string]int)
	}
	n, seen := r.taken[base]
	if !seen {
		r.taken[base] = 1
		return base
	}
	for {
		n++
		id := base + "-" + strconv.Itoa(n)
		if _, clash := r.taken[id]; clash {
			continue
		}
		r.taken[base] = n
		r.taken[id] = 1
		return id
	}
}

// Reset forgets every id handed out so far.
func (r *Registry) Reset() {
	r.taken = nil
}
