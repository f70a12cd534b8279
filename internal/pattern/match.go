package pattern

import (
	"path"
	"strings"
)

// Matches reports whether the pattern governs the given path.
// An empty AppliesTo list matches everything. Globs use path.Match
// syntax per segment, with ** matching zero or more segments.
func (p *Pattern) Matches(target string) bool {
	if len(p.AppliesTo) == 0 {
		return true
	}

	target = path.Clean(strings.TrimPrefix(target, "./"))
	for _, glob := range p.AppliesTo {
		if matchGlob(path.Clean(glob), target) {
			return true
		}
	}
	return false
}

// Select filters a catalog down to the patterns governing the target.
func Select(catalog []Pattern, target string) []Pattern {
	var out []Pattern
	for _, p := range catalog {
		if p.Matches(target) {
			out = append(out, p)
		}
	}
	return out
}

func matchGlob(glob, target string) bool {
	return matchSegments(strings.Split(glob, "/"), strings.Split(target, "/"))
}

func matchSegments(globSegs, targetSegs []string) bool {
	if len(globSegs) == 0 {
		return len(targetSegs) == 0
	}

	if globSegs[0] == "**" {
		// ** matches zero or more path segments
		for i := 0; i <= len(targetSegs); i++ {
			if matchSegments(globSegs[1:], targetSegs[i:]) {
				return true
			}
		}
		return false
	}

	if len(targetSegs) == 0 {
		return false
	}

	ok, err := path.Match(globSegs[0], targetSegs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(globSegs[1:], targetSegs[1:])
}
