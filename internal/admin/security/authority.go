package security

import "strings"

const authoritySeparator = ":"

// AuthorityImplies reports whether a granted authority covers the required
// one. Authorities are ":"-separated; a "*" segment matches any single
// segment and a trailing "*" matches everything after it, so "*" alone
// grants every authority and "blog:*" grants "blog:article:create".
func AuthorityImplies(granted, required string) bool {
	if granted == "" || required == "" {
		return false
	}
	if granted == required || granted == "*" {
		return true
	}

	g := strings.Split(granted, authoritySeparator)
	r := strings.Split(required, authoritySeparator)
	for i, seg := range g {
		if seg == "*" && i == len(g)-1 {
			return len(r) >= len(g)
		}
		if i >= len(r) {
			return false
		}
		if seg != "*" && seg != r[i] {
			return false
		}
	}
	return len(g) == len(r)
}

// HasAnyAuthority reports whether any granted authority covers any of the
// required ones.
func HasAnyAuthority(granted []string, required ...string) bool {
	for _, req := range required {
		for _, g := range granted {
			if AuthorityImplies(g, req) {
				return true
			}
		}
	}
	return false
}
