package scoring

import "strings"

// Capability matching is deliberately forgiving: tags come from free-text
// profiles and tender documents that rarely agree on wording. A requirement
// is satisfied by exact match, substring containment in either direction,
// or membership in the same synonym group.

var synonymGroups = [][]string{
	{"it services", "information technology", "software development"},
	{"construction", "general contracting", "building services"},
	{"design", "architecture"},
	{"logistics", "transportation", "freight services"},
	{"consulting", "advisory services"},
	{"maintenance", "facilities management"},
	{"security", "guard services"},
	{"training", "education services"},
	{"environmental services", "remediation"},
}

// normalizeTag lowercases and trims a capability tag.
func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// tagsEquivalent reports whether two normalized tags satisfy one another.
func tagsEquivalent(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b || strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	for _, group := range synonymGroups {
		inGroup := func(s string) bool {
			for _, member := range group {
				if s == member {
					return true
				}
			}
			return false
		}
		if inGroup(a) && inGroup(b) {
			return true
		}
	}
	return false
}

// Satisfies reports whether any offered capability covers the requirement.
func Satisfies(requirement string, offered []string) bool {
	req := normalizeTag(requirement)
	for _, o := range offered {
		if tagsEquivalent(req, normalizeTag(o)) {
			return true
		}
	}
	return false
}

// GapSet returns the required capabilities not covered by the offered list,
// preserving the required order.
func GapSet(required, offered []string) []string {
	gaps := make([]string, 0)
	for _, req := range required {
		if !Satisfies(req, offered) {
			gaps = append(gaps, req)
		}
	}
	return gaps
}

// AnyOverlap reports whether the two tag lists share at least one
// equivalent entry.
func AnyOverlap(a, b []string) bool {
	for _, tag := range a {
		if Satisfies(tag, b) {
			return true
		}
	}
	return false
}
