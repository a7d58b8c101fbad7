package util

import (
	"regexp"
	"strings"
)

var didRegex = regexp.MustCompile(`^did:[a-z0-9]+:[A-Za-z0-9._:%-]+$`)

// IsValidTarget reports whether s is a usable campaign target: a dotted
// Bluesky handle or a did:<method>:<id> identifier.
func IsValidTarget(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "did:") {
		return didRegex.MatchString(trimmed)
	}
	return strings.HasSuffix(trimmed, ".bsky.social")
}

// NormalizeHandle trims surrounding whitespace, strips a leading @ and
// lowercases the handle.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// FilterValidTargets returns the valid targets from raw, preserving order.
func FilterValidTargets(raw []string) []string {
	valid := make([]string, 0, len(raw))
	for _, t := range raw {
		if IsValidTarget(t) {
			valid = append(valid, strings.TrimSpace(t))
		}
	}
	return valid
}
