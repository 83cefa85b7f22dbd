package guardkit

import (
	"strings"
)

// WildcardMatcher matches granted permission patterns against checked
// permission names in wildcard mode.
//
// Patterns and names are split on "." (or "/"; both delimiters are
// equivalent). Matching is segment-wise, case-sensitive and anchored at both
// ends, with two wildcard forms:
//
//   - a "*" segment matches exactly one segment of the checked name
//   - a trailing "*" matches the whole remaining tail (one or more segments)
//
// There are no partial-segment wildcards: "posts.ed*" is not a pattern.
type WildcardMatcher struct{}

// NewWildcardMatcher creates a new WildcardMatcher.
func NewWildcardMatcher() *WildcardMatcher {
	return &WildcardMatcher{}
}

// Match checks if a granted pattern matches a checked permission name.
//
// Examples:
//
//	Match("posts.*", "posts.edit")          // true - tail wildcard
//	Match("posts.*", "posts.delete.own")    // true - tail covers the rest
//	Match("posts.*", "comments.edit")       // false - different resource
//	Match("posts.*.own", "posts.edit.own")  // true - one-segment wildcard
//	Match("posts.*.own", "posts.edit")      // false - length mismatch
//	Match("posts.edit", "posts.edit.extra") // false - anchored, no tail star
func (wm *WildcardMatcher) Match(pattern, candidate string) bool {
	if pattern == candidate {
		return true
	}

	patternParts := splitPermission(pattern)
	candidateParts := splitPermission(candidate)

	for i, pp := range patternParts {
		if pp == "*" && i == len(patternParts)-1 {
			// Trailing wildcard consumes the remaining tail.
			return len(candidateParts) > i
		}
		if i >= len(candidateParts) {
			return false
		}
		if pp == "*" {
			continue
		}
		if pp != candidateParts[i] {
			return false
		}
	}

	// No trailing wildcard: the candidate must be fully consumed too.
	return len(patternParts) == len(candidateParts)
}

// MatchAny checks if any of the granted patterns match the checked name.
func (wm *WildcardMatcher) MatchAny(patterns []string, candidate string) bool {
	for _, pattern := range patterns {
		if wm.Match(pattern, candidate) {
			return true
		}
	}
	return false
}

// Validate checks that a permission string is usable as a wildcard pattern:
// non-empty, no empty segments, and each segment either "*" or made of
// identifier characters.
func (wm *WildcardMatcher) Validate(pattern string) error {
	if pattern == "" {
		return NewError(ErrInvalidArgument, "permission cannot be empty")
	}

	for _, part := range splitPermission(pattern) {
		if part == "" {
			return NewError(ErrInvalidArgument, "permission segments cannot be empty").WithName(pattern)
		}
		if part == "*" {
			continue
		}
		for _, c := range part {
			if !isValidPermissionChar(c) {
				return NewError(ErrInvalidArgument, "permission contains invalid character").WithName(pattern)
			}
		}
	}

	return nil
}

// splitPermission splits on either supported delimiter. "/" is normalized
// to "." first so mixed delimiters split identically.
func splitPermission(s string) []string {
	return strings.Split(strings.ReplaceAll(s, "/", "."), ".")
}

func isValidPermissionChar(c rune) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}

// DefaultMatcher is the default wildcard matcher instance.
var DefaultMatcher = NewWildcardMatcher()

// MatchWildcard is a convenience function using the default matcher.
func MatchWildcard(pattern, candidate string) bool {
	return DefaultMatcher.Match(pattern, candidate)
}

// MatchAnyWildcard is a convenience function using the default matcher.
func MatchAnyWildcard(patterns []string, candidate string) bool {
	return DefaultMatcher.MatchAny(patterns, candidate)
}
