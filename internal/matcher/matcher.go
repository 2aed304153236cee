// Package matcher matches dataset and National Society names against glob or
// regular expression patterns. Matching ignores case.
package matcher

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto attempts to detect the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches names against one compiled pattern.
type Matcher struct {
	pattern     string
	patternType PatternType
	compiled    *regexp.Regexp
}

// New compiles pattern. Globs must match the whole name; regular
// expressions may match anywhere unless anchored.
func New(patternType PatternType, pattern string) (*Matcher, error) {
	if patternType == Auto {
		patternType = detectPatternType(pattern)
	}

	var expr string
	switch patternType {
	case Glob:
		expr = GlobToRegex(pattern)
	case Regex:
		expr = pattern
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}

	compiled, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", patternType, pattern, err)
	}
	return &Matcher{pattern: pattern, patternType: patternType, compiled: compiled}, nil
}

// Match reports whether name matches the pattern.
func (m *Matcher) Match(name string) bool {
	return m.compiled.MatchString(strings.TrimSpace(name))
}

// Filter returns the names that match, in order.
func (m *Matcher) Filter(names ...string) []string {
	var out []string
	for _, n := range names {
		if m.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Type returns the pattern type being used.
func (m *Matcher) Type() PatternType {
	return m.patternType
}

// IsPattern reports whether s contains glob or regex syntax. Plain names
// are looked up as they are.
func IsPattern(s string) bool {
	return IsGlobPattern(s) || IsRegexPattern(s)
}

// IsGlobPattern checks if a string contains glob wildcards.
func IsGlobPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]")
}

// IsRegexPattern attempts to detect if a pattern is a regex.
func IsRegexPattern(pattern string) bool {
	return detectPatternType(pattern) == Regex
}

// detectPatternType treats a pattern as regex when it uses syntax globs do
// not have. Parentheses alone do not count since names contain them.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", ".*", ".+", "{", "}", "|",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Expand replaces every pattern in requested with the names it matches, in
// names order. Plain entries pass through unchanged. Patterns matching
// nothing are returned separately.
func Expand(requested, names []string) (expanded, unmatched []string, err error) {
	seen := make(map[string]bool)
	add := func(n string) {
		if key := strings.ToLower(strings.TrimSpace(n)); !seen[key] {
			seen[key] = true
			expanded = append(expanded, n)
		}
	}

	for _, r := range requested {
		if !IsPattern(r) {
			add(r)
			continue
		}
		m, err := New(Auto, strings.TrimSpace(r))
		if err != nil {
			return nil, nil, err
		}
		matched := m.Filter(names...)
		if len(matched) == 0 {
			unmatched = append(unmatched, r)
		}
		for _, n := range matched {
			add(n)
		}
	}
	return expanded, unmatched, nil
}

// GlobToRegex converts a glob pattern to an anchored regex pattern.
func GlobToRegex(glob string) string {
	var regex strings.Builder
	regex.WriteString("^")

	for i := 0; i < len(glob); i++ {
		switch glob[i] {
		case '*':
			regex.WriteString(".*")
		case '?':
			regex.WriteString(".")
		case '[':
			// Handle character classes
			j := i + 1
			if j < len(glob) && (glob[j] == '!' || glob[j] == '^') {
				regex.WriteString("[^")
				j++
			} else {
				regex.WriteString("[")
			}

			for ; j < len(glob) && glob[j] != ']'; j++ {
				if glob[j] == '\\' {
					regex.WriteByte(glob[j])
					j++
					if j < len(glob) {
						regex.WriteByte(glob[j])
					}
				} else {
					regex.WriteByte(glob[j])
				}
			}

			if j < len(glob) {
				regex.WriteString("]")
				i = j
			}
		case '\\':
			if i+1 < len(glob) {
				i++
				regex.WriteString(regexp.QuoteMeta(string(glob[i])))
			}
		default:
			regex.WriteString(regexp.QuoteMeta(string(glob[i])))
		}
	}

	regex.WriteString("$")
	return regex.String()
}
