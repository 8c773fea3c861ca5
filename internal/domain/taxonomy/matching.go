package taxonomy

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/dms/backend/internal/domain/shared"
)

// MatchingAlgorithm selects how a taxonomy object's match pattern is applied
// to document text when computing suggestions or auto-assignment.
type MatchingAlgorithm string

const (
	MatchNone    MatchingAlgorithm = "none"
	MatchAny     MatchingAlgorithm = "any"
	MatchAll     MatchingAlgorithm = "all"
	MatchLiteral MatchingAlgorithm = "literal"
	MatchRegex   MatchingAlgorithm = "regex"
	MatchFuzzy   MatchingAlgorithm = "fuzzy"
	// MatchAuto exists for API compatibility; without a trained classifier
	// it behaves like MatchAny.
	MatchAuto MatchingAlgorithm = "auto"
)

// fuzzyThreshold is the minimum similarity for a fuzzy match
const fuzzyThreshold = 0.9

// ValidMatchingAlgorithm reports whether the given algorithm is known
func ValidMatchingAlgorithm(a MatchingAlgorithm) bool {
	switch a {
	case MatchNone, MatchAny, MatchAll, MatchLiteral, MatchRegex, MatchFuzzy, MatchAuto:
		return true
	}
	return false
}

// MatchingRule holds the matching configuration shared by all taxonomy objects
type MatchingRule struct {
	Match             string            `gorm:"type:varchar(256);not null;default:''"`
	MatchingAlgorithm MatchingAlgorithm `gorm:"type:varchar(20);not null;default:'any'"`
	IsInsensitive     bool              `gorm:"not null;default:true"`
}

// SetRule validates and applies a matching configuration
func (r *MatchingRule) SetRule(match string, algorithm MatchingAlgorithm, insensitive bool) error {
	if !ValidMatchingAlgorithm(algorithm) {
		return shared.NewDomainError("INVALID_INPUT", "Unknown matching algorithm")
	}
	if algorithm == MatchRegex {
		pattern := match
		if insensitive {
			pattern = "(?i)" + pattern
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return shared.NewDomainError("INVALID_INPUT", "Invalid regular expression: "+err.Error())
		}
	}
	r.Match = match
	r.MatchingAlgorithm = algorithm
	r.IsInsensitive = insensitive
	return nil
}

// Matches evaluates the rule against document text
func (r *MatchingRule) Matches(text string) bool {
	if r.Match == "" {
		return false
	}

	match := r.Match
	if r.IsInsensitive {
		match = strings.ToLower(match)
		text = strings.ToLower(text)
	}

	switch r.MatchingAlgorithm {
	case MatchNone:
		return false
	case MatchAny, MatchAuto:
		for _, word := range strings.Fields(match) {
			if containsWord(text, word) {
				return true
			}
		}
		return false
	case MatchAll:
		for _, word := range strings.Fields(match) {
			if !containsWord(text, word) {
				return false
			}
		}
		return true
	case MatchLiteral:
		return containsWord(text, match)
	case MatchRegex:
		pattern := r.Match
		if r.IsInsensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	case MatchFuzzy:
		return fuzzyMatches(text, match)
	}
	return false
}

// containsWord checks for the pattern bounded by word breaks, so matching
// "bank" does not hit "embankment".
func containsWord(text, word string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// fuzzyMatches slides a window of the pattern's word length over the text and
// keeps the best levenshtein similarity, approximating a partial ratio.
func fuzzyMatches(text, match string) bool {
	match = normalizeSpace(match)
	text = normalizeSpace(text)
	if match == "" || text == "" {
		return false
	}

	words := strings.Fields(text)
	window := len(strings.Fields(match))
	if window == 0 {
		return false
	}
	if len(words) <= window {
		return levenshtein.Similarity(text, match, nil) >= fuzzyThreshold
	}

	for i := 0; i+window <= len(words); i++ {
		candidate := strings.Join(words[i:i+window], " ")
		if levenshtein.Similarity(candidate, match, nil) >= fuzzyThreshold {
			return true
		}
	}
	return false
}

var spaceRe = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
