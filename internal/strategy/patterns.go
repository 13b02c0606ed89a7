package strategy

import (
	"regexp"
	"strings"
)

// Non-claim detection. A claim takes the fast path when it matches one of
// the non-claim shapes AND carries no factual indicator.

var (
	urlOnlyPattern    = regexp.MustCompile(`^\s*https?://\S+\s*$`)
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	percentPattern    = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)`)
	yearPattern       = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	largeNumPattern   = regexp.MustCompile(`(?i)\d[\d,]*(\.\d+)?\s*(thousand|million|billion|trillion)`)
	studyShowsPattern = regexp.MustCompile(`(?i)\b(study|survey|research|report|analysis)\s+(shows|showed|finds|found|suggests|indicates)\b`)
)

var interrogatives = []string{"who", "what", "when", "where", "why", "how", "is", "are", "do", "does", "did", "can", "could", "should", "will"}

var imperativeVerbs = []string{"click", "buy", "subscribe", "read", "watch", "check", "visit", "sign", "join", "download", "share", "follow"}

var stanceVerbs = []string{"claims", "claimed", "announced", "announces", "said", "says", "reported", "reports", "confirmed", "denied", "alleges", "alleged"}

// NonClaimReason names which non-claim shape matched, for the audit trail.
func NonClaimReason(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= 7 {
		return "too short (<=7 chars)", true
	}
	if urlOnlyPattern.MatchString(trimmed) {
		return "url-only input", true
	}
	if strings.HasSuffix(trimmed, "?") {
		return "question", true
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) > 0 {
		first := strings.Trim(words[0], ".,!")
		if strings.HasSuffix(trimmed, "?") || containsWord(interrogatives, first) && strings.Contains(trimmed, "?") {
			return "question", true
		}
		if containsWord(imperativeVerbs, first) {
			return "imperative", true
		}
	}
	if len(words) < 4 {
		return "topic-only phrase (<4 words)", true
	}
	return "", false
}

// HasFactualIndicator reports whether the text carries a checkable signal
// (numbers, years, attribution, stance verbs) that overrides non-claim shapes.
func HasFactualIndicator(text string) bool {
	if percentPattern.MatchString(text) {
		return true
	}
	if yearPattern.MatchString(text) {
		return true
	}
	if largeNumPattern.MatchString(text) {
		return true
	}
	if studyShowsPattern.MatchString(text) {
		return true
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "according to") {
		return true
	}
	for _, v := range stanceVerbs {
		if containsWord(strings.Fields(lower), v) {
			return true
		}
	}
	return false
}

// IsNonClaim combines shape detection with the factual-indicator override.
func IsNonClaim(text string) (string, bool) {
	reason, matched := NonClaimReason(text)
	if !matched {
		return "", false
	}
	if HasFactualIndicator(text) {
		return "", false
	}
	return reason, true
}

// StripURLs replaces URLs in text with their path words so queries never
// carry a host token. "https://example.com/city-budget-2024" contributes
// "city budget 2024".
func StripURLs(text string) string {
	return strings.TrimSpace(urlPattern.ReplaceAllStringFunc(text, func(raw string) string {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
		slash := strings.Index(trimmed, "/")
		if slash < 0 {
			return ""
		}
		path := trimmed[slash+1:]
		path = strings.NewReplacer("/", " ", "-", " ", "_", " ", ".", " ").Replace(path)
		return strings.Join(strings.Fields(path), " ")
	}))
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
