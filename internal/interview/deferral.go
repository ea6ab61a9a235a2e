package interview

import (
	"regexp"
	"strings"
)

// Phrases that mean "I don't have one yet". Matched on lowercased input.
var (
	nameDeferral  = regexp.MustCompile(`(^|\b)(no|not yet|don't|dont|open to suggestions|none|no name|haven't decided|havent decided|undecided|tbd|to be decided|not sure|no brand|brandless)(\b|$)`)
	brandDeferral = regexp.MustCompile(`(no logo|don't have|dont have|none|not yet|no brand|haven't decided|havent decided|undecided|tbd|not sure)`)
)

// IsNameDeferral reports whether an answer to the name question defers it.
func IsNameDeferral(answer string) bool {
	t := strings.ToLower(strings.TrimSpace(answer))
	return t == "" || nameDeferral.MatchString(t)
}

// IsBrandDeferral reports whether an answer to the brand question defers it.
func IsBrandDeferral(answer string) bool {
	t := strings.ToLower(strings.TrimSpace(answer))
	return t == "" || brandDeferral.MatchString(t)
}
