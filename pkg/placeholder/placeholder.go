// Package placeholder substitutes tokens in macro content at copy time.
//
// Two independent grammars are scanned: auto tokens like <date> from a
// fixed set, filled from the clock, and user tokens like {{name}},
// filled by a caller-supplied resolver.
package placeholder

import (
	"regexp"
	"strings"
	"time"
)

// AutoTokens is the closed set of auto-filled token names.
var AutoTokens = []string{
	"datetime", "date", "time", "year", "month", "day", "hour", "minute", "second",
}

var autoFormats = map[string]string{
	"datetime": "2006-01-02 15:04:05",
	"date":     "2006-01-02",
	"time":     "15:04:05",
	"year":     "2006",
	"month":    "01",
	"day":      "02",
	"hour":     "15",
	"minute":   "04",
	"second":   "05",
}

var (
	userTagPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)
	autoPattern    = regexp.MustCompile(`<(` + strings.Join(AutoTokens, "|") + `)>`)
)

// Resolver supplies replacement values for user tags. It is called at
// most once per Substitute with the full set of distinct tags that need
// input, so an interactive caller can prompt a single time. A tag absent
// from the returned map, or mapped to the empty string, is left raw.
type Resolver func(tags []string) (map[string]string, error)

// Tags returns the distinct {{tag}} names in content, case-sensitive,
// in first-appearance order.
func Tags(content string) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, m := range userTagPattern.FindAllStringSubmatch(content, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		tags = append(tags, m[1])
	}
	return tags
}

// Engine performs placeholder substitution. The zero value uses the
// system clock.
type Engine struct {
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Substitute resolves auto tokens, then user tokens, in content.
//
// All occurrences of one auto token share a single value captured once
// for the whole call. User tags flagged in leaveRaw are never sent to
// the resolver. Tags the resolver leaves unanswered stay literal in the
// output; that is not an error.
func (e *Engine) Substitute(content string, leaveRaw map[string]bool, resolve Resolver) (string, error) {
	now := time.Now()
	if e.Now != nil {
		now = e.Now()
	}
	out := expandAuto(content, now)

	tags := Tags(out)
	ask := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !leaveRaw[tag] {
			ask = append(ask, tag)
		}
	}
	if len(ask) == 0 || resolve == nil {
		return out, nil
	}

	values, err := resolve(ask)
	if err != nil {
		return "", err
	}
	for _, tag := range ask {
		if v := values[tag]; v != "" {
			out = replaceTag(out, tag, v)
		}
	}
	return out, nil
}

func expandAuto(content string, now time.Time) string {
	return autoPattern.ReplaceAllStringFunc(content, func(tok string) string {
		name := tok[1 : len(tok)-1]
		return now.Format(autoFormats[name])
	})
}

func replaceTag(content, tag, value string) string {
	return userTagPattern.ReplaceAllStringFunc(content, func(m string) string {
		if m == "{{"+tag+"}}" {
			return value
		}
		return m
	})
}
