package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// quantityRule is one entry in the normalization rule table. The pattern is
// matched against the lowercased quantity text; a non-match skips the rule
// and passes the pair through unchanged. Rules run in order and each sees
// the previous rule's output.
type quantityRule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(name, lqty string) (string, string)
}

var (
	articleRe      = regexp.MustCompile(`^(?:a|an)(?:\s+(.*))?$`)
	fractionWordRe = regexp.MustCompile(`half|quarter`)
	// the noun phrase referred to by a fraction word, optionally behind an
	// article: "half an avocado" -> "avocado"
	fractionNounRe = regexp.MustCompile(`(?:half|quarter)\s+(?:(?:an|a|the)\s+)?([a-zA-Z-]+)`)
)

var quantityRules = []quantityRule{
	{
		// "a slice" -> "1 slice", bare "a"/"an" -> "1"
		name:    "article to numeral",
		pattern: articleRe,
		apply: func(name, lqty string) (string, string) {
			m := articleRe.FindStringSubmatch(lqty)
			if m[1] == "" {
				return name, "1"
			}
			return name, "1 " + m[1]
		},
	},
	{
		// "half"/"quarter" -> "1/2"/"1/4". When the fraction refers to a
		// noun that is a substring of the ingredient name, the noun becomes
		// the name and the quantity is exactly the fraction; otherwise the
		// noun stays in the quantity ("1/2 slice").
		name:    "fraction word",
		pattern: fractionWordRe,
		apply: func(name, lqty string) (string, string) {
			frac := "1/4"
			if strings.Contains(lqty, "half") {
				frac = "1/2"
			}
			m := fractionNounRe.FindStringSubmatch(lqty)
			if m == nil {
				return name, frac
			}
			referred := m[1]
			if strings.Contains(strings.ToLower(name), referred) {
				return referred, frac
			}
			return name, frac + " " + referred
		},
	},
}

// NormalizePair applies the quantity rule table to one extracted pair.
// Rewritten quantities come out lowercased (rules operate on the lowercased
// text); untouched quantities keep their original case. Both fields are
// trimmed.
func NormalizePair(name, qty string) (string, string) {
	name = strings.TrimSpace(name)
	qty = strings.TrimSpace(qty)

	for _, rule := range quantityRules {
		lqty := strings.ToLower(qty)
		if !rule.pattern.MatchString(lqty) {
			continue
		}
		name, qty = rule.apply(name, lqty)
	}
	return strings.TrimSpace(name), strings.TrimSpace(qty)
}

// normalizeText NFKC-normalizes and collapses whitespace before the text is
// handed to the extraction backend.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
