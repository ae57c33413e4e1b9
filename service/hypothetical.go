package service

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hypotheticalIntent = regexp.MustCompile(`\b(if|went up|goes up|go up|raise|raised|bump|bumped|increase|increased|improve|improved|up to)\b|\bto\s+\d{3}\b`)

	// Candidate patterns, most specific first.
	scoreAfterTo       = regexp.MustCompile(`\bto\s+(\d{3})\b`)
	scoreAfterKeyword  = regexp.MustCompile(`(?:credit\s*score|fico)\D{0,24}?\b(\d{3})\b`)
	scoreBeforeKeyword = regexp.MustCompile(`\b(\d{3})\s*(?:credit\s*score|fico)`)
)

// ParseHypotheticalCreditScore reads a "what if" credit score out of free
// text, e.g. "what if my score went up to 740". It needs hypothetical
// phrasing plus a three digit number in [minScore, maxScore] that follows
// "to" or sits next to "credit score"/"fico". This is a heuristic: phrasing
// such as "if I pay to 740 square feet" is also accepted.
func ParseHypotheticalCreditScore(question string, minScore, maxScore int) (int, bool) {
	q := strings.ToLower(question)
	if q == "" || !hypotheticalIntent.MatchString(q) {
		return 0, false
	}

	for _, re := range []*regexp.Regexp{scoreAfterTo, scoreAfterKeyword, scoreBeforeKeyword} {
		for _, m := range re.FindAllStringSubmatch(q, -1) {
			score, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if score >= minScore && score <= maxScore {
				return score, true
			}
		}
	}
	return 0, false
}
