// Package suggest ranks formula names against a mistyped query for
// "did you mean" hints.
package suggest

import (
	"sort"
	"strings"
	"unicode"
)

// Scoring weights. Higher totals mean a closer match.
const (
	// ScoreExactMatch is awarded when query and candidate are identical.
	ScoreExactMatch = 1000

	// ScorePrefixWeight is the per-character bonus for a shared prefix.
	ScorePrefixWeight = 20

	// ScoreWordWeight is the per-character bonus for every query word that
	// is a prefix of some candidate word ("cap reac" → "Capacitive
	// Reactance").
	ScoreWordWeight = 15

	// ScoreDistanceWeight is the per-character bonus when the best word
	// level edit distance is small.
	ScoreDistanceWeight = 5

	// ScoreCommonCharsWeight is the per-character bonus for shared letters.
	ScoreCommonCharsWeight = 2

	// MinScore is the score a candidate needs before it is suggested at all.
	MinScore = 30
)

// Match is a scored candidate.
type Match struct {
	Value string
	Score int
}

// Rank scores every candidate against query and returns those above
// MinScore, best first. Ties keep candidate order.
func Rank(query string, candidates []string) []Match {
	q := fold(query)
	if q == "" {
		return nil
	}
	var matches []Match
	for _, c := range candidates {
		if score := similarity(q, fold(c)); score >= MinScore {
			matches = append(matches, Match{Value: c, Score: score})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// FindSimilar returns up to maxResults candidates close to query.
func FindSimilar(query string, candidates []string, maxResults int) []string {
	if len(candidates) == 0 || maxResults <= 0 {
		return nil
	}
	matches := Rank(query, candidates)
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Value
	}
	return out
}

// fold lower-cases s and keeps only letters, digits and single spaces.
func fold(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}

func similarity(a, b string) int {
	if a == b {
		return ScoreExactMatch
	}
	score := commonPrefixLength(a, b) * ScorePrefixWeight

	bWords := strings.Fields(b)
	for _, qw := range strings.Fields(a) {
		best := -1
		for _, cw := range bWords {
			if strings.HasPrefix(cw, qw) {
				score += len([]rune(qw)) * ScoreWordWeight
				best = -1
				break
			}
			d := levenshteinDistance(qw, cw)
			if best < 0 || d < best {
				best = d
			}
		}
		if n := len([]rune(qw)); best >= 0 && best <= n/3+1 && n > 2 {
			score += (n - best) * ScoreDistanceWeight
		}
	}

	score += commonChars(a, b) * ScoreCommonCharsWeight
	return score
}

func commonPrefixLength(a, b string) int {
	ar, br := []rune(a), []rune(b)
	n := min(len(ar), len(br))
	for i := 0; i < n; i++ {
		if ar[i] != br[i] {
			return i
		}
	}
	return n
}

// commonChars counts letters and digits shared by a and b, with
// multiplicity.
func commonChars(a, b string) int {
	counts := make(map[rune]int)
	for _, r := range a {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			counts[r]++
		}
	}
	common := 0
	for _, r := range b {
		if counts[r] > 0 {
			common++
			counts[r]--
		}
	}
	return common
}

func levenshteinDistance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 {
		return len(br)
	}
	if len(br) == 0 {
		return len(ar)
	}
	prev := make([]int, len(br)+1)
	cur := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		cur[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			cur[j] = min(
				prev[j]+1,      // deletion
				cur[j-1]+1,     // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, cur = cur, prev
	}
	return prev[len(br)]
}

// FormatSuggestion renders a not-found message followed by the candidates.
func FormatSuggestion(entity, name string, suggestions []string) string {
	var sb strings.Builder
	sb.WriteString(entity)
	sb.WriteString(" '")
	sb.WriteString(name)
	sb.WriteString("' not found")
	if len(suggestions) > 0 {
		sb.WriteString("\n\n  Did you mean?\n")
		for _, s := range suggestions {
			sb.WriteString("    • ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
