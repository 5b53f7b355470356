// ==============================================================================
// NAME MATCHER - internal/matching/matcher.go
// ==============================================================================
// Fuzzy name matching for sanction/PEP screening: Levenshtein similarity
// blended with Soundex phonetic comparison. Pure functions, no I/O.
// ==============================================================================

package matching

import (
	"math"
	"strings"
)

// MatchType classifies how a candidate matched the target.
type MatchType string

const (
	MatchTypeExact            MatchType = "Exact"
	MatchTypeExactAlias       MatchType = "ExactAlias"
	MatchTypePhonetic         MatchType = "Phonetic"
	MatchTypeHighSimilarity   MatchType = "HighSimilarity"
	MatchTypeMediumSimilarity MatchType = "MediumSimilarity"
	MatchTypeLowSimilarity    MatchType = "LowSimilarity"
	MatchTypeNoMatch          MatchType = "NoMatch"
)

// MatchThreshold is the confidence at or above which a result counts as a
// match for screening purposes.
const MatchThreshold = 60

// MatchResult is the outcome of comparing a candidate name against a target
// and its aliases. Ephemeral: the matcher persists nothing.
type MatchResult struct {
	Confidence    int       `json:"confidence"` // 0-100
	MatchType     MatchType `json:"match_type"`
	MatchedName   string    `json:"matched_name"`
	EditDistance  int       `json:"edit_distance"`
	PhoneticMatch bool      `json:"phonetic_match"`
}

// IsMatch reports whether the confidence clears the screening threshold.
func (r MatchResult) IsMatch() bool {
	return r.Confidence >= MatchThreshold
}

// Match compares candidate against target and any aliases and returns the
// strongest result. Deterministic and side-effect free; absence of a match is
// a valid outcome, never an error.
func Match(candidate, target string, aliases []string) MatchResult {
	cand := Normalize(candidate)
	tgt := Normalize(target)

	if cand == tgt {
		return MatchResult{
			Confidence:    100,
			MatchType:     MatchTypeExact,
			MatchedName:   tgt,
			PhoneticMatch: true,
		}
	}

	for _, alias := range aliases {
		if a := Normalize(alias); a != "" && cand == a {
			return MatchResult{
				Confidence:    98,
				MatchType:     MatchTypeExactAlias,
				MatchedName:   a,
				PhoneticMatch: true,
			}
		}
	}

	best := score(cand, tgt)
	for _, alias := range aliases {
		if a := Normalize(alias); a != "" {
			if r := score(cand, a); r.Confidence > best.Confidence {
				best = r
			}
		}
	}
	return best
}

// score computes the similarity result for one normalized pair.
func score(cand, name string) MatchResult {
	distance := Levenshtein(cand, name)
	longest := len(cand)
	if len(name) > longest {
		longest = len(name)
	}

	similarity := 0.0
	if longest > 0 {
		similarity = 1.0 - float64(distance)/float64(longest)
	}

	phonetic := cand != "" && name != "" && Soundex(cand) == Soundex(name)

	confidence := int(math.Round(70 * similarity))
	if phonetic {
		confidence += 30
	}
	// 100 is reserved for exact matches
	if confidence > 99 {
		confidence = 99
	}

	// Classification thresholds apply to the raw similarity percentage, not
	// the blended confidence: a non-phonetic pair tops out at confidence 70,
	// which would make the high band unreachable.
	similarityPct := int(math.Round(100 * similarity))

	matchType := MatchTypeLowSimilarity
	switch {
	case phonetic:
		matchType = MatchTypePhonetic
	case similarityPct >= 80:
		matchType = MatchTypeHighSimilarity
	case similarityPct >= 60:
		matchType = MatchTypeMediumSimilarity
	}
	if confidence == 0 {
		matchType = MatchTypeNoMatch
	}

	return MatchResult{
		Confidence:    confidence,
		MatchType:     matchType,
		MatchedName:   name,
		EditDistance:  distance,
		PhoneticMatch: phonetic,
	}
}

// Normalize uppercases, trims, and collapses internal whitespace runs so that
// "  john   SMITH " and "JOHN SMITH" compare equal.
func Normalize(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), " ")
}

// Levenshtein computes the classic dynamic-programming edit distance with
// unit costs for insertion, deletion and substitution.
func Levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Soundex produces the four-character American Soundex code for a name.
// Vowels and H/W/Y carry no code; consecutive duplicate codes collapse; the
// result is zero-padded to four characters.
func Soundex(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return ""
	}

	var first byte
	for i := 0; i < len(name); i++ {
		if name[i] >= 'A' && name[i] <= 'Z' {
			first = name[i]
			name = name[i:]
			break
		}
	}
	if first == 0 {
		return ""
	}

	code := []byte{first}
	lastDigit := soundexDigit(first)
	for i := 1; i < len(name) && len(code) < 4; i++ {
		ch := name[i]
		if ch < 'A' || ch > 'Z' {
			lastDigit = 0
			continue
		}
		d := soundexDigit(ch)
		if d == 0 {
			// H, W and Y do not break a duplicate run; vowels do.
			if ch != 'H' && ch != 'W' {
				lastDigit = 0
			}
			continue
		}
		if d != lastDigit {
			code = append(code, '0'+d)
		}
		lastDigit = d
	}

	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

func soundexDigit(ch byte) byte {
	switch ch {
	case 'B', 'F', 'P', 'V':
		return 1
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return 2
	case 'D', 'T':
		return 3
	case 'L':
		return 4
	case 'M', 'N':
		return 5
	case 'R':
		return 6
	}
	return 0
}
