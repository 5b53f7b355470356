package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "JOHN SMITH", Normalize("  john   SMITH "))
	assert.Equal(t, "", Normalize("   "))
	assert.Equal(t, "A B C", Normalize("a\tb\nc"))
}

func TestLevenshtein(t *testing.T) {
	// substitute K->S, substitute E->I, insert G
	assert.Equal(t, 3, Levenshtein("KITTEN", "SITTING"))
	assert.Equal(t, 0, Levenshtein("SAME", "SAME"))
	assert.Equal(t, 5, Levenshtein("", "HELLO"))
	assert.Equal(t, 4, Levenshtein("FOUR", ""))
	assert.Equal(t, 1, Levenshtein("CAT", "CART"))
}

func TestSoundex(t *testing.T) {
	assert.Equal(t, "R163", Soundex("ROBERT"))
	assert.Equal(t, "R163", Soundex("RUPERT"))
	assert.Equal(t, "S530", Soundex("SMITH"))
	assert.Equal(t, "S530", Soundex("SMYTH"))
	assert.Equal(t, "J500", Soundex("JOHN"))
	assert.Equal(t, "", Soundex(""))
	// Single letter pads with zeros
	assert.Equal(t, "A000", Soundex("A"))
}

func TestMatchExact(t *testing.T) {
	result := Match("JOHN SMITH", "JOHN SMITH", nil)

	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, MatchTypeExact, result.MatchType)
	assert.Equal(t, "JOHN SMITH", result.MatchedName)
	assert.True(t, result.IsMatch())
}

func TestMatchExactAfterNormalization(t *testing.T) {
	result := Match("  john   smith ", "JOHN SMITH", nil)

	assert.Equal(t, 100, result.Confidence)
	assert.Equal(t, MatchTypeExact, result.MatchType)
}

func TestMatchExactAlias(t *testing.T) {
	result := Match("JOHNNY SMITH", "JOHN SMITH", []string{"johnny  smith"})

	assert.Equal(t, 98, result.Confidence)
	assert.Equal(t, MatchTypeExactAlias, result.MatchType)
	assert.Equal(t, "JOHNNY SMITH", result.MatchedName)
}

func TestMatchPhonetic(t *testing.T) {
	result := Match("ROBERT", "RUPERT", nil)

	assert.True(t, result.PhoneticMatch)
	assert.Equal(t, MatchTypePhonetic, result.MatchType)
	// 30-point phonetic component applies regardless of edit distance
	assert.GreaterOrEqual(t, result.Confidence, 30)
	assert.LessOrEqual(t, result.Confidence, 99)
}

func TestMatchConfidenceCappedBelowExact(t *testing.T) {
	// Phonetic match plus near-identical spelling must not reach 100
	result := Match("JON SMITH", "JOHN SMITH", nil)

	assert.LessOrEqual(t, result.Confidence, 99)
	assert.True(t, result.IsMatch())
}

func TestMatchBestAliasWins(t *testing.T) {
	// Candidate is far from the primary name but close to an alias
	result := Match("MOHAMED ALI", "CASSIUS CLAY", []string{"MUHAMMAD ALI"})

	assert.Equal(t, "MUHAMMAD ALI", result.MatchedName)
	assert.True(t, result.Confidence > Match("MOHAMED ALI", "CASSIUS CLAY", nil).Confidence)
}

func TestMatchTypeClassification(t *testing.T) {
	cases := []struct {
		name      string
		candidate string
		target    string
		aliases   []string
		wantType  MatchType
	}{
		{"identical names", "JOHN SMITH", "JOHN SMITH", nil, MatchTypeExact},
		{"alias hit", "JOHNNY SMITH", "JOHN SMITH", []string{"Johnny Smith"}, MatchTypeExactAlias},
		{"phonetic equivalents", "ROBERT", "RUPERT", nil, MatchTypePhonetic},
		{"one edit over nine characters", "KATHERINE", "CATHERINE", nil, MatchTypeHighSimilarity},
		{"two edits over six characters", "WILSON", "WATSON", nil, MatchTypeMediumSimilarity},
		{"faint resemblance", "ANNA", "ARLO", nil, MatchTypeLowSimilarity},
		{"nothing in common", "ABC", "XYZ", nil, MatchTypeNoMatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Match(tc.candidate, tc.target, tc.aliases)
			assert.Equal(t, tc.wantType, result.MatchType)
		})
	}
}

func TestMatchHighSimilarityWithoutPhoneticAgreement(t *testing.T) {
	// 89% similar but K365 vs C365 rules out the phonetic path; the
	// similarity bands, not the blended confidence, must classify this pair.
	result := Match("KATHERINE", "CATHERINE", nil)

	assert.Equal(t, MatchTypeHighSimilarity, result.MatchType)
	assert.Equal(t, 62, result.Confidence)
	assert.False(t, result.PhoneticMatch)
	assert.True(t, result.IsMatch())
}

func TestMatchDissimilarNames(t *testing.T) {
	result := Match("JOHN SMITH", "XAVIER QUINTANILLA", nil)

	assert.False(t, result.IsMatch())
	assert.False(t, result.PhoneticMatch)
}

func TestMatchEmptyCandidate(t *testing.T) {
	// Blank inputs normalize to empty; no panic, low confidence against a real name
	result := Match("   ", "JOHN SMITH", nil)

	assert.Equal(t, 10, len("JOHN SMITH"))
	assert.Equal(t, 10, result.EditDistance)
	assert.False(t, result.IsMatch())
}
