package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/richard-senior/matchodds/internal/logger"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// clubAffixes are dropped when building team keys, "Arsenal FC" and "Arsenal" are the same club
var clubAffixes = map[string]bool{
	"fc":  true,
	"afc": true,
	"cf":  true,
	"sc":  true,
	"ac":  true,
}

// NormalizeTeamName builds the key used to compare team names across sources
// Lowercased, accents removed, punctuation and club affixes dropped
func NormalizeTeamName(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	name, _, _ = transform.String(t, name)

	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, name)

	var words []string
	for _, w := range strings.Fields(name) {
		if !clubAffixes[w] {
			words = append(words, w)
		}
	}
	return strings.Join(words, " ")
}

// ResolveTeamName finds the known team a free-text name refers to
// Exact key matches win. Otherwise every word must agree with the word in the same place of a
// known name (a typo, or an abbreviation such as "Man" for "Manchester") and the closest such name wins.
// "Manchester United" never resolves to "Manchester City".
func ResolveTeamName(name string, known []string) (string, bool) {
	key := NormalizeTeamName(name)
	if key == "" {
		return "", false
	}
	best, bestScore := "", -1.0
	for _, k := range known {
		candidate := NormalizeTeamName(k)
		if candidate == key {
			return k, true
		}
		if !wordsAgree(key, candidate) {
			continue
		}
		if score := nameScore(key, candidate); score > bestScore {
			best, bestScore = k, score
		}
	}
	if best == "" {
		return "", false
	}
	logger.Debug("Resolved team name by fuzzy match", name, best, bestScore)
	return best, true
}

// IsExactTeamName is true when both names share the same key
func IsExactTeamName(a, b string) bool {
	return NormalizeTeamName(a) == NormalizeTeamName(b)
}

// wordsAgree compares two team keys word by word
func wordsAgree(a, b string) bool {
	wa, wb := strings.Fields(a), strings.Fields(b)
	if len(wa) != len(wb) {
		return false
	}
	for i := range wa {
		if !wordAgrees([]rune(wa[i]), []rune(wb[i])) {
			return false
		}
	}
	return true
}

// wordAgrees allows one typo in words of five letters or more, or a prefix of at least three letters
func wordAgrees(a, b []rune) bool {
	if string(a) == string(b) {
		return true
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 3 && string(longer[:len(shorter)]) == string(shorter) {
		return true
	}
	return len(shorter) >= 5 && levenshtein(a, b) <= 1
}

// nameScore is the whole-name Levenshtein similarity, 1.0 for identical keys
func nameScore(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	return 1.0 - float64(levenshtein(ra, rb))/float64(max(len(ra), len(rb)))
}

// LevenshteinDistance calculates the Levenshtein distance between two strings
func LevenshteinDistance(s1, s2 string) int {
	return levenshtein([]rune(s1), []rune(s2))
}

func levenshtein(s1, s2 []rune) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// two rows are enough, the full matrix is never read back
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}

// GetAsString converts various types to string
func GetAsString(s any) (string, error) {
	if s == nil {
		return "", fmt.Errorf("cannot convert nil to string")
	}

	switch v := s.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// GetAsInteger converts various types to integer
// Floats must be whole numbers, strings must parse as integers
func GetAsInteger(s any) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot convert nil to integer")
	}

	switch v := s.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, fmt.Errorf("int64 value %d is out of int range", v)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("float64 value %f is not a whole number", v)
		}
		return int(v), nil
	case string:
		result, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("cannot convert string '%s' to integer: %w", v, err)
		}
		return result, nil
	default:
		return 0, fmt.Errorf("cannot convert type %T to integer", s)
	}
}

// GetAsFloat converts numbers and numeric text to float64
// Stats pages print thousands separators and percent signs, both are accepted ("1,234", "55%")
func GetAsFloat(s any) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("cannot convert nil to float")
	}

	switch v := s.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		text := strings.TrimSpace(v)
		text = strings.ReplaceAll(text, ",", "")
		text = strings.TrimSuffix(text, "%")
		if text == "" {
			return 0, fmt.Errorf("cannot convert empty string to float")
		}
		result, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert string '%s' to float: %w", v, err)
		}
		return result, nil
	default:
		return 0, fmt.Errorf("cannot convert type %T to float", s)
	}
}
