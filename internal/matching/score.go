package matching

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Fixed weights of the combined score.
const (
	TitleWeight  = 0.6
	ArtistWeight = 0.4
)

// Scores holds the per-field and combined similarity of two keys, each in [0,1].
type Scores struct {
	Title    float64
	Artist   float64
	Combined float64
}

// Score compares two normalized keys. It is symmetric and Score(k, k).Combined is 1.
func Score(a, b NormalizedKey) Scores {
	title := Ratio(a.Title, b.Title)
	artist := Ratio(a.Artist, b.Artist)
	return Scores{
		Title:    title,
		Artist:   artist,
		Combined: round(TitleWeight*title + ArtistWeight*artist),
	}
}

// Ratio is the Levenshtein similarity of a and b: 1 - distance/longest, measured in runes.
//
// Word order is forgiven by also comparing the sorted tokens and keeping the better ratio.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	return math.Max(editRatio(a, b), editRatio(sortTokens(a), sortTokens(b)))
}

func editRatio(a, b string) float64 {
	if a == b {
		return 1
	}

	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}

	distance := levenshtein.ComputeDistance(a, b)
	return clamp(1 - float64(distance)/float64(longest))
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// round drops floating point noise below 1e-9 so threshold comparisons are exact.
func round(v float64) float64 {
	return clamp(math.Round(v*1e9) / 1e9)
}
