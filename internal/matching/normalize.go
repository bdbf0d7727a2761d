package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedKey is the comparison form of a track's title and artist.
type NormalizedKey struct {
	Title  string
	Artist string
}

// String joins the key as "title|artist".
func (k NormalizedKey) String() string {
	return k.Title + "|" + k.Artist
}

var (
	bracketed = regexp.MustCompile(`\([^()]*\)|\[[^\[\]]*\]|\{[^{}]*\}`)

	// " - Remastered 2011", " - Live at Wembley", " – Radio Edit"
	dashQualifier = regexp.MustCompile(`\s+[-–—]\s+.*\b(remaster|remastered|live|edit|version|mix|remix|mono|stereo|demo|acoustic|instrumental|bonus)\b.*$`)

	featureMarkers = map[string]bool{"feat": true, "ft": true, "featuring": true}
)

// Normalize canonicalizes a title and artist for comparison. It never fails and
// applying it to its own output changes nothing.
func Normalize(title, artist string) NormalizedKey {
	return NormalizedKey{
		Title:  normalizeField(title, true),
		Artist: normalizeField(artist, false),
	}
}

// maxPasses bounds normalizeField; compatibility decompositions can expose new
// upper case letters or marks, so one pass is not always a fixed point.
const maxPasses = 4

func normalizeField(s string, isTitle bool) string {
	for range maxPasses {
		next := normalizePass(s, isTitle)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizePass(s string, isTitle bool) string {
	s = foldAndStripMarks(s)

	if stripped := stripBrackets(s); strings.TrimSpace(stripped) != "" {
		s = stripped
	}

	if isTitle {
		if stripped := dashQualifier.ReplaceAllString(s, ""); strings.TrimSpace(stripped) != "" {
			s = stripped
		}
	}

	return strings.Join(dropFeatured(tokenize(s)), " ")
}

// foldAndStripMarks case folds s, then removes combining marks after NFKD decomposition.
//
// Casers and transformers carry state, so both are built per call.
func foldAndStripMarks(s string) string {
	s = cases.Fold().String(s)

	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func stripBrackets(s string) string {
	for {
		next := bracketed.ReplaceAllString(s, " ")
		if next == s {
			return s
		}
		s = next
	}
}

// tokenize keeps letters and digits, turns "&" into "and", drops apostrophes and
// splits on everything else.
func tokenize(s string) []string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’' || r == '`':
		case r == '&':
			b.WriteString(" and ")
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Fields(b.String())
}

// dropFeatured truncates at the first feat/ft/featuring marker that is not the first token.
func dropFeatured(tokens []string) []string {
	for i := 1; i < len(tokens); i++ {
		if featureMarkers[tokens[i]] {
			return tokens[:i]
		}
	}
	return tokens
}
