package matching

import (
	"github.com/desertthunder/favsync/internal/models"
)

// AcceptThreshold is the minimum combined score of an accepted match.
const AcceptThreshold = 0.70

// CandidateMatch is the scored best candidate for one source track.
type CandidateMatch struct {
	CandidateID string
	Title       string
	Artist      string
	Score       float64
	TitleScore  float64
	ArtistScore float64
}

// ScoreFunc compares a source key with a candidate key.
type ScoreFunc func(src, candidate NormalizedKey) Scores

// Matcher selects the best destination candidate for a source track.
type Matcher struct {
	Threshold float64
	Score     ScoreFunc
}

// NewMatcher returns a [Matcher] using [Score] and [AcceptThreshold].
func NewMatcher() *Matcher {
	return &Matcher{Threshold: AcceptThreshold, Score: Score}
}

// Accept reports whether score reaches the threshold.
func (m *Matcher) Accept(score float64) bool {
	return score >= m.Threshold
}

// Best returns the highest scoring candidate regardless of the threshold.
//
// Candidates without an id cannot be favorited and are ignored. Ties keep the
// earliest candidate. The boolean is false when nothing could be scored.
func (m *Matcher) Best(src models.Track, candidates []models.Candidate) (CandidateMatch, bool) {
	score := m.Score
	if score == nil {
		score = Score
	}

	srcKey := Normalize(src.Title, src.Artist)

	var best CandidateMatch
	found := false
	for _, c := range candidates {
		if c.ID == "" {
			continue
		}

		s := score(srcKey, Normalize(c.Title, c.Artist))
		if found && s.Combined <= best.Score {
			continue
		}

		best = CandidateMatch{
			CandidateID: c.ID,
			Title:       c.Title,
			Artist:      c.Artist,
			Score:       s.Combined,
			TitleScore:  s.Title,
			ArtistScore: s.Artist,
		}
		found = true
	}

	return best, found
}

// FindBestMatch returns the best candidate when it reaches the threshold, nil otherwise.
func (m *Matcher) FindBestMatch(src models.Track, candidates []models.Candidate) *CandidateMatch {
	best, ok := m.Best(src, candidates)
	if !ok || !m.Accept(best.Score) {
		return nil
	}
	return &best
}
