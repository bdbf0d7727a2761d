package tasks

import (
	"fmt"

	"github.com/desertthunder/favsync/internal/models"
)

// OutcomeKind classifies how a single source track was reconciled.
type OutcomeKind int

const (
	AlreadyFavorited OutcomeKind = iota // Matched track was a favorite before the run, or claimed earlier in it
	Favorited                           // Matched track was favorited (or would be, in a dry run)
	NotFound                            // Destination search returned nothing usable
	NoGoodMatch                         // Best candidate scored below the acceptance threshold
	FailedToAdd                         // Search or favorite mutation failed
)

func (k OutcomeKind) String() string {
	switch k {
	case AlreadyFavorited:
		return "already_favorited"
	case Favorited:
		return "favorited"
	case NotFound:
		return "not_found"
	case NoGoodMatch:
		return "no_good_match"
	case FailedToAdd:
		return "failed_to_add"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// SyncOutcome is the result of reconciling one source track. Outcomes are values and never mutated.
type SyncOutcome struct {
	Track           models.Track // Source track
	Kind            OutcomeKind  // Classification
	CandidateID     string       // Chosen (or best rejected) destination id, if any
	CandidateTitle  string       // Title of that candidate
	CandidateArtist string       // Primary artist of that candidate
	Score           float64      // Combined score of the chosen or best candidate
	DryRun          bool         // Favorited without mutating the destination
	Err             error        // Detail for FailedToAdd and NoGoodMatch
}

// BestScore returns the score of the best rejected candidate for [NoGoodMatch] outcomes.
func (o SyncOutcome) BestScore() float64 {
	if o.Kind != NoGoodMatch {
		return 0
	}
	return o.Score
}

// Succeeded reports whether the track ends the run favorited on the destination.
func (o SyncOutcome) Succeeded() bool {
	return o.Kind == AlreadyFavorited || o.Kind == Favorited
}

// SyncSummary aggregates outcome counts for a run.
//
// DryRunFavorited is the subset of Favorited that was not actually mutated.
type SyncSummary struct {
	Total            int
	AlreadyFavorited int
	Favorited        int
	DryRunFavorited  int
	NotFound         int
	NoGoodMatch      int
	FailedToAdd      int
	Interrupted      bool
}

// Add folds o into the summary.
func (s *SyncSummary) Add(o SyncOutcome) {
	s.Total++
	switch o.Kind {
	case AlreadyFavorited:
		s.AlreadyFavorited++
	case Favorited:
		s.Favorited++
		if o.DryRun {
			s.DryRunFavorited++
		}
	case NotFound:
		s.NotFound++
	case NoGoodMatch:
		s.NoGoodMatch++
	case FailedToAdd:
		s.FailedToAdd++
	}
}

// Summarize folds outcomes into a [SyncSummary].
func Summarize(outcomes []SyncOutcome) SyncSummary {
	var s SyncSummary
	for _, o := range outcomes {
		s.Add(o)
	}
	return s
}

// SuccessRate is (AlreadyFavorited + Favorited) / Total, or 0 for an empty run.
func (s SyncSummary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.AlreadyFavorited+s.Favorited) / float64(s.Total)
}

// Unmatched is the number of tracks with no acceptable destination match.
func (s SyncSummary) Unmatched() int {
	return s.NotFound + s.NoGoodMatch
}
