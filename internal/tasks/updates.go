package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, e.g. the [SyncOutcome] of a reconciled track
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	FetchFavorites
	Reconcile
	Report
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case FetchFavorites:
		return "fetch_favorites"
	case Reconcile:
		return "reconcile"
	case Report:
		return "report"
	default:
		return ""
	}
}

func fetchSourceUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching saved tracks from %s...", name),
	}
}

func fetchFavoritesUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching favorites from %s...", name),
	}
}

func skipFavoritesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchFavorites,
		Step:    1,
		Total:   1,
		Message: "Skipping favorites fetch (skip-existing disabled)",
	}
}

func reconcileUpdate(step, total int, o SyncOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, o.Kind, o.Track),
		Data:    o,
	}
}

func interruptedUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Interrupted after %d of %d tracks", step, total),
	}
}

func summaryUpdate(s SyncSummary) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Report,
		Step:    s.Total,
		Total:   s.Total,
		Message: fmt.Sprintf("Success rate %.1f%% (%d tracks)", s.SuccessRate()*100, s.Total),
		Data:    s,
	}
}
