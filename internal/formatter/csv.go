package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/desertthunder/favsync/internal/shared"
	"github.com/desertthunder/favsync/internal/tasks"
)

var outcomeHeaders = []string{
	"Outcome", "Source ID", "Title", "Artist", "Album",
	"Candidate ID", "Candidate Title", "Candidate Artist", "Score", "Dry Run", "Error",
}

// OutcomesToCSV converts outcomes to CSV with one row per source track.
func OutcomesToCSV(outcomes []tasks.SyncOutcome) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(outcomeHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range outcomes {
		score := ""
		if o.CandidateID != "" && o.Kind != tasks.NotFound {
			score = strconv.FormatFloat(o.Score, 'f', 3, 64)
		}
		errDetail := ""
		if o.Err != nil {
			errDetail = o.Err.Error()
		}

		record := []string{
			o.Kind.String(),
			o.Track.ID,
			o.Track.Title,
			o.Track.Artist,
			o.Track.Album,
			o.CandidateID,
			o.CandidateTitle,
			o.CandidateArtist,
			score,
			strconv.FormatBool(o.DryRun),
			errDetail,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteOutcomesCSV writes the outcome report to path.
func WriteOutcomesCSV(outcomes []tasks.SyncOutcome, path string) error {
	if path == "" {
		return fmt.Errorf("empty report path")
	}

	data, err := OutcomesToCSV(outcomes)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// FailedSourceIDs reads a report written by [WriteOutcomesCSV] and returns the source ids of
// its failed_to_add rows, in report order and without repeats.
func FailedSourceIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: report %s: %v", shared.ErrInvalidInput, path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: report %s is empty", shared.ErrInvalidInput, path)
	}

	kindCol, idCol := slices.Index(records[0], outcomeHeaders[0]), slices.Index(records[0], outcomeHeaders[1])
	if kindCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("%w: report %s has no %q or %q column", shared.ErrInvalidInput, path, outcomeHeaders[0], outcomeHeaders[1])
	}

	var ids []string
	seen := make(map[string]struct{})
	for _, record := range records[1:] {
		if record[kindCol] != tasks.FailedToAdd.String() || record[idCol] == "" {
			continue
		}
		if _, ok := seen[record[idCol]]; ok {
			continue
		}
		seen[record[idCol]] = struct{}{}
		ids = append(ids, record[idCol])
	}
	return ids, nil
}
