package formatter

import (
	"github.com/desertthunder/favsync/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

var cachedTrackHeaders = []string{"Service", "ID", "Title", "Artist", "Run", "Updated"}

// RenderTable draws rows under headers with rounded borders. Short rows are padded with empty cells.
func RenderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

// CachedTracksTable renders the listing printed by `cache tracks`.
func CachedTracksTable(tracks []*models.CachedTrack) string {
	rows := make([][]string, 0, len(tracks))
	for _, t := range tracks {
		rows = append(rows, []string{
			t.Service,
			t.ServiceID,
			t.Title,
			t.Artist,
			shortID(t.RunID),
			t.UpdatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return RenderTable(cachedTrackHeaders, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
