package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/favsync/internal/models"
	"github.com/desertthunder/favsync/internal/shared"
)

// ErrTrackNotFound is returned when no cached track matches a lookup.
var ErrTrackNotFound = errors.New("track not found")

const trackColumns = `id, run_id, service, service_id, title, artist, album, duration, isrc, created_at, updated_at`

// TrackRepository persists [models.CachedTrack] rows in the tracks table.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Upsert inserts track, or refreshes the existing row with the same service and service id.
//
// On insert the generated id is stored on track; on update track keeps the existing id and creation time.
func (r *TrackRepository) Upsert(track *models.CachedTrack) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if track.ID == "" {
		track.ID = shared.GenerateID()
	}
	now := time.Now().UTC()
	if track.CreatedAt.IsZero() {
		track.CreatedAt = now
	}
	track.UpdatedAt = now

	query := `
		INSERT INTO tracks (` + trackColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (service, service_id) DO UPDATE SET
			run_id = excluded.run_id,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration = excluded.duration,
			isrc = excluded.isrc,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		track.ID,
		track.RunID,
		track.Service,
		track.ServiceID,
		track.Title,
		track.Artist,
		track.Album,
		track.Duration,
		track.ISRC,
		track.CreatedAt,
		track.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}

	stored, err := r.GetByServiceID(track.Service, track.ServiceID)
	if err != nil {
		return err
	}
	track.ID = stored.ID
	track.CreatedAt = stored.CreatedAt

	return nil
}

// GetByServiceID retrieves a track by service and service_id
func (r *TrackRepository) GetByServiceID(service, serviceID string) (*models.CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE service = ? AND service_id = ?`
	return scanTrack(r.db.QueryRow(query, service, serviceID))
}

// TrackFilter narrows [TrackRepository.List]. Zero values match everything.
type TrackFilter struct {
	Service string
	RunID   string
	ISRC    string
	Limit   int
}

func (f TrackFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Service != "" {
		clauses = append(clauses, "service = ?")
		args = append(args, f.Service)
	}
	if f.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.ISRC != "" {
		clauses = append(clauses, "isrc = ?")
		args = append(args, f.ISRC)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// List retrieves cached tracks matching filter, most recently updated first.
func (r *TrackRepository) List(filter TrackFilter) ([]*models.CachedTrack, error) {
	where, args := filter.where()
	query := `SELECT ` + trackColumns + ` FROM tracks` + where + ` ORDER BY updated_at DESC, artist, title`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.CachedTrack
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Count returns the number of cached tracks matching filter. Limit is ignored.
func (r *TrackRepository) Count(filter TrackFilter) (int, error) {
	where, args := filter.where()

	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM tracks`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// DeleteByService removes every cached track for service and returns the number of rows removed.
func (r *TrackRepository) DeleteByService(service string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM tracks WHERE service = ?`, service)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tracks: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(s scanner) (*models.CachedTrack, error) {
	var t models.CachedTrack
	err := s.Scan(&t.ID, &t.RunID, &t.Service, &t.ServiceID, &t.Title, &t.Artist, &t.Album, &t.Duration, &t.ISRC, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return &t, nil
}
