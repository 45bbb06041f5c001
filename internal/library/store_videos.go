package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const videoColumns = "id, path, title, duration_seconds, size_bytes, source_url, transcript_path, analysis_path, summary, created_at, updated_at"

// ErrVideoExists is returned when adding a video whose path is already cataloged.
var ErrVideoExists = errors.New("video already in library")

// AddVideo catalogs a new video file. The path must be unique.
func (s *Store) AddVideo(ctx context.Context, video *Video) (*Video, error) {
	if video == nil {
		return nil, errors.New("video is nil")
	}
	if existing, err := s.GetVideoByPath(ctx, video.Path); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrVideoExists, video.Path)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO videos (
            path, title, duration_seconds, size_bytes, source_url,
            transcript_path, analysis_path, summary, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.Path,
		video.Title,
		video.DurationSeconds,
		video.SizeBytes,
		nullableString(video.SourceURL),
		nullableString(video.TranscriptPath),
		nullableString(video.AnalysisPath),
		nullableString(video.Summary),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetVideoByID(ctx, id)
}

// GetVideoByID fetches a video by identifier. Missing videos return nil.
func (s *Store) GetVideoByID(ctx context.Context, id int64) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// GetVideoByPath fetches a video by its library path. Missing videos return nil.
func (s *Store) GetVideoByPath(ctx context.Context, path string) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE path = ?`, path)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video by path: %w", err)
	}
	return video, nil
}

// FindVideoBySourceURL returns the first video downloaded from a URL.
func (s *Store) FindVideoBySourceURL(ctx context.Context, url string) (*Video, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+videoColumns+` FROM videos WHERE source_url = ? ORDER BY id LIMIT 1`,
		url,
	)
	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find video by source url: %w", err)
	}
	return video, nil
}

// ListVideos returns every cataloged video in insertion order.
func (s *Store) ListVideos(ctx context.Context) ([]*Video, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+videoColumns+` FROM videos ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// UpdateVideo persists changes to an existing video.
func (s *Store) UpdateVideo(ctx context.Context, video *Video) error {
	if video == nil {
		return errors.New("video is nil")
	}
	video.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET
            path = ?, title = ?, duration_seconds = ?, size_bytes = ?, source_url = ?,
            transcript_path = ?, analysis_path = ?, summary = ?, updated_at = ?
        WHERE id = ?`,
		video.Path,
		video.Title,
		video.DurationSeconds,
		video.SizeBytes,
		nullableString(video.SourceURL),
		nullableString(video.TranscriptPath),
		nullableString(video.AnalysisPath),
		nullableString(video.Summary),
		video.UpdatedAt.Format(time.RFC3339Nano),
		video.ID,
	)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update video rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update video %d: no such row", video.ID)
	}
	return nil
}

// SetTranscript records the transcript location for a video.
func (s *Store) SetTranscript(ctx context.Context, id int64, transcriptPath string) error {
	return s.setVideoField(ctx, id, "transcript_path", transcriptPath)
}

// SetAnalysis records the analysis output location and summary for a video.
func (s *Store) SetAnalysis(ctx context.Context, id int64, analysisPath, summary string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET analysis_path = ?, summary = ?, updated_at = ? WHERE id = ?`,
		nullableString(analysisPath),
		nullableString(summary),
		timestamp,
		id,
	)
	if err != nil {
		return fmt.Errorf("set analysis: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set analysis rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set analysis for video %d: no such row", id)
	}
	return nil
}

// RemoveVideo deletes a video and its clips and tag links.
func (s *Store) RemoveVideo(ctx context.Context, id int64) error {
	_, err := s.execWithRetry(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove video: %w", err)
	}
	return nil
}

func (s *Store) setVideoField(ctx context.Context, id int64, column, value string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE videos SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		nullableString(value),
		timestamp,
		id,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s rows affected: %w", column, err)
	}
	if affected == 0 {
		return fmt.Errorf("set %s for video %d: no such row", column, id)
	}
	return nil
}

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		id              int64
		path            string
		title           string
		durationSeconds sql.NullFloat64
		sizeBytes       sql.NullInt64
		sourceURL       sql.NullString
		transcriptPath  sql.NullString
		analysisPath    sql.NullString
		summary         sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&path,
		&title,
		&durationSeconds,
		&sizeBytes,
		&sourceURL,
		&transcriptPath,
		&analysisPath,
		&summary,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	video := &Video{
		ID:              id,
		Path:            path,
		Title:           title,
		DurationSeconds: durationSeconds.Float64,
		SizeBytes:       sizeBytes.Int64,
		SourceURL:       sourceURL.String,
		TranscriptPath:  transcriptPath.String,
		AnalysisPath:    analysisPath.String,
		Summary:         summary.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		video.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		video.UpdatedAt = updated
	}
	return video, nil
}
