package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const clipColumns = "id, video_id, output_path, start_seconds, end_seconds, size_bytes, created_at"

// SaveClip registers an exported clip, replacing any previous clip at the
// same output path. Overwrite exports reuse the row.
func (s *Store) SaveClip(ctx context.Context, clip *Clip) (*Clip, error) {
	if clip == nil {
		return nil, errors.New("clip is nil")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO clips (video_id, output_path, start_seconds, end_seconds, size_bytes, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(output_path) DO UPDATE SET
            video_id = excluded.video_id,
            start_seconds = excluded.start_seconds,
            end_seconds = excluded.end_seconds,
            size_bytes = excluded.size_bytes,
            created_at = excluded.created_at`,
		clip.VideoID,
		clip.OutputPath,
		clip.StartSeconds,
		clip.EndSeconds,
		clip.SizeBytes,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("save clip: %w", err)
	}
	return s.GetClipByOutputPath(ctx, clip.OutputPath)
}

// GetClipByOutputPath fetches a clip by its exported file location.
func (s *Store) GetClipByOutputPath(ctx context.Context, outputPath string) (*Clip, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+clipColumns+` FROM clips WHERE output_path = ?`, outputPath)
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clip: %w", err)
	}
	return clip, nil
}

// ListClips returns a video's clips in export order.
func (s *Store) ListClips(ctx context.Context, videoID int64) ([]*Clip, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+clipColumns+` FROM clips WHERE video_id = ? ORDER BY created_at, id`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clips = append(clips, clip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clips: %w", err)
	}
	return clips, nil
}

func scanClip(scanner interface{ Scan(dest ...any) error }) (*Clip, error) {
	var (
		id           int64
		videoID      int64
		outputPath   string
		startSeconds float64
		endSeconds   float64
		sizeBytes    sql.NullInt64
		createdRaw   sql.NullString
	)

	if err := scanner.Scan(&id, &videoID, &outputPath, &startSeconds, &endSeconds, &sizeBytes, &createdRaw); err != nil {
		return nil, err
	}

	clip := &Clip{
		ID:           id,
		VideoID:      videoID,
		OutputPath:   outputPath,
		StartSeconds: startSeconds,
		EndSeconds:   endSeconds,
		SizeBytes:    sizeBytes.Int64,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		clip.CreatedAt = created
	}
	return clip, nil
}
