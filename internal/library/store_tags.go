package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EnsureTag returns the tag with the given kind and name, creating it if needed.
func (s *Store) EnsureTag(ctx context.Context, kind TagKind, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("tag name is empty")
	}

	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO tags (kind, name) VALUES (?, ?) ON CONFLICT(kind, name) DO NOTHING`,
		string(kind),
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure tag: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, kind, name FROM tags WHERE kind = ? AND name = ?`, string(kind), name)
	tag, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("fetch tag: %w", err)
	}
	return tag, nil
}

// TagVideo links a tag to a video. Linking twice is a no-op.
func (s *Store) TagVideo(ctx context.Context, videoID, tagID int64) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT INTO video_tags (video_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		videoID,
		tagID,
	)
	if err != nil {
		return fmt.Errorf("tag video: %w", err)
	}
	return nil
}

// TagsForVideo returns a video's tags ordered by kind then name.
func (s *Store) TagsForVideo(ctx context.Context, videoID int64) ([]*Tag, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT t.id, t.kind, t.name FROM tags t
         JOIN video_tags vt ON vt.tag_id = t.id
         WHERE vt.video_id = ?
         ORDER BY t.kind, t.name`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("tags for video: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

// ListTags returns every tag, optionally restricted to one kind.
func (s *Store) ListTags(ctx context.Context, kind TagKind) ([]*Tag, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if kind == "" {
		rows, err = s.db.QueryContext(ctx, `SELECT id, kind, name FROM tags ORDER BY kind, name`)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT id, kind, name FROM tags WHERE kind = ? ORDER BY name`, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	return collectTags(rows)
}

func collectTags(rows *sql.Rows) ([]*Tag, error) {
	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

func scanTag(scanner interface{ Scan(dest ...any) error }) (*Tag, error) {
	var (
		id   int64
		kind string
		name string
	)
	if err := scanner.Scan(&id, &kind, &name); err != nil {
		return nil, err
	}
	return &Tag{ID: id, Kind: TagKind(kind), Name: name}, nil
}
