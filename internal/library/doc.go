// Package library persists the video catalog: imported and downloaded
// videos, their exported clips, and extracted person/topic tags. Backed by
// SQLite with an embedded versioned schema.
package library
