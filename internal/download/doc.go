// Package download fetches remote videos with yt-dlp and catalogs them.
package download
