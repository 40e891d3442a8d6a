// Package playlist extracts playable stream URLs from playlist documents.
package playlist

import (
	"bufio"
	"io"
	"strings"
)

const (
	// Extension marks a URL that points at a playlist rather than a stream.
	Extension = ".pls"

	urlMarker = "http"
)

// LineSource yields the lines of a playlist document in order.
// *bufio.Scanner satisfies it.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// IsPlaylist reports whether url needs resolving before it can be played.
func IsPlaylist(url string) bool {
	return strings.HasSuffix(url, Extension)
}

// ExtractFirstURL returns the first line containing "http", trimmed and cut
// at the start of the marker. Anything after the URL on that line is kept.
// Lines after the first match are never read. A read error ends the scan and
// is not reported: whatever was found before it is the result.
func ExtractFirstURL(src LineSource) (string, bool) {
	for src.Scan() {
		if url := parseLine(src.Text()); url != "" {
			return url, true
		}
	}
	return "", false
}

// ExtractFirstURLFromReader runs ExtractFirstURL over the lines of r.
func ExtractFirstURLFromReader(r io.Reader) (string, bool) {
	return ExtractFirstURL(bufio.NewScanner(r))
}

func parseLine(line string) string {
	trimmed := strings.TrimSpace(line)
	idx := strings.Index(trimmed, urlMarker)
	if idx < 0 {
		return ""
	}
	return trimmed[idx:]
}
