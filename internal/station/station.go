// Package station defines the radio stations the alarm can wake up to.
package station

import "github.com/glebovdev/radioalarm/internal/playlist"

const (
	// FM4URL is the live MP3 stream of FM4 (http://fm4.orf.at).
	FM4URL = "http://mp3stream1.apasf.apa.at:8000"
	// BBC6MusicURL is the live playlist of BBC 6 Music (http://www.bbc.co.uk/6music).
	BBC6MusicURL = "http://www.bbc.co.uk/radio/listen/live/r6_aaclca.pls"
)

// Station is a named stream source.
type Station struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// IsPlaylist reports whether the station URL must be resolved before playback.
func (s Station) IsPlaylist() bool {
	return playlist.IsPlaylist(s.URL)
}

// Defaults returns the built-in stations. The first one is the default choice.
func Defaults() []Station {
	return []Station{
		{Name: "FM4", URL: FM4URL},
		{Name: "BBC 6 Music", URL: BBC6MusicURL},
	}
}

// IndexOf returns the position of the station with the given URL, or -1.
func IndexOf(stations []Station, url string) int {
	for i, s := range stations {
		if s.URL == url {
			return i
		}
	}
	return -1
}

// Merge appends extra stations to base, skipping URLs already present.
func Merge(base, extra []Station) []Station {
	result := make([]Station, 0, len(base)+len(extra))
	result = append(result, base...)
	for _, s := range extra {
		if s.URL == "" || IndexOf(result, s.URL) >= 0 {
			continue
		}
		if s.Name == "" {
			s.Name = s.URL
		}
		result = append(result, s)
	}
	return result
}
