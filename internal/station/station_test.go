package station

import (
	"testing"
)

func TestIsPlaylist(t *testing.T) {
	tests := []struct {
		name     string
		station  Station
		expected bool
	}{
		{"FM4 direct stream", Station{URL: FM4URL}, false},
		{"BBC playlist", Station{URL: BBC6MusicURL}, true},
		{"empty URL", Station{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.station.IsPlaylist(); got != tt.expected {
				t.Errorf("IsPlaylist() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	stations := Defaults()

	if len(stations) != 2 {
		t.Fatalf("Defaults() returned %d stations, want 2", len(stations))
	}
	if stations[0].URL != FM4URL {
		t.Errorf("first default = %q, want %q", stations[0].URL, FM4URL)
	}
	if stations[1].URL != BBC6MusicURL {
		t.Errorf("second default = %q, want %q", stations[1].URL, BBC6MusicURL)
	}

	stations[0].Name = "changed"
	if Defaults()[0].Name == "changed" {
		t.Error("Defaults() should return a fresh slice")
	}
}

func TestIndexOf(t *testing.T) {
	stations := Defaults()

	tests := []struct {
		url      string
		expected int
	}{
		{FM4URL, 0},
		{BBC6MusicURL, 1},
		{"http://unknown", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IndexOf(stations, tt.url); got != tt.expected {
				t.Errorf("IndexOf(%q) = %d, want %d", tt.url, got, tt.expected)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	extra := []Station{
		{Name: "Duplicate", URL: FM4URL},
		{Name: "", URL: "http://example.com/live.pls"},
		{Name: "No URL"},
		{Name: "Jazz", URL: "http://example.com/jazz"},
	}

	merged := Merge(Defaults(), extra)

	if len(merged) != 4 {
		t.Fatalf("Merge() returned %d stations, want 4: %+v", len(merged), merged)
	}
	if merged[0].Name != "FM4" {
		t.Errorf("duplicate URL should keep the base entry, got %q", merged[0].Name)
	}
	if merged[2].Name != "http://example.com/live.pls" {
		t.Errorf("unnamed station should be named after its URL, got %q", merged[2].Name)
	}
	if merged[3].Name != "Jazz" {
		t.Errorf("merged[3].Name = %q, want Jazz", merged[3].Name)
	}
}
