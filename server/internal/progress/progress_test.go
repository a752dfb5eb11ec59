package progress

import (
	"strings"
	"testing"
)

func TestNormalizeDownloading(t *testing.T) {
	tests := []struct {
		name        string
		event       Downloading
		wantPercent int
		wantParts   []string
	}{
		{
			name:        "half done",
			event:       Downloading{Downloaded: 50, Total: 100, Rate: 512, ETA: 10},
			wantPercent: 50,
			wantParts:   []string{"50%", "512.00 B/s", "10s left"},
		},
		{
			name:        "unknown total",
			event:       Downloading{Downloaded: 123456},
			wantPercent: 0,
			wantParts:   []string{"Starting download"},
		},
		{
			name:        "unknown total with playlist position",
			event:       Downloading{Downloaded: 1, Position: &PlaylistPosition{Index: 3, Count: 7}},
			wantPercent: 0,
			wantParts:   []string{"[Video 3/7] Starting download"},
		},
		{
			name:        "kilobyte rate",
			event:       Downloading{Downloaded: 1, Total: 4, Rate: 2048, ETA: 5},
			wantPercent: 25,
			wantParts:   []string{"2.00 KB/s"},
		},
		{
			name:        "megabyte rate and long eta",
			event:       Downloading{Downloaded: 1, Total: 2, Rate: 3 * 1048576, ETA: 75},
			wantPercent: 50,
			wantParts:   []string{"3.00 MB/s", "1m 15s left"},
		},
		{
			name:        "megabytes formatted with two decimals",
			event:       Downloading{Downloaded: 1048576, Total: 2097152, Rate: 1, ETA: 1},
			wantPercent: 50,
			wantParts:   []string{"1.00 MB / 2.00 MB"},
		},
		{
			name:        "playlist prefix",
			event:       Downloading{Downloaded: 10, Total: 100, Rate: 1, ETA: 1, Position: &PlaylistPosition{Index: 2, Count: 9}},
			wantPercent: 10,
			wantParts:   []string{"[Video 2/9]"},
		},
		{
			name:        "percent clamped at 100",
			event:       Downloading{Downloaded: 150, Total: 100, Rate: 1, ETA: 0},
			wantPercent: 100,
			wantParts:   []string{"100%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.event)
			if got.Percent != tt.wantPercent {
				t.Errorf("percent = %d, want %d", got.Percent, tt.wantPercent)
			}
			for _, part := range tt.wantParts {
				if !strings.Contains(got.Message, part) {
					t.Errorf("message %q missing %q", got.Message, part)
				}
			}
		})
	}
}

func TestNormalizeFinished(t *testing.T) {
	overall := Normalize(Finished{})
	if overall.Percent != 100 || overall.Message != "Download finished" {
		t.Errorf("overall finish = %+v", overall)
	}

	item := Normalize(Finished{Position: &PlaylistPosition{Index: 4, Count: 10}})
	if item.Percent != 100 {
		t.Errorf("item percent = %d", item.Percent)
	}
	if !strings.Contains(item.Message, "[Video 4]") {
		t.Errorf("item message = %q", item.Message)
	}
}

func TestNormalizeErrored(t *testing.T) {
	plain := Normalize(Errored{Text: "network unreachable"})
	if plain.Percent != 0 || plain.Message != "network unreachable" {
		t.Errorf("plain error = %+v", plain)
	}

	structured := Normalize(Errored{Code: "403", Text: "access denied"})
	if structured.Message != "403: access denied" {
		t.Errorf("structured error = %+v", structured)
	}
}

func TestDiagnostic(t *testing.T) {
	got := Diagnostic("missing field eta")
	if got.Percent != 0 {
		t.Errorf("percent = %d, want 0", got.Percent)
	}
	if !strings.Contains(got.Message, "missing field eta") {
		t.Errorf("message = %q", got.Message)
	}
}
