package formats

import (
	"slices"
	"testing"
)

func TestHeightCap(t *testing.T) {
	tests := []struct {
		quality string
		want    int
	}{
		{"720p", 720},
		{"1080p", 1080},
		{"2160p (4K)", 2160},
		{"4320p (8K)", 4320},
		{"144p", 144},
		{"N/A", DefaultHeightCap},
		{"", DefaultHeightCap},
		{"hd", DefaultHeightCap},
	}

	for _, tt := range tests {
		t.Run(tt.quality, func(t *testing.T) {
			if got := HeightCap(tt.quality); got != tt.want {
				t.Errorf("HeightCap(%q) = %d, want %d", tt.quality, got, tt.want)
			}
		})
	}
}

func TestSelector(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		quality string
		want    string
	}{
		{"audio ignores quality", KindAudio, "1080p", "bestaudio/best"},
		{"best video unconstrained", KindVideo, "best", "bestvideo+bestaudio/best"},
		{"capped video", KindVideo, "720p", "bestvideo[height<=720]+bestaudio/best[height<=720]"},
		{"unparseable label defaults to 720", KindVideo, "auto", "bestvideo[height<=720]+bestaudio/best[height<=720]"},
		{"4k label", KindVideo, "2160p (4K)", "bestvideo[height<=2160]+bestaudio/best[height<=2160]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Selector(tt.kind, tt.quality); got != tt.want {
				t.Errorf("Selector(%v, %q) = %q, want %q", tt.kind, tt.quality, got, tt.want)
			}
		})
	}
}

func TestAudioBitrate(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{MP3, "320"},
		{M4A, "256"},
		{OGG, "192"},
		{FLAC, "192"},
		{Opus, "192"},
		{WAV, "192"},
	}

	for _, tt := range tests {
		if got := AudioBitrate(tt.key); got != tt.want {
			t.Errorf("AudioBitrate(%s) = %s, want %s", tt.key, got, tt.want)
		}
	}
}

func TestParseKey(t *testing.T) {
	if _, err := ParseKey("mp4", KindVideo); err != nil {
		t.Errorf("mp4 should be a valid video key: %v", err)
	}
	if _, err := ParseKey("mp3", KindVideo); err == nil {
		t.Error("mp3 should not be a valid video key")
	}
	if _, err := ParseKey("flac", KindAudio); err != nil {
		t.Errorf("flac should be a valid audio key: %v", err)
	}
	if _, err := ParseKey("avi", KindVideo); err == nil {
		t.Error("avi should be rejected")
	}
}

func TestPostProcessing(t *testing.T) {
	audio := PostProcessing(KindAudio, MP3)
	want := []string{"--extract-audio", "--audio-format", "mp3", "--audio-quality", "320K"}
	if !slices.Equal(audio, want) {
		t.Errorf("audio flags = %v, want %v", audio, want)
	}

	video := PostProcessing(KindVideo, MKV)
	if !slices.Equal(video, []string{"--remux-video", "mkv"}) {
		t.Errorf("video flags = %v", video)
	}
}
