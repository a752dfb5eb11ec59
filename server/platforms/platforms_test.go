package platforms

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		platform Platform
		url      string
		valid    bool
	}{
		{YouTube, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{YouTube, "https://youtu.be/dQw4w9WgXcQ", true},
		{YouTube, "https://www.youtube.com/playlist?list=PL123", true},
		{YouTube, "https://music.youtube.com/watch?v=abc", true},
		{YouTube, "https://vimeo.com/12345", false},
		{Twitter, "https://twitter.com/user/status/123456", true},
		{Twitter, "https://x.com/user/status/123456", true},
		{Twitter, "https://x.com/user", false},
		{Facebook, "https://www.facebook.com/watch?v=1", true},
		{Facebook, "https://fb.watch/abcdef/", false},
		{TikTok, "https://www.tiktok.com/@user/video/123", true},
		{TikTok, "https://vm.tiktok.com/ZMabc123/", true},
		{Instagram, "https://www.instagram.com/reel/Cabc123/", true},
		{Instagram, "https://www.instagram.com/user/", false},
		{SoundCloud, "https://soundcloud.com/artist/track", true},
		{Reddit, "https://www.reddit.com/r/videos/comments/abc123/title/", true},
		{Reddit, "https://www.reddit.com/r/videos/", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := Validate(tt.platform, tt.url)
			if tt.valid && err != nil {
				t.Errorf("Validate(%s, %q) = %v, want ok", tt.platform, tt.url, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Validate(%s, %q) accepted invalid URL", tt.platform, tt.url)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if _, err := Parse("YouTube"); err != nil {
		t.Errorf("case-insensitive parse failed: %v", err)
	}
	if _, err := Parse("vimeo"); err == nil {
		t.Error("unsupported platform must be rejected")
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://www.youtube.com/watch?v=abc", YouTube},
		{"https://x.com/user/status/1", Twitter},
		{"https://soundcloud.com/artist/track", SoundCloud},
	}

	for _, tt := range tests {
		got, ok := Detect(tt.url)
		if !ok || got != tt.want {
			t.Errorf("Detect(%q) = %v, %v", tt.url, got, ok)
		}
	}

	if _, ok := Detect("https://example.com/page"); ok {
		t.Error("unrelated URL must not be detected")
	}
}

func TestIsPlaylistURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/playlist?list=PL123", true},
		{"https://www.youtube.com/watch?v=abc&list=PL123", true},
		{"https://www.youtube.com/watch?v=abc", false},
		{"https://youtu.be/abc", false},
	}

	for _, tt := range tests {
		if got := IsPlaylistURL(tt.url); got != tt.want {
			t.Errorf("IsPlaylistURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
