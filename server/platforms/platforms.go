// Package platforms validates source URLs against the fixed set of
// supported services.
package platforms

import (
	"fmt"
	"regexp"
	"strings"
)

type Platform string

const (
	YouTube    Platform = "youtube"
	Twitter    Platform = "twitter"
	Facebook   Platform = "facebook"
	TikTok     Platform = "tiktok"
	Instagram  Platform = "instagram"
	SoundCloud Platform = "soundcloud"
	Reddit     Platform = "reddit"
)

var patterns = map[Platform]*regexp.Regexp{
	YouTube:    regexp.MustCompile(`(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/|youtube\.com/playlist\?list=|music\.youtube\.com/watch\?v=)`),
	Twitter:    regexp.MustCompile(`(https?://)?(www\.)?(twitter\.com|x\.com)/(.+?)/status/(\d+)`),
	Facebook:   regexp.MustCompile(`(https?://)?(www\.)?(facebook\.com|fb\.watch)/(watch|video\.php|.+/videos|reel)(.+)`),
	TikTok:     regexp.MustCompile(`(https?://)?(www\.)?(tiktok\.com/(@.+/video|\d+)|vm\.tiktok\.com/([a-zA-Z0-9]+))`),
	Instagram:  regexp.MustCompile(`(https?://)?(www\.)?(instagram\.com)/(p|reel|tv)/([^/?#&]+)`),
	SoundCloud: regexp.MustCompile(`(https?://)?(www\.)?(soundcloud\.com)/(.+)`),
	Reddit:     regexp.MustCompile(`(https?://)?(www\.)?(reddit\.com)/r/([^/]+)/comments/([^/?#&]+)`),
}

// Parse validates a platform name from the wire.
func Parse(name string) (Platform, error) {
	p := Platform(strings.ToLower(name))
	if _, ok := patterns[p]; !ok {
		return "", fmt.Errorf("unsupported platform %q", name)
	}
	return p, nil
}

// Validate checks a URL against the platform's accepted shapes.
func Validate(p Platform, url string) error {
	re, ok := patterns[p]
	if !ok {
		return fmt.Errorf("unsupported platform %q", p)
	}
	if !re.MatchString(url) {
		return fmt.Errorf("invalid %s URL", p)
	}
	return nil
}

// Detect returns the first platform whose pattern accepts the URL.
func Detect(url string) (Platform, bool) {
	// fixed order so the more specific services win over soundcloud's
	// broad pattern
	for _, p := range []Platform{YouTube, Twitter, Facebook, TikTok, Instagram, Reddit, SoundCloud} {
		if patterns[p].MatchString(url) {
			return p, true
		}
	}
	return "", false
}

// IsPlaylistURL reports whether a YouTube URL addresses a playlist
// rather than a single video.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, "playlist?list=") ||
		(strings.Contains(url, "&list=") && strings.Contains(url, "watch?v="))
}
