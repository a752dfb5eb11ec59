package downloaders

import "github.com/vidextract/vidextract/server/internal/formats"

// Request is the immutable options snapshot taken when a download is
// started. One Worker consumes exactly one Request.
type Request struct {
	URL            string       `json:"url"`
	DestinationDir string       `json:"destination_dir"`
	Quality        string       `json:"quality"`
	Kind           formats.Kind `json:"kind"`
	Container      formats.Key  `json:"container"`
	Playlist       bool         `json:"playlist"`
	Subtitles      bool         `json:"subtitles"`
	SubtitleLangs  string       `json:"subtitle_langs"`
	CookieFile     string       `json:"cookie_file"`
}

// Outcome is the single terminal value of a download session.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
