// Package formats translates user-facing download options into the
// format selectors and post-processing flags understood by yt-dlp.
// The UI hands over explicit format keys, never localized labels.
package formats

import (
	"fmt"
	"regexp"
)

// Kind selects between the two media pipelines.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

// Key identifies a target container or audio codec.
type Key string

const (
	MP4  Key = "mp4"
	WebM Key = "webm"
	MKV  Key = "mkv"

	MP3  Key = "mp3"
	M4A  Key = "m4a"
	OGG  Key = "ogg"
	FLAC Key = "flac"
	Opus Key = "opus"
	WAV  Key = "wav"
)

var videoKeys = map[Key]bool{MP4: true, WebM: true, MKV: true}
var audioKeys = map[Key]bool{MP3: true, M4A: true, OGG: true, FLAC: true, Opus: true, WAV: true}

// ParseKey validates a wire-level format key against the kind it is
// supposed to serve.
func ParseKey(s string, kind Kind) (Key, error) {
	k := Key(s)
	switch kind {
	case KindVideo:
		if videoKeys[k] {
			return k, nil
		}
	case KindAudio:
		if audioKeys[k] {
			return k, nil
		}
	}
	return "", fmt.Errorf("unsupported %s format %q", kind, s)
}

// AudioBitrate returns the target bitrate in kbps for the extract-audio
// post-processing step.
func AudioBitrate(k Key) string {
	switch k {
	case MP3:
		return "320"
	case M4A:
		return "256"
	default:
		return "192"
	}
}

const DefaultHeightCap = 720

var leadingDigits = regexp.MustCompile(`^\d+`)

// HeightCap parses a leading integer out of a quality label such as
// "1080p" or "2160p (4K)" and interprets it as a vertical resolution
// cap. Labels without leading digits cap at DefaultHeightCap.
func HeightCap(quality string) int {
	m := leadingDigits.FindString(quality)
	if m == "" {
		return DefaultHeightCap
	}
	var h int
	fmt.Sscanf(m, "%d", &h)
	return h
}

// Selector builds the yt-dlp format selection string for the request.
// The "best" quality label means unconstrained best video + audio.
func Selector(kind Kind, quality string) string {
	if kind == KindAudio {
		return "bestaudio/best"
	}
	if quality == "best" {
		return "bestvideo+bestaudio/best"
	}
	h := HeightCap(quality)
	return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", h, h)
}

// PostProcessing returns the downloader flags for the post-download
// transformation: audio extraction with the fixed bitrate policy, or a
// container remux without re-encoding.
func PostProcessing(kind Kind, target Key) []string {
	if kind == KindAudio {
		return []string{
			"--extract-audio",
			"--audio-format", string(target),
			"--audio-quality", AudioBitrate(target) + "K",
		}
	}
	return []string{"--remux-video", string(target)}
}
