package rest

import (
	"context"
	"errors"
	"fmt"

	"github.com/vidextract/vidextract/server/config"
	"github.com/vidextract/vidextract/server/internal/archive"
	"github.com/vidextract/vidextract/server/internal/downloaders"
	"github.com/vidextract/vidextract/server/internal/ffmpeg"
	"github.com/vidextract/vidextract/server/internal/formats"
	"github.com/vidextract/vidextract/server/internal/metadata"
	"github.com/vidextract/vidextract/server/internal/orchestrator"
	"github.com/vidextract/vidextract/server/internal/updater"
	"github.com/vidextract/vidextract/server/platforms"
	"github.com/vidextract/vidextract/server/settings"
)

type Service struct {
	orc      *orchestrator.Orchestrator
	settings *settings.Store
	records  *archive.Store
}

func NewService(orc *orchestrator.Orchestrator, store *settings.Store, records *archive.Store) *Service {
	return &Service{
		orc:      orc,
		settings: store,
		records:  records,
	}
}

// DownloadBody is the wire form of a download start request. Container
// is an explicit format key; the UI never sends display labels.
type DownloadBody struct {
	URL           string `json:"url"`
	Platform      string `json:"platform"`
	Quality       string `json:"quality"`
	Kind          string `json:"kind"`
	Container     string `json:"container"`
	Playlist      bool   `json:"playlist"`
	Subtitles     bool   `json:"subtitles"`
	SubtitleLangs string `json:"subtitle_langs"`
}

func (s *Service) Exec(ctx context.Context, body DownloadBody) (string, error) {
	req, err := s.buildRequest(body)
	if err != nil {
		return "", err
	}

	return s.orc.StartDownload(ctx, downloaders.New(req))
}

func (s *Service) buildRequest(body DownloadBody) (downloaders.Request, error) {
	var zero downloaders.Request

	if body.URL == "" {
		return zero, errors.New("missing url")
	}

	var (
		platform platforms.Platform
		err      error
	)
	if body.Platform != "" {
		platform, err = platforms.Parse(body.Platform)
		if err != nil {
			return zero, err
		}
	} else {
		var ok bool
		platform, ok = platforms.Detect(body.URL)
		if !ok {
			return zero, errors.New("URL does not match any supported platform")
		}
	}

	if err := platforms.Validate(platform, body.URL); err != nil {
		return zero, err
	}

	kind := formats.Kind(body.Kind)
	if kind == "" {
		kind = formats.KindVideo
	}
	if kind != formats.KindVideo && kind != formats.KindAudio {
		return zero, fmt.Errorf("unsupported media kind %q", body.Kind)
	}

	container := body.Container
	if container == "" {
		if kind == formats.KindAudio {
			container = string(formats.MP3)
		} else {
			container = string(formats.MP4)
		}
	}

	key, err := formats.ParseKey(container, kind)
	if err != nil {
		return zero, err
	}

	quality := body.Quality
	if quality == "" {
		quality = "best"
	}

	return downloaders.Request{
		URL:            body.URL,
		DestinationDir: s.settings.GetString(settings.KeyDownloadFolder),
		Quality:        quality,
		Kind:           kind,
		Container:      key,
		Playlist:       body.Playlist && platform == platforms.YouTube,
		Subtitles:      body.Subtitles,
		SubtitleLangs:  body.SubtitleLangs,
		CookieFile:     s.settings.GetString(settings.KeyCookiePath),
	}, nil
}

func (s *Service) Cancel() error { return s.orc.CancelDownload() }

func (s *Service) Status() orchestrator.Status { return s.orc.Status() }

// ProbeResult carries what the UI needs to populate its choices.
type ProbeResult struct {
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Uploader  string   `json:"uploader"`
	Duration  string   `json:"duration"`
	Views     int64    `json:"views"`
	Qualities []string `json:"qualities"`
	Playlist  bool     `json:"playlist"`
	Entries   int      `json:"entries,omitempty"`
}

func (s *Service) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	if _, ok := platforms.Detect(url); !ok {
		return nil, errors.New("URL does not match any supported platform")
	}

	if platforms.IsPlaylistURL(url) {
		info, err := metadata.FetchFlat(ctx, url)
		if err != nil {
			return nil, err
		}
		return &ProbeResult{
			Title:     info.Title,
			Thumbnail: info.Thumbnail,
			Uploader:  info.Uploader,
			Qualities: []string{"best"},
			Playlist:  true,
			Entries:   len(info.Entries),
		}, nil
	}

	info, err := metadata.Fetch(ctx, url, s.settings.GetString(settings.KeyCookiePath))
	if err != nil {
		return nil, err
	}

	return &ProbeResult{
		Title:     info.Title,
		Thumbnail: info.Thumbnail,
		Uploader:  info.Uploader,
		Duration:  info.DurationString,
		Views:     info.ViewCount,
		Qualities: info.QualityLabels(),
	}, nil
}

func (s *Service) Thumbnail(ctx context.Context, url string) ([]byte, string, error) {
	return metadata.Thumbnail(ctx, url)
}

func (s *Service) AllSettings() map[string]any { return s.settings.All() }

func (s *Service) UpdateSettings(values map[string]any) error {
	for key, value := range values {
		if err := s.settings.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// FFmpegStatus reports where the transcoder was found, if anywhere.
type FFmpegStatus struct {
	Installed bool   `json:"installed"`
	Location  string `json:"location,omitempty"`
}

func (s *Service) FFmpeg() FFmpegStatus {
	var (
		conf      = config.Instance()
		bundleDir = conf.Paths.FFmpegBundleDir
		binDir    = conf.FFmpegBinDir()
	)

	return FFmpegStatus{
		Installed: ffmpeg.Installed(bundleDir, binDir),
		Location:  ffmpeg.Locate(bundleDir, binDir),
	}
}

func (s *Service) InstallFFmpeg() error {
	return s.orc.StartInstall(ffmpeg.NewInstaller(config.Instance().Paths.FFmpegInstallDir))
}

func (s *Service) UpdateDownloader() (string, error) {
	return updater.UpdateDownloader()
}

func (s *Service) Archived(ctx context.Context) ([]archive.Entry, error) {
	return s.records.All(ctx)
}
