package ffmpeg

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// latest-release query against the BtbN build repository
	defaultReleaseAPI = "https://api.github.com/repos/BtbN/FFmpeg-Builds/releases/latest"
	// permanent fallback when the API lookup fails
	defaultFallbackURL = "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip"

	assetSubstring = "win64-gpl.zip"
	assetExclusion = "shared"
	lookupTimeout  = 10 * time.Second
)

// InstallProgress is one step of the acquisition stream.
type InstallProgress struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// InstallResult terminates the stream exactly once.
type InstallResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Installer downloads the transcoder archive into memory, extracts the
// executables under the archive's bin/ directory into the install
// directory and registers that directory on the user's search path.
type Installer struct {
	client      *http.Client
	releaseAPI  string
	fallbackURL string
	installDir  string

	events chan InstallProgress
}

func NewInstaller(installDir string) *Installer {
	return &Installer{
		client:      &http.Client{Timeout: lookupTimeout},
		releaseAPI:  defaultReleaseAPI,
		fallbackURL: defaultFallbackURL,
		installDir:  installDir,
		events:      make(chan InstallProgress, 16),
	}
}

// Events streams (percent, status) pairs until Run returns.
func (i *Installer) Events() <-chan InstallProgress { return i.events }

func (i *Installer) BinDir() string { return filepath.Join(i.installDir, "bin") }

// Run performs the whole acquisition. All faults are converted into
// the terminal InstallResult; a failed install never leaves a
// partially populated install directory behind.
func (i *Installer) Run() InstallResult {
	defer close(i.events)

	i.emit(0, "Looking up the latest release...")
	archiveURL := i.resolveLatestURL()

	i.emit(5, "Starting download...")

	archive, err := i.fetchArchive(archiveURL)
	if err != nil {
		return InstallResult{Success: false, Message: fmt.Sprintf("download failed: %v", err)}
	}

	i.emit(100, "Extracting...")

	if err := i.extract(archive); err != nil {
		// an aborted extraction must not look like a finished install
		os.RemoveAll(i.installDir)

		if errors.Is(err, fs.ErrPermission) {
			return InstallResult{
				Success: false,
				Message: fmt.Sprintf("permission denied writing to %s; make sure no other program is locking it", i.installDir),
			}
		}
		return InstallResult{Success: false, Message: fmt.Sprintf("extraction failed: %v", err)}
	}

	i.emit(100, "Updating PATH...")

	if err := registerPath(i.BinDir()); err != nil {
		slog.Warn("install succeeded but PATH registration failed", slog.Any("err", err))
		return InstallResult{
			Success: true,
			Message: fmt.Sprintf("FFmpeg installed to %s, but the PATH could not be updated: %v", i.BinDir(), err),
		}
	}

	return InstallResult{
		Success: true,
		Message: fmt.Sprintf("FFmpeg installed to %s and added to the PATH.", i.BinDir()),
	}
}

type releaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type release struct {
	Assets []releaseAsset `json:"assets"`
}

// resolveLatestURL asks the hosting API for the newest matching asset
// and falls back to the hardcoded URL on any fault.
func (i *Installer) resolveLatestURL() string {
	res, err := i.client.Get(i.releaseAPI)
	if err != nil {
		slog.Warn("release lookup failed, using fallback URL", slog.Any("err", err))
		return i.fallbackURL
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Warn("release lookup failed, using fallback URL", slog.Int("status", res.StatusCode))
		return i.fallbackURL
	}

	var rel release
	if err := json.NewDecoder(res.Body).Decode(&rel); err != nil {
		slog.Warn("release lookup undecodable, using fallback URL", slog.Any("err", err))
		return i.fallbackURL
	}

	for _, asset := range rel.Assets {
		name := strings.ToLower(asset.Name)
		if strings.Contains(name, assetSubstring) && !strings.Contains(name, assetExclusion) {
			slog.Info("resolved latest ffmpeg build", slog.String("url", asset.BrowserDownloadURL))
			return asset.BrowserDownloadURL
		}
	}

	slog.Warn("no matching release asset, using fallback URL")
	return i.fallbackURL
}

func (i *Installer) fetchArchive(url string) (*bytes.Reader, error) {
	// the archive is large; no timeout on the transfer itself
	res, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var (
		total      = res.ContentLength
		downloaded int64
		buf        bytes.Buffer
		chunk      = make([]byte, 8192)
	)

	for {
		n, err := res.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			downloaded += int64(n)
			if total > 0 {
				i.emit(int(downloaded*100/total), fmt.Sprintf(
					"Downloading... %.1f MB / %.1f MB",
					float64(downloaded)/1024/1024,
					float64(total)/1024/1024,
				))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return bytes.NewReader(buf.Bytes()), nil
}

// extract replaces any prior installation and writes the files found
// directly under a bin/ path inside the archive, flattened into the
// install bin directory.
func (i *Installer) extract(archive *bytes.Reader) error {
	zr, err := zip.NewReader(archive, archive.Size())
	if err != nil {
		return err
	}

	if err := os.RemoveAll(i.installDir); err != nil {
		return err
	}
	if err := os.MkdirAll(i.BinDir(), 0o755); err != nil {
		return err
	}

	extracted := 0

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		parts := strings.Split(f.Name, "/")
		if len(parts) < 2 || parts[len(parts)-2] != "bin" || parts[len(parts)-1] == "" {
			continue
		}

		target := filepath.Join(i.BinDir(), parts[len(parts)-1])

		src, err := f.Open()
		if err != nil {
			return err
		}

		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
		if err != nil {
			src.Close()
			return err
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}

		extracted++
	}

	if extracted == 0 {
		return errors.New("archive holds no bin/ entries")
	}

	return nil
}

func (i *Installer) emit(percent int, status string) {
	select {
	case i.events <- InstallProgress{Percent: percent, Status: status}:
	default:
	}
}
