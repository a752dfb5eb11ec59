package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"sort"
	"syscall"
	"time"

	"github.com/vidextract/vidextract/server/config"
)

const fetchTimeout = 10 * time.Second

// Format is a single stream variant reported by the downloader.
type Format struct {
	VCodec string `json:"vcodec"`
	Height int    `json:"height"`
}

// Entry is one item of a flat playlist listing.
type Entry struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Info is the subset of the downloader's JSON dump the application
// consumes.
type Info struct {
	Type           string   `json:"_type"`
	Title          string   `json:"title"`
	Thumbnail      string   `json:"thumbnail"`
	Uploader       string   `json:"uploader"`
	DurationString string   `json:"duration_string"`
	ViewCount      int64    `json:"view_count"`
	Formats        []Format `json:"formats"`
	Entries        []Entry  `json:"entries"`
}

func (i *Info) IsPlaylist() bool { return i.Type == "playlist" }

// Fetch resolves full metadata for a single item. The cookie file is
// attached only when non-empty.
func Fetch(ctx context.Context, url, cookieFile string) (*Info, error) {
	args := []string{url, "-J", "--no-playlist"}
	if cookieFile != "" {
		args = append(args, "--cookies", cookieFile)
	}
	return probe(ctx, args)
}

// FetchFlat lists playlist entries without resolving each entry's own
// stream formats.
func FetchFlat(ctx context.Context, url string) (*Info, error) {
	return probe(ctx, []string{url, "-J", "--flat-playlist"})
}

func probe(ctx context.Context, args []string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, config.Instance().Paths.DownloaderPath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	var bufferedStderr bytes.Buffer

	go func() {
		io.Copy(&bufferedStderr, stderr)
	}()

	slog.Info("retrieving metadata", slog.Any("args", args))

	var info Info
	decodeErr := json.NewDecoder(stdout).Decode(&info)

	if err := cmd.Wait(); err != nil {
		return nil, errors.New(bufferedStderr.String())
	}

	if decodeErr != nil {
		return nil, decodeErr
	}

	return &info, nil
}

var qualityNames = map[int]string{
	4320: "4320p (8K)",
	2160: "2160p (4K)",
	1440: "1440p",
	1080: "1080p",
	720:  "720p",
	480:  "480p",
	360:  "360p",
	240:  "240p",
	144:  "144p",
}

// QualityLabels derives the selectable quality list from the video
// stream heights, best first. Audio-only items yield ["N/A"].
func (i *Info) QualityLabels() []string {
	heights := make(map[int]bool)
	for _, f := range i.Formats {
		if f.VCodec != "" && f.VCodec != "none" && f.Height > 0 {
			heights[f.Height] = true
		}
	}

	sorted := make([]int, 0, len(heights))
	for h := range heights {
		sorted = append(sorted, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	labels := make([]string, 0, len(sorted))
	for _, h := range sorted {
		switch {
		case qualityNames[h] != "":
			labels = append(labels, qualityNames[h])
		case h > 4320:
			labels = append(labels, fmt.Sprintf("%dp (UHD)", h))
		default:
			labels = append(labels, fmt.Sprintf("%dp", h))
		}
	}

	if len(labels) == 0 {
		labels = []string{"N/A"}
	}

	return labels
}

// Thumbnail fetches a preview image, failing closed on timeout or any
// non-OK status.
func Thumbnail(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("thumbnail fetch failed with status %d", res.StatusCode)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}

	return raw, res.Header.Get("Content-Type"), nil
}
