package downloaders

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vidextract/vidextract/server/config"
	"github.com/vidextract/vidextract/server/internal/ffmpeg"
	"github.com/vidextract/vidextract/server/internal/formats"
	"github.com/vidextract/vidextract/server/internal/metadata"
	"github.com/vidextract/vidextract/server/internal/progress"
	"github.com/vidextract/vidextract/server/internal/sanitize"
)

const downloadTemplate = `download:
{
	"status":"%(progress.status)s",
	"downloaded":"%(progress.downloaded_bytes)s",
	"total":"%(progress.total_bytes)s",
	"total_estimate":"%(progress.total_bytes_estimate)s",
	"speed":"%(progress.speed)s",
	"eta":"%(progress.eta)s",
	"index":"%(info.playlist_autonumber)s",
	"count":"%(info.n_entries)s"
}`

// filename not returning the correct extension after postprocess
const postprocessTemplate = `postprocess:
{
	"filepath":"%(info.filepath)s"
}`

var templateReplacer = strings.NewReplacer("\n", "", "\t", "", " ", "")

// Snapshot is the externally visible state of a Worker.
type Snapshot struct {
	Id            string              `json:"id"`
	URL           string              `json:"url"`
	Progress      progress.Normalized `json:"progress"`
	SavedFilePath string              `json:"saved_file_path,omitempty"`
	Completed     bool                `json:"completed"`
}

// Worker owns a single download session. It drives the downloader
// process, translates its progress lines into normalized events and
// produces exactly one terminal Outcome.
type Worker struct {
	id  string
	req Request

	events chan progress.Normalized

	logConsumer LogConsumer
	flatProbe   func(ctx context.Context, url string) (*metadata.Info, error)

	mu            sync.Mutex
	proc          *os.Process
	stopped       bool
	completed     bool
	lastProgress  progress.Normalized
	savedFilePath string
}

func New(req Request) *Worker {
	return &Worker{
		id:          uuid.NewString(),
		req:         req,
		events:      make(chan progress.Normalized, 64),
		logConsumer: NewTemplateLogConsumer(),
		flatProbe:   metadata.FetchFlat,
	}
}

func (w *Worker) Id() string       { return w.id }
func (w *Worker) Request() Request { return w.req }

// Events streams normalized progress until the worker terminates.
// Slow consumers lose intermediate updates, never the channel close.
func (w *Worker) Events() <-chan progress.Normalized { return w.events }

func (w *Worker) Status() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Id:            w.id,
		URL:           w.req.URL,
		Progress:      w.lastProgress,
		SavedFilePath: w.savedFilePath,
		Completed:     w.completed,
	}
}

// Run executes the download to completion or cancellation. Every fault
// is converted to a Failure outcome; nothing escapes the worker.
func (w *Worker) Run(ctx context.Context) Outcome {
	defer func() {
		w.mu.Lock()
		w.completed = true
		w.mu.Unlock()
		close(w.events)
	}()

	outDir, err := w.resolveOutputDir(ctx)
	if err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("failed to prepare output directory: %v", err)}
	}

	args := w.buildArgs(outDir, ffmpeg.Locate(
		config.Instance().Paths.FFmpegBundleDir,
		config.Instance().FFmpegBinDir(),
	))

	slog.Info("requesting download",
		slog.String("id", w.id),
		slog.String("url", w.req.URL),
		slog.Any("args", args),
	)

	cmd := exec.Command(config.Instance().Paths.DownloaderPath, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("failed to get a stdout pipe: %v", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("failed to get a stderr pipe: %v", err)}
	}

	if err := cmd.Start(); err != nil {
		return Outcome{Success: false, Message: fmt.Sprintf("failed to start downloader process: %v", err)}
	}

	w.mu.Lock()
	w.proc = cmd.Process
	w.mu.Unlock()

	var (
		g          errgroup.Group
		stderrTail bytes.Buffer
	)

	g.Go(func() error {
		w.consumeOutput(stdout)
		return nil
	})

	g.Go(func() error {
		w.consumeErrors(stderr, &stderrTail)
		return nil
	})

	waitErr := cmd.Wait()
	g.Wait()

	if w.wasStopped() {
		slog.Info("download canceled", slog.String("id", w.id), slog.String("url", w.req.URL))
		return Outcome{Success: false, Message: "download canceled"}
	}

	if waitErr != nil {
		diag := strings.TrimSpace(stderrTail.String())
		if diag == "" {
			diag = waitErr.Error()
		}
		return Outcome{Success: false, Message: "download failed: " + diag}
	}

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Download finished. Files saved to %s", outDir),
	}
}

// Stop aborts the session immediately. The downloader spawns child
// processes in its own group, so the SIGTERM goes to the whole group.
// Partial files in the destination directory are not cleaned up.
func (w *Worker) Stop() error {
	w.mu.Lock()
	w.stopped = true
	proc := w.proc
	w.mu.Unlock()

	if proc == nil {
		return errors.New("*os.Process not set")
	}

	pgid, err := syscall.Getpgid(proc.Pid)
	if err != nil {
		return err
	}

	return syscall.Kill(-pgid, syscall.SIGTERM)
}

func (w *Worker) resolveOutputDir(ctx context.Context) (string, error) {
	outDir := w.req.DestinationDir

	if w.req.Playlist {
		title := ""
		info, err := w.flatProbe(ctx, w.req.URL)
		if err != nil || info.Title == "" {
			slog.Warn("playlist title probe failed, using fallback",
				slog.String("url", w.req.URL),
				slog.Any("err", err),
			)
			title = fmt.Sprintf("playlist_%d", time.Now().Unix())
		} else {
			title = info.Title
		}
		outDir = filepath.Join(outDir, sanitize.Filename(title, sanitize.DefaultMaxLength))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	return outDir, nil
}

func (w *Worker) buildArgs(outDir, ffmpegDir string) []string {
	template := "%(title)s.%(ext)s"
	if w.req.Playlist {
		template = "%(playlist_autonumber)s - %(title)s.%(ext)s"
	}

	args := []string{
		w.req.URL,
		"--newline",
		"--no-colors",
		"--no-exec",
		"--progress-template",
		templateReplacer.Replace(downloadTemplate),
		"--progress-template",
		templateReplacer.Replace(postprocessTemplate),
		"-f", formats.Selector(w.req.Kind, w.req.Quality),
		"-o", filepath.Join(outDir, template),
	}

	args = append(args, formats.PostProcessing(w.req.Kind, w.req.Container)...)

	if w.req.Playlist {
		// individual item failures inside a playlist are skipped
		args = append(args, "--yes-playlist", "--ignore-errors")
	} else {
		args = append(args, "--no-playlist")
	}

	if ffmpegDir != "" {
		args = append(args, "--ffmpeg-location", ffmpegDir)
	}

	if w.req.CookieFile != "" {
		if _, err := os.Stat(w.req.CookieFile); err == nil {
			args = append(args, "--cookies", w.req.CookieFile)
		}
	}

	if w.req.Subtitles && w.req.Kind == formats.KindVideo {
		args = append(args,
			"--write-subs",
			"--write-auto-subs",
			"--sub-langs", strings.Join(subtitleLanguages(w.req.SubtitleLangs), ","),
			"--embed-subs",
		)
	}

	return args
}

func (w *Worker) consumeOutput(r io.Reader) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		entry := scanner.Bytes()

		if path, ok := w.logConsumer.ParseSavedFilePath(entry); ok {
			w.mu.Lock()
			w.savedFilePath = path
			w.mu.Unlock()
			continue
		}

		event, ok, err := w.logConsumer.ParseLogEntry(entry)
		if err != nil {
			w.emit(progress.Diagnostic(err.Error()))
			continue
		}
		if !ok {
			continue
		}

		w.emit(progress.Normalize(event))
	}
}

func (w *Worker) consumeErrors(r io.Reader, tail *bytes.Buffer) {
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		tail.WriteString(line)
		tail.WriteString("\n")

		if strings.HasPrefix(line, "ERROR:") {
			slog.Error("downloader process error",
				slog.String("id", w.id),
				slog.String("url", w.req.URL),
				slog.String("err", line),
			)
			w.emit(progress.Normalize(progress.Errored{
				Text: strings.TrimSpace(strings.TrimPrefix(line, "ERROR:")),
			}))
		}
	}
}

func (w *Worker) emit(n progress.Normalized) {
	w.mu.Lock()
	w.lastProgress = n
	w.mu.Unlock()

	select {
	case w.events <- n:
	default:
	}
}

func (w *Worker) wasStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}
