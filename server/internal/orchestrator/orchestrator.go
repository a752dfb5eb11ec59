// Package orchestrator owns the active background workers. It enforces
// the single-flight rule: at most one download and at most one binary
// installation at a time; concurrent start requests are rejected, not
// queued.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/asaskevich/EventBus"

	"github.com/vidextract/vidextract/server/internal/archive"
	"github.com/vidextract/vidextract/server/internal/downloaders"
	"github.com/vidextract/vidextract/server/internal/ffmpeg"
	"github.com/vidextract/vidextract/server/internal/progress"
)

// Bus topics carrying worker events to subscribers.
const (
	TopicDownloadProgress = "download:progress"
	TopicDownloadOutcome  = "download:outcome"
	TopicInstallProgress  = "ffmpeg:progress"
	TopicInstallResult    = "ffmpeg:result"
)

var (
	ErrDownloadBusy     = errors.New("a download is already in progress")
	ErrInstallBusy      = errors.New("an installation is already in progress")
	ErrNoActiveDownload = errors.New("no active download")
)

// Download is the orchestrator's view of a download worker.
type Download interface {
	Id() string
	Run(ctx context.Context) downloaders.Outcome
	Events() <-chan progress.Normalized
	Status() downloaders.Snapshot
	Stop() error
}

// Install is the orchestrator's view of a binary acquisition worker.
type Install interface {
	Run() ffmpeg.InstallResult
	Events() <-chan ffmpeg.InstallProgress
}

// Status is the externally visible orchestrator state.
type Status struct {
	Active      *downloaders.Snapshot `json:"active,omitempty"`
	LastOutcome *downloaders.Outcome  `json:"last_outcome,omitempty"`
	Installing  bool                  `json:"installing"`
}

type Orchestrator struct {
	bus     EventBus.Bus
	records *archive.Store

	mu          sync.Mutex
	active      Download
	installing  bool
	lastOutcome *downloaders.Outcome
}

// New wires the orchestrator to its event bus and the optional
// download archive.
func New(bus EventBus.Bus, records *archive.Store) *Orchestrator {
	return &Orchestrator{bus: bus, records: records}
}

// StartDownload adopts the worker and runs it on a background
// goroutine. A second start while one is running fails with
// ErrDownloadBusy and leaves the running worker untouched.
func (o *Orchestrator) StartDownload(ctx context.Context, d Download) (string, error) {
	o.mu.Lock()
	if o.active != nil {
		o.mu.Unlock()
		return "", ErrDownloadBusy
	}
	o.active = d
	o.lastOutcome = nil
	o.mu.Unlock()

	slog.Info("download started", slog.String("id", d.Id()))

	go o.runDownload(ctx, d)

	return d.Id(), nil
}

func (o *Orchestrator) runDownload(ctx context.Context, d Download) {
	done := make(chan downloaders.Outcome, 1)

	go func() {
		done <- d.Run(ctx)
	}()

	// the events channel closes when Run returns
	for n := range d.Events() {
		o.bus.Publish(TopicDownloadProgress, n)
	}

	outcome := <-done

	if outcome.Success {
		o.recordOutcome(ctx, d)
	}

	o.mu.Lock()
	o.active = nil
	o.lastOutcome = &outcome
	o.mu.Unlock()

	slog.Info("download terminated",
		slog.String("id", d.Id()),
		slog.Bool("success", outcome.Success),
	)

	o.bus.Publish(TopicDownloadOutcome, outcome)
}

func (o *Orchestrator) recordOutcome(ctx context.Context, d Download) {
	if o.records == nil {
		return
	}

	snap := d.Status()

	title := filepath.Base(snap.SavedFilePath)
	if snap.SavedFilePath == "" {
		title = snap.URL
	}

	if err := o.records.Record(ctx, archive.Entry{
		Id:     snap.Id,
		Title:  title,
		Source: snap.URL,
		Path:   snap.SavedFilePath,
	}); err != nil {
		slog.Error("failed to archive download", slog.Any("err", err))
	}
}

// CancelDownload aborts the active worker. Partial files are left in
// place; the worker's terminal outcome reports the cancellation.
func (o *Orchestrator) CancelDownload() error {
	o.mu.Lock()
	d := o.active
	o.mu.Unlock()

	if d == nil {
		return ErrNoActiveDownload
	}

	slog.Info("canceling download", slog.String("id", d.Id()))
	return d.Stop()
}

func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Status{
		Installing:  o.installing,
		LastOutcome: o.lastOutcome,
	}
	if o.active != nil {
		snap := o.active.Status()
		s.Active = &snap
	}
	return s
}

// StartInstall runs the binary acquisition worker, single-flight.
func (o *Orchestrator) StartInstall(inst Install) error {
	o.mu.Lock()
	if o.installing {
		o.mu.Unlock()
		return ErrInstallBusy
	}
	o.installing = true
	o.mu.Unlock()

	go func() {
		done := make(chan ffmpeg.InstallResult, 1)

		go func() {
			done <- inst.Run()
		}()

		for p := range inst.Events() {
			o.bus.Publish(TopicInstallProgress, p)
		}

		result := <-done

		o.mu.Lock()
		o.installing = false
		o.mu.Unlock()

		slog.Info("ffmpeg installation terminated", slog.Bool("success", result.Success))
		o.bus.Publish(TopicInstallResult, result)
	}()

	return nil
}
