package progress

import "fmt"

// PlaylistPosition locates an item inside a playlist download.
// Index is the 1-based autonumber assigned by the downloader.
type PlaylistPosition struct {
	Index int
	Count int
}

// Event is a closed set of raw progress notifications produced by the
// downloader process. Exactly one of Downloading, Finished or Errored
// is emitted per progress line.
type Event interface {
	event()
}

// Downloading carries byte counters for an in-flight transfer.
// Total is 0 when the downloader cannot estimate the final size.
type Downloading struct {
	Downloaded int64
	Total      int64
	Rate       float64
	ETA        int64
	Position   *PlaylistPosition
}

// Finished signals the end of a single file. Position is nil when the
// whole request (not just a playlist item) completed.
type Finished struct {
	Position *PlaylistPosition
}

// Errored carries a downloader-reported error. Code is empty for
// unstructured errors.
type Errored struct {
	Code string
	Text string
}

func (Downloading) event() {}
func (Finished) event()    {}
func (Errored) event()     {}

// Normalized is the UI-facing progress model: a percentage in [0,100]
// and a human readable status line.
type Normalized struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Normalize maps a raw event to its normalized form. It is a total
// function: every member of the Event set produces a value and never
// panics.
func Normalize(e Event) Normalized {
	switch ev := e.(type) {
	case Downloading:
		return normalizeDownloading(ev)
	case Finished:
		if ev.Position != nil {
			return Normalized{
				Percent: 100,
				Message: fmt.Sprintf("[Video %d] finished", ev.Position.Index),
			}
		}
		return Normalized{Percent: 100, Message: "Download finished"}
	case Errored:
		if ev.Code != "" {
			return Normalized{Percent: 0, Message: fmt.Sprintf("%s: %s", ev.Code, ev.Text)}
		}
		return Normalized{Percent: 0, Message: ev.Text}
	default:
		return Diagnostic(fmt.Sprintf("unknown progress event %T", e))
	}
}

// Diagnostic wraps a parse or translation failure in a non-fatal
// progress value so a single malformed event never aborts a download.
func Diagnostic(text string) Normalized {
	return Normalized{Percent: 0, Message: "progress unavailable: " + text}
}

func normalizeDownloading(ev Downloading) Normalized {
	prefix := ""
	if ev.Position != nil && ev.Position.Count > 0 {
		prefix = fmt.Sprintf("[Video %d/%d] ", ev.Position.Index, ev.Position.Count)
	}

	if ev.Total <= 0 {
		return Normalized{Percent: 0, Message: prefix + "Starting download..."}
	}

	percent := int(float64(ev.Downloaded) / float64(ev.Total) * 100)
	if percent > 100 {
		percent = 100
	}

	var (
		downloadedMB = float64(ev.Downloaded) / 1024 / 1024
		totalMB      = float64(ev.Total) / 1024 / 1024
	)

	msg := fmt.Sprintf("%sDownloading %d%% (%.2f MB / %.2f MB) at %s, %s left",
		prefix, percent, downloadedMB, totalMB, formatRate(ev.Rate), formatETA(ev.ETA))

	return Normalized{Percent: percent, Message: msg}
}

func formatRate(bytesPerSec float64) string {
	switch {
	case bytesPerSec >= 1048576:
		return fmt.Sprintf("%.2f MB/s", bytesPerSec/1048576)
	case bytesPerSec >= 1024:
		return fmt.Sprintf("%.2f KB/s", bytesPerSec/1024)
	default:
		return fmt.Sprintf("%.2f B/s", bytesPerSec)
	}
}

func formatETA(seconds int64) string {
	if seconds >= 60 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
