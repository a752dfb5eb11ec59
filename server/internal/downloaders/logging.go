package downloaders

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vidextract/vidextract/server/internal/progress"
)

// LogConsumer turns downloader output lines into progress events.
// Lines that do not match the progress templates are skipped; lines
// that match but cannot be decoded surface as errors so the worker can
// degrade them to a diagnostic event.
type LogConsumer interface {
	GetName() string
	ParseLogEntry(entry []byte) (progress.Event, bool, error)
	ParseSavedFilePath(entry []byte) (string, bool)
}

type templateLogConsumer struct{}

func NewTemplateLogConsumer() LogConsumer {
	return &templateLogConsumer{}
}

func (t *templateLogConsumer) GetName() string { return "template-log-consumer" }

// rawProgress mirrors the JSON progress template. Every field is quoted
// because the downloader substitutes "NA" for unknown values.
type rawProgress struct {
	Status        string `json:"status"`
	Downloaded    string `json:"downloaded"`
	Total         string `json:"total"`
	TotalEstimate string `json:"total_estimate"`
	Speed         string `json:"speed"`
	Eta           string `json:"eta"`
	Index         string `json:"index"`
	Count         string `json:"count"`
}

type rawPostprocess struct {
	FilePath string `json:"filepath"`
}

func (t *templateLogConsumer) ParseLogEntry(entry []byte) (progress.Event, bool, error) {
	if !looksLikeProgress(entry) {
		return nil, false, nil
	}

	var raw rawProgress
	if err := json.Unmarshal(entry, &raw); err != nil {
		return nil, false, fmt.Errorf("undecodable progress line: %w", err)
	}

	switch raw.Status {
	case "downloading":
		total := parseCount(raw.Total)
		if total == 0 {
			total = parseCount(raw.TotalEstimate)
		}
		return progress.Downloading{
			Downloaded: parseCount(raw.Downloaded),
			Total:      total,
			Rate:       parseRate(raw.Speed),
			ETA:        parseCount(raw.Eta),
			Position:   parsePosition(raw.Index, raw.Count),
		}, true, nil
	case "finished":
		return progress.Finished{
			Position: parsePosition(raw.Index, raw.Count),
		}, true, nil
	case "error":
		return progress.Errored{Text: "downloader reported an error"}, true, nil
	default:
		return nil, false, fmt.Errorf("unknown progress status %q", raw.Status)
	}
}

func (t *templateLogConsumer) ParseSavedFilePath(entry []byte) (string, bool) {
	if !strings.Contains(string(entry), `"filepath"`) {
		return "", false
	}

	var raw rawPostprocess
	if err := json.Unmarshal(entry, &raw); err != nil || raw.FilePath == "" {
		return "", false
	}

	return raw.FilePath, true
}

func looksLikeProgress(entry []byte) bool {
	return strings.HasPrefix(string(entry), `{"status"`)
}

// parseCount reads an integral field, treating the downloader's "NA"
// placeholder (and float renderings) as best it can. Unknown is 0.
func parseCount(s string) int64 {
	if s == "" || s == "NA" || s == "None" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseRate(s string) float64 {
	if s == "" || s == "NA" || s == "None" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parsePosition(index, count string) *progress.PlaylistPosition {
	var (
		i = parseCount(index)
		n = parseCount(count)
	)
	if i <= 0 || n <= 0 {
		return nil
	}
	return &progress.PlaylistPosition{Index: int(i), Count: int(n)}
}

func subtitleLanguages(list string) []string {
	if strings.TrimSpace(list) == "" {
		return []string{"en", "tr"}
	}

	parts := strings.Split(list, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		if lang := strings.TrimSpace(p); lang != "" {
			langs = append(langs, lang)
		}
	}

	if len(langs) == 0 {
		return []string{"en", "tr"}
	}
	return langs
}
