package updater

import (
	"log/slog"
	"os/exec"
	"strings"

	"github.com/vidextract/vidextract/server/config"
)

// UpdateDownloader runs the downloader's builtin self-update and
// returns its combined output as the user-visible message.
func UpdateDownloader() (string, error) {
	cmd := exec.Command(config.Instance().Paths.DownloaderPath, "-U")

	out, err := cmd.CombinedOutput()
	message := strings.TrimSpace(string(out))

	if err != nil {
		slog.Warn("downloader self-update failed",
			slog.String("output", message),
			slog.Any("err", err),
		)
		if message == "" {
			message = err.Error()
		}
		return message, err
	}

	slog.Info("downloader self-update finished", slog.String("output", message))
	return message, nil
}
