// Package ffmpeg locates the transcoding binary and installs it on
// demand into the per-user data directory.
package ffmpeg

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

func executableName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// Locate probes the known locations in priority order: the bundled
// resource directory, the per-user install directory, then the system
// search path. The empty string means "let the downloader find it on
// PATH" and is also returned when nothing was found.
func Locate(bundleDir, installBinDir string) string {
	name := executableName()

	if bundleDir != "" {
		if _, err := os.Stat(filepath.Join(bundleDir, name)); err == nil {
			return bundleDir
		}
	}

	if installBinDir != "" {
		if _, err := os.Stat(filepath.Join(installBinDir, name)); err == nil {
			return installBinDir
		}
	}

	if _, err := exec.LookPath(name); err == nil {
		return ""
	}

	return ""
}

// Installed reports whether any of the probed locations carries the
// binary, including the system search path.
func Installed(bundleDir, installBinDir string) bool {
	name := executableName()

	if _, err := exec.LookPath(name); err == nil {
		return true
	}
	if bundleDir != "" {
		if _, err := os.Stat(filepath.Join(bundleDir, name)); err == nil {
			return true
		}
	}
	if installBinDir != "" {
		if _, err := os.Stat(filepath.Join(installBinDir, name)); err == nil {
			return true
		}
	}
	return false
}
