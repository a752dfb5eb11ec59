//go:build !windows

package ffmpeg

// Persistent search-path registration is a Windows convenience; on
// other platforms the install directory is passed to the downloader
// explicitly via --ffmpeg-location.
func registerPath(dir string) error { return nil }
