// Package logging provides the size-rotated diagnostic log file the
// application writes next to its other per-user data.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultMaxSize = 5 * 1024 * 1024
	defaultBackups = 2
)

// RotatingWriter is an io.Writer that rotates the underlying file once
// it would exceed its size cap, keeping a fixed number of numbered
// backups (app.log.1, app.log.2, ...).
type RotatingWriter struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	backups int
	fd      *os.File
	size    int64
}

func NewRotatingWriter(path string) (*RotatingWriter, error) {
	return newRotatingWriter(path, defaultMaxSize, defaultBackups)
}

func newRotatingWriter(path string, maxSize int64, backups int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	w := &RotatingWriter{
		path:    path,
		maxSize: maxSize,
		backups: backups,
	}

	if err := w.open(); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.fd.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fd.Close()
}

func (w *RotatingWriter) open() error {
	fd, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	info, err := fd.Stat()
	if err != nil {
		fd.Close()
		return err
	}

	w.fd = fd
	w.size = info.Size()
	return nil
}

// rotate shifts app.log.1 -> app.log.2 and so on, then reopens a fresh
// file at the base path.
func (w *RotatingWriter) rotate() error {
	if err := w.fd.Close(); err != nil {
		return err
	}

	for i := w.backups; i >= 1; i-- {
		var (
			older = fmt.Sprintf("%s.%d", w.path, i)
			newer = fmt.Sprintf("%s.%d", w.path, i-1)
		)
		if i == w.backups {
			os.Remove(older)
		}
		if i-1 == 0 {
			newer = w.path
		}
		if _, err := os.Stat(newer); err == nil {
			os.Rename(newer, older)
		}
	}

	return w.open()
}
