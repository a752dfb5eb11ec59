package ffmpeg

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func buildArchive(t *testing.T, names map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestInstaller(installDir, apiURL, fallbackURL string) *Installer {
	return &Installer{
		client:      &http.Client{Timeout: time.Second},
		releaseAPI:  apiURL,
		fallbackURL: fallbackURL,
		installDir:  installDir,
		events:      make(chan InstallProgress, 64),
	}
}

func TestRunExtractsBinEntriesFlattened(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"ffmpeg-master-latest-win64-gpl/bin/ffmpeg.exe":  "ffmpeg-binary",
		"ffmpeg-master-latest-win64-gpl/bin/ffprobe.exe": "ffprobe-binary",
		"ffmpeg-master-latest-win64-gpl/doc/README.txt":  "docs",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	installDir := filepath.Join(t.TempDir(), "ffmpeg")
	// dead API forces the fallback URL, which points at our server
	inst := newTestInstaller(installDir, "http://127.0.0.1:1/releases/latest", srv.URL)

	result := inst.Run()
	if !result.Success {
		t.Fatalf("install failed: %s", result.Message)
	}

	for _, name := range []string{"ffmpeg.exe", "ffprobe.exe"} {
		if _, err := os.Stat(filepath.Join(installDir, "bin", name)); err != nil {
			t.Errorf("%s not extracted: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(installDir, "bin", "README.txt")); err == nil {
		t.Error("non-bin entry must not be extracted")
	}
}

func TestRunReportsFailureOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	installDir := filepath.Join(t.TempDir(), "ffmpeg")
	inst := newTestInstaller(installDir, "http://127.0.0.1:1/releases/latest", srv.URL)

	result := inst.Run()
	if result.Success {
		t.Fatal("expected failure on non-200 archive fetch")
	}
	if _, err := os.Stat(installDir); !os.IsNotExist(err) {
		t.Error("failed install must not leave an install directory behind")
	}
}

func TestRunFailsOnArchiveWithoutBin(t *testing.T) {
	archive := buildArchive(t, map[string]string{
		"ffmpeg/doc/README.txt": "docs",
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	installDir := filepath.Join(t.TempDir(), "ffmpeg")
	inst := newTestInstaller(installDir, "http://127.0.0.1:1/releases/latest", srv.URL)

	result := inst.Run()
	if result.Success {
		t.Fatal("expected failure on archive without bin entries")
	}
	if _, err := os.Stat(installDir); !os.IsNotExist(err) {
		t.Error("aborted extraction must remove the install directory")
	}
}

func TestResolveLatestURLPicksMatchingAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"assets":[
			{"name":"ffmpeg-n7-win64-gpl-shared.zip","browser_download_url":"https://host/shared.zip"},
			{"name":"ffmpeg-n7-linux64-gpl.tar.xz","browser_download_url":"https://host/linux.tar.xz"},
			{"name":"ffmpeg-n7-win64-gpl.zip","browser_download_url":"https://host/right.zip"}
		]}`))
	}))
	defer srv.Close()

	inst := newTestInstaller(t.TempDir(), srv.URL, "https://fallback/archive.zip")

	if got := inst.resolveLatestURL(); got != "https://host/right.zip" {
		t.Errorf("resolved URL = %q", got)
	}
}

func TestResolveLatestURLFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "no matching asset",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"assets":[{"name":"ffmpeg-linux64.tar.xz","browser_download_url":"u"}]}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			inst := newTestInstaller(t.TempDir(), srv.URL, "https://fallback/archive.zip")
			if got := inst.resolveLatestURL(); got != "https://fallback/archive.zip" {
				t.Errorf("resolved URL = %q, want fallback", got)
			}
		})
	}
}

func TestLocatePriority(t *testing.T) {
	bundle := t.TempDir()
	install := t.TempDir()
	name := executableName()

	if err := os.WriteFile(filepath.Join(install, name), []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := Locate(bundle, install); got != install {
		t.Errorf("Locate = %q, want install dir", got)
	}

	if err := os.WriteFile(filepath.Join(bundle, name), []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := Locate(bundle, install); got != bundle {
		t.Errorf("Locate = %q, want bundle dir", got)
	}
}
