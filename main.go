package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/vidextract/vidextract/server"
	"github.com/vidextract/vidextract/server/config"
	"github.com/vidextract/vidextract/server/openid"
)

func userDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "VidExtract")
}

// bundleDir is the ffmpeg directory shipped next to the executable, if
// the build was packaged with one.
func bundleDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "ffmpeg")
}

func main() {
	// Parse optional config path from flag
	var configFile string
	flag.StringVar(&configFile, "conf", "./config.yml", "Config file path")
	flag.Parse()

	dataDir := userDataDir()

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3033)
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.ffmpeg_bundle_dir", bundleDir())
	v.SetDefault("paths.ffmpeg_install_dir", filepath.Join(dataDir, "ffmpeg"))
	v.SetDefault("paths.settings_path", filepath.Join(dataDir, "settings.yml"))
	v.SetDefault("paths.local_database_path", dataDir)
	v.SetDefault("logging.log_path", filepath.Join(dataDir, "vidextract.log"))
	v.SetDefault("logging.enable_file_logging", true)
	v.SetDefault("authentication.require_auth", false)

	// Env binding
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	// Load YAML file if exists
	if err := v.ReadInConfig(); err != nil {
		slog.Debug("using defaults")
	}

	cfg := config.Instance()
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to load config", "error", err)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	// Configure OpenID if needed
	openid.Configure()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited cleanly")
}
