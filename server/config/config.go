package config

import (
	"path/filepath"
	"sync"
)

type Config struct {
	Server         ServerConfig  `yaml:"server"`
	Logging        LoggingConfig `yaml:"logging"`
	Paths          PathsConfig   `yaml:"paths"`
	Authentication AuthConfig    `yaml:"authentication"`
	OpenId         OpenIdConfig  `yaml:"openid"`
	path           string
}

type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type LoggingConfig struct {
	LogPath           string `yaml:"log_path"`
	EnableFileLogging bool   `yaml:"enable_file_logging"`
}

type PathsConfig struct {
	// DownloaderPath is the yt-dlp executable, resolved on PATH when bare.
	DownloaderPath string `yaml:"downloader_path"`
	// FFmpegBundleDir is an optional directory shipped next to the binary
	// holding a bundled ffmpeg build.
	FFmpegBundleDir string `yaml:"ffmpeg_bundle_dir"`
	// FFmpegInstallDir is the per-user directory the acquisition worker
	// installs into. The executables live under its bin/ subdirectory.
	FFmpegInstallDir string `yaml:"ffmpeg_install_dir"`
	// SettingsPath is the persisted user settings file.
	SettingsPath string `yaml:"settings_path"`
	// LocalDatabasePath is the directory holding the download archive.
	LocalDatabasePath string `yaml:"local_database_path"`
}

type AuthConfig struct {
	RequireAuth  bool   `yaml:"require_auth"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password"`
}

type OpenIdConfig struct {
	UseOpenId      bool     `yaml:"use_openid"`
	ProviderURL    string   `yaml:"openid_provider_url"`
	ClientId       string   `yaml:"openid_client_id"`
	ClientSecret   string   `yaml:"openid_client_secret"`
	RedirectURL    string   `yaml:"openid_redirect_url"`
	EmailWhitelist []string `yaml:"openid_email_whitelist"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func Instance() *Config {
	if instance == nil {
		instanceOnce.Do(func() {
			instance = &Config{}
		})
	}
	return instance
}

// FFmpegBinDir is where the acquisition worker places the executables.
func (c *Config) FFmpegBinDir() string {
	return filepath.Join(c.Paths.FFmpegInstallDir, "bin")
}

// Path of the directory containing the config file
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Absolute path of the config file
func (c *Config) Path() string { return c.path }
