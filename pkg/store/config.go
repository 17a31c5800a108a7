package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DocumentFile is the macro document's file name inside the data
// directory.
const DocumentFile = "macros.xml"

// LogFile is the application log's file name inside the data directory.
const LogFile = "macromouse.log"

// SettingsFile is the exported settings file name inside the data
// directory. It travels with the synced file set so a fresh machine
// picks up the remote settings after its first download.
const SettingsFile = "config.json"

// Config locates the data directory and the remote store settings.
type Config interface {
	BaseDir() string
	Bucket() string
	Credentials() string
	RemotePrefix() string
	SyncTimeout() time.Duration
}

// LoadConfig reads .macromouse.yaml from the working directory (or the
// MACROMOUSE_CONFIG_PATH override), falling back to env vars and
// defaults for every key.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.macromouse")
	viper.SetDefault("bucket", "")
	viper.SetDefault("credentials", "")
	viper.SetDefault("remote_prefix", "")
	viper.SetDefault("sync_timeout_seconds", 0)

	viper.SetConfigName(".macromouse") // .yaml is implicit
	viper.SetEnvPrefix("MACROMOUSE")
	viper.AutomaticEnv()

	if override := os.Getenv("MACROMOUSE_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}
	viper.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	base, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, err
	}

	cfg := &fileConfig{
		Path:           base,
		BucketName:     viper.GetString("bucket"),
		CredentialFile: viper.GetString("credentials"),
		Prefix:         viper.GetString("remote_prefix"),
		TimeoutSeconds: viper.GetInt("sync_timeout_seconds"),
	}
	applySavedSettings(cfg)
	return cfg, nil
}

// settings is the synced subset of the configuration: everything but
// the machine-local data path.
type settings struct {
	Bucket             string `json:"bucket"`
	Credentials        string `json:"credentials"`
	RemotePrefix       string `json:"remote_prefix"`
	SyncTimeoutSeconds int    `json:"sync_timeout_seconds"`
}

// applySavedSettings fills keys the local config left unset from the
// synced settings file, so a fresh machine that has only downloaded the
// data directory ends up pointed at the same bucket. Local values win.
func applySavedSettings(cfg *fileConfig) {
	saved, err := readSettings(filepath.Join(cfg.Path, SettingsFile))
	if err != nil {
		return
	}
	if cfg.BucketName == "" {
		cfg.BucketName = saved.Bucket
	}
	if cfg.CredentialFile == "" {
		cfg.CredentialFile = saved.Credentials
	}
	if cfg.Prefix == "" {
		cfg.Prefix = saved.RemotePrefix
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = saved.SyncTimeoutSeconds
	}
}

func readSettings(path string) (*settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ExportSettings writes the effective configuration to config.json in
// the data directory, where the sync engine picks it up. The file is
// only rewritten when its content changed, keeping its modification
// time (which drives sync comparisons) stable across launches.
func ExportSettings(cfg Config) error {
	s := settings{
		Bucket:             cfg.Bucket(),
		Credentials:        cfg.Credentials(),
		RemotePrefix:       cfg.RemotePrefix(),
		SyncTimeoutSeconds: int(cfg.SyncTimeout() / time.Second),
	}
	data, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := filepath.Join(cfg.BaseDir(), SettingsFile)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	if err := os.MkdirAll(cfg.BaseDir(), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

type fileConfig struct {
	Path           string `json:"path"`
	BucketName     string `json:"bucket"`
	CredentialFile string `json:"credentials"`
	Prefix         string `json:"remote_prefix"`
	TimeoutSeconds int    `json:"sync_timeout_seconds"`
}

func (f *fileConfig) BaseDir() string {
	return f.Path
}

func (f *fileConfig) Bucket() string {
	return f.BucketName
}

func (f *fileConfig) Credentials() string {
	return f.CredentialFile
}

func (f *fileConfig) RemotePrefix() string {
	if f.Prefix == "" {
		return "macro-data"
	}
	return f.Prefix
}

func (f *fileConfig) SyncTimeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}
