package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const homeEnv = "KEEPER_HOME"

type Config struct {
	CacheDir           string   `toml:"cache_dir"`
	StagingDir         string   `toml:"staging_dir"`
	DefaultDestination string   `toml:"default_destination"`
	BufferSize         int      `toml:"buffer_size"`
	MaxParallel        int      `toml:"max_parallel"`
	FetchTimeout       Duration `toml:"fetch_timeout"`
	LogLevel           string   `toml:"log_level"`
	Color              string   `toml:"color"`
}

// Duration reads TOML strings such as "90s" or "1h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Home is the keeper base directory: $KEEPER_HOME, or ~/.keeper.
func Home() string {
	if dir := os.Getenv(homeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".keeper"
	}
	return filepath.Join(home, ".keeper")
}

func Path() string {
	return filepath.Join(Home(), "config.toml")
}

func DefaultConfig() *Config {
	return &Config{
		CacheDir:           filepath.Join(Home(), "cache"),
		DefaultDestination: ".",
		BufferSize:         32 * 1024,
		MaxParallel:        4,
		FetchTimeout:       Duration{time.Hour},
		LogLevel:           "warn",
		Color:              "auto",
	}
}

// Load reads the config file over the defaults. A missing file is not an
// error and nothing is written.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	configPath := Path()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	if cfg.MaxParallel < 1 {
		cfg.MaxParallel = 1
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath := Path()

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
