package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvToken    = "CI_API_PRIVATE_TOKEN"
	EnvRemote   = "CI_REMOTE"
	EnvScheme   = "CI_API_SCHEME"
	EnvTimeout  = "CI_API_TIMEOUT"
	EnvInterval = "CI_POLL_INTERVAL"
	EnvStatus   = "CI_STATUS_FILE"
)

const (
	ClearAuto   = "auto"
	ClearAlways = "always"
	ClearNever  = "never"
)

var ErrMissingToken = errors.New(EnvToken + " is required")

// Config is read once at startup and again whenever the file changes. The
// token never comes from YAML and is never written back.
type Config struct {
	API struct {
		Scheme  string        `yaml:"scheme"`
		Timeout time.Duration `yaml:"timeout"`
		Token   string        `yaml:"-"`
	} `yaml:"api"`

	Git struct {
		Remote string `yaml:"remote"`
		Dir    string `yaml:"dir"`
	} `yaml:"git"`

	Poll struct {
		Interval  time.Duration `yaml:"interval"`
		PauseFile string        `yaml:"pause_file"`
	} `yaml:"poll"`

	Output struct {
		StatusFile   string `yaml:"status_file"`
		MessageWidth int    `yaml:"message_width"`
		Clear        string `yaml:"clear"`
	} `yaml:"output"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	EnvFiles []string `yaml:"env_files,omitempty"`
}

func DefaultPath() string { return expandHome("~/.config/ci-status/config.yaml") }

func DefaultEnvFile() string { return expandHome("~/.config/ci-status/ci-status.env") }

func Defaults() Config {
	var c Config
	c.API.Scheme = "https"
	c.API.Timeout = 10 * time.Second
	c.Git.Dir = "."
	c.Poll.Interval = 10 * time.Second
	c.Output.MessageWidth = 72
	c.Output.Clear = ClearAuto
	c.Log.Level = "error"
	return c
}

// Load merges defaults, the YAML file (missing is fine), env files and the
// environment, in that order. The returned config is usable even when the
// error is ErrMissingToken.
func Load(path string) (Config, error) {
	c := Defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return c, err
		}
	}

	for _, f := range append([]string{DefaultEnvFile()}, c.EnvFiles...) {
		if err := godotenv.Load(expandHome(f)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return c, fmt.Errorf("env file %s: %w", f, err)
		}
	}

	c.API.Token = strings.TrimSpace(os.Getenv(EnvToken))

	if v := os.Getenv(EnvRemote); v != "" {
		c.Git.Remote = v
	}

	if v := os.Getenv(EnvScheme); v != "" {
		c.API.Scheme = v
	}

	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.API.Timeout = d
		}
	}

	if v := os.Getenv(EnvInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Poll.Interval = d
		}
	}

	if v := os.Getenv(EnvStatus); v != "" {
		c.Output.StatusFile = v
	}

	c.normalize()

	if c.API.Token == "" {
		return c, ErrMissingToken
	}

	return c, nil
}

func (c *Config) normalize() {
	def := Defaults()

	c.API.Scheme = strings.ToLower(strings.TrimSpace(c.API.Scheme))
	if c.API.Scheme != "http" && c.API.Scheme != "https" {
		c.API.Scheme = def.API.Scheme
	}

	if c.API.Timeout <= 0 {
		c.API.Timeout = def.API.Timeout
	}

	if c.Git.Dir == "" {
		c.Git.Dir = def.Git.Dir
	}

	if c.Poll.Interval <= 0 {
		c.Poll.Interval = def.Poll.Interval
	}

	if c.Output.MessageWidth <= 0 {
		c.Output.MessageWidth = def.Output.MessageWidth
	}

	switch c.Output.Clear {
	case ClearAuto, ClearAlways, ClearNever:
	default:
		c.Output.Clear = ClearAuto
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}

	c.Git.Remote = strings.TrimSpace(c.Git.Remote)
	c.Poll.PauseFile = expandHome(c.Poll.PauseFile)
	c.Output.StatusFile = expandHome(c.Output.StatusFile)
	c.Log.File = expandHome(c.Log.File)
}

// Save writes c to path atomically under an exclusive lock.
func Save(path string, c Config) error {
	if path == "" {
		return errors.New("empty config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lf, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = lf.Close() }()

	unlock, err := lockExclusive(lf)
	if err != nil {
		return fmt.Errorf("lock %s: %w", lf.Name(), err)
	}
	defer unlock()

	b, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	if _, err := f.Write(b); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if h, _ := os.UserHomeDir(); h != "" {
			return h + p[1:]
		}
	}
	return p
}
